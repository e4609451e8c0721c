// Package hostcall provides the host capabilities handed to guest programs.
//
// Guest programs have no implicit access to the host. Each capability the
// original wbpf device exposes to a program is modeled explicitly:
//
//   - name resolution ("callByName") via a [Registry] of named resolvers
//   - external addition ("extAdd") via an [AddFunc]
//   - the one-shot completion signal ("wbpf_host_complete") via a
//     [CompletionSink]
//
// A [Host] bundles the three for a single invocation:
//
//	registry := hostcall.NewRegistry()
//	registry.Register("test", func(ctx context.Context) (int64, error) {
//	    return 7, nil
//	})
//
//	host := hostcall.NewHost(registry, nil)
//	v, err := host.CallByName(ctx, "test")
//
// Capabilities left unset fail with typed errors when called; they never
// panic. See the host package for the invoker that constructs Hosts.
package hostcall
