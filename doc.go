// Package wbpf provides the userspace side of the wbpf guest programs:
// native implementations of the guest computations, the host capabilities
// they call back into, and a WebAssembly backend for running real guest
// builds.
//
// # Overview
//
// A guest program is a single leaf computation invoked once per host
// invocation. It ends either by returning a value or through the one-shot
// completion handoff the original ABI calls wbpf_host_complete.
//
// # Basic Usage
//
//	registry := hostcall.NewRegistry()
//	registry.RegisterValue("test", 7)
//
//	inv := host.New(registry)
//	var mul, div, mod uint64
//	result := inv.Run(ctx, muldiv.New(6, 3, &mul, &div, &mod))
//	// result.Outcome == program.OutcomeCompleted; mul, div, mod are written
//
// # Running WebAssembly guests
//
//	rt, _ := wasm.New(registry)
//	defer rt.Close()
//	result := rt.Invoke(ctx, "guest.wasm", "entry")
//
// See the [program], [hostcall], [host], and [wasm] packages for detailed
// API documentation.
package wbpf
