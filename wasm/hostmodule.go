package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// hostModuleName is the import module the C guests link against.
const hostModuleName = "env"

// abortExitCode marks invocations torn down by a failed host call. Exit code
// zero is reserved for the clean completion handoff.
const abortExitCode = 1

// maxNameLen bounds callByName string reads from guest memory.
const maxNameLen = 256

func (r *Runtime) instantiateHostModule(ctx context.Context) error {
	_, err := r.runtime.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(r.hostComplete).
		Export("wbpf_host_complete").
		NewFunctionBuilder().
		WithFunc(r.callByName).
		Export("callByName").
		NewFunctionBuilder().
		WithFunc(r.hostExtAdd).
		Export("extAdd").
		Instantiate(ctx)
	return err
}

// hostComplete is the guest's non-returning handoff. Closing the module with
// exit code zero makes the in-flight call surface as a clean sys.ExitError.
func (r *Runtime) hostComplete(ctx context.Context, m api.Module) {
	_ = m.CloseWithExitCode(ctx, 0)
}

// callByName resolves the NUL-terminated name at namePtr. The guest ABI has
// no error channel, so any failure aborts the invocation.
func (r *Runtime) callByName(ctx context.Context, m api.Module, namePtr uint32) int64 {
	name, ok := readCString(m.Memory(), namePtr)
	if !ok {
		_ = m.CloseWithExitCode(ctx, abortExitCode)
		return 0
	}

	if r.registry == nil {
		_ = m.CloseWithExitCode(ctx, abortExitCode)
		return 0
	}
	v, err := r.registry.Resolve(ctx, name)
	if err != nil {
		_ = m.CloseWithExitCode(ctx, abortExitCode)
		return 0
	}
	return v
}

func (r *Runtime) hostExtAdd(ctx context.Context, a, b int32) int32 {
	return r.extAdd(a, b)
}

func readCString(mem api.Memory, ptr uint32) (string, bool) {
	if mem == nil {
		return "", false
	}
	var buf []byte
	for i := uint32(0); i < maxNameLen; i++ {
		c, ok := mem.ReadByte(ptr + i)
		if !ok {
			return "", false
		}
		if c == 0 {
			return string(buf), true
		}
		buf = append(buf, c)
	}
	return "", false
}
