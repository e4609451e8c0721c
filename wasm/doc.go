// Package wasm runs wbpf guest programs compiled to WebAssembly.
//
// The original guests are C programs linked against three host symbols. This
// backend exports them from an "env" host module:
//
//	wbpf_host_complete()             terminal handoff, never returns
//	callByName(ptr i32) -> i64       resolve a NUL-terminated name
//	extAdd(a, b i32) -> i32          host-side addition
//
// # Basic Usage
//
//	rt, err := wasm.New(registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	result := rt.Invoke(ctx, "guest.wasm", "entry")
//	fmt.Println(result.Values, result.Outcome)
//
// Compiled modules are cached per path; enable the disk cache with
// [WithDiskCache] for faster CLI startup.
package wasm
