package wasm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// Minimal guests assembled by hand; the WAT source is shown above each.

// (module)
var emptyGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
}

// (module (func (export "f") (result i64) i64.const 42))
var const42Guest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7e, // type: () -> i64
	0x03, 0x02, 0x01, 0x00, // func 0 uses type 0
	0x07, 0x05, 0x01, 0x01, 0x66, 0x00, 0x00, // export "f"
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x42, 0x2a, 0x0b, // i64.const 42
}

// (module
//   (import "env" "extAdd" (func $add (param i32 i32) (result i32)))
//   (func (export "add5") (result i32)
//     i32.const 2
//     i32.const 3
//     call $add))
var extAddGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x0b, 0x02, // type section, 2 types
	0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // (i32, i32) -> i32
	0x60, 0x00, 0x01, 0x7f, // () -> i32
	0x02, 0x0e, 0x01, // import section
	0x03, 0x65, 0x6e, 0x76, // "env"
	0x06, 0x65, 0x78, 0x74, 0x41, 0x64, 0x64, // "extAdd"
	0x00, 0x00, // func, type 0
	0x03, 0x02, 0x01, 0x01, // func 1 uses type 1
	0x07, 0x08, 0x01, 0x04, 0x61, 0x64, 0x64, 0x35, 0x00, 0x01, // export "add5"
	0x0a, 0x0a, 0x01, 0x08, 0x00,
	0x41, 0x02, // i32.const 2
	0x41, 0x03, // i32.const 3
	0x10, 0x00, // call 0
	0x0b,
}

// (module
//   (import "env" "wbpf_host_complete" (func $done))
//   (func (export "finish") call $done))
var completeGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type: () -> ()
	0x02, 0x1a, 0x01, // import section
	0x03, 0x65, 0x6e, 0x76, // "env"
	0x12, // 18 byte name
	0x77, 0x62, 0x70, 0x66, 0x5f, 0x68, 0x6f, 0x73, 0x74, // "wbpf_host"
	0x5f, 0x63, 0x6f, 0x6d, 0x70, 0x6c, 0x65, 0x74, 0x65, // "_complete"
	0x00, 0x00, // func, type 0
	0x03, 0x02, 0x01, 0x00, // func 1 uses type 0
	0x07, 0x0a, 0x01, 0x06, 0x66, 0x69, 0x6e, 0x69, 0x73, 0x68, 0x00, 0x01, // export "finish"
	0x0a, 0x06, 0x01, 0x04, 0x00,
	0x10, 0x00, // call 0
	0x0b,
}

// (module
//   (import "env" "callByName" (func $cbn (param i32) (result i64)))
//   (memory 1)
//   (data (i32.const 0) "test\00")
//   (func (export "entry") (result i64)
//     i32.const 0
//     call $cbn))
var callByNameGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x0a, 0x02, // type section, 2 types
	0x60, 0x01, 0x7f, 0x01, 0x7e, // (i32) -> i64
	0x60, 0x00, 0x01, 0x7e, // () -> i64
	0x02, 0x12, 0x01, // import section
	0x03, 0x65, 0x6e, 0x76, // "env"
	0x0a, 0x63, 0x61, 0x6c, 0x6c, 0x42, 0x79, 0x4e, 0x61, 0x6d, 0x65, // "callByName"
	0x00, 0x00, // func, type 0
	0x03, 0x02, 0x01, 0x01, // func 1 uses type 1
	0x05, 0x03, 0x01, 0x00, 0x01, // memory 1 page
	0x07, 0x09, 0x01, 0x05, 0x65, 0x6e, 0x74, 0x72, 0x79, 0x00, 0x01, // export "entry"
	0x0a, 0x08, 0x01, 0x06, 0x00,
	0x41, 0x00, // i32.const 0
	0x10, 0x00, // call 0
	0x0b,
	0x0b, 0x0b, 0x01, 0x00, 0x41, 0x00, 0x0b, // data at offset 0:
	0x05, 0x74, 0x65, 0x73, 0x74, 0x00, // "test\00"
}

func writeGuest(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guest.wasm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write guest: %v", err)
	}
	return path
}

func TestInvokeReturnedValue(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, const42Guest), "f")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if result.Outcome != program.OutcomeReturned {
		t.Errorf("outcome = %v, want returned", result.Outcome)
	}
	if len(result.Values) != 1 || result.Values[0] != 42 {
		t.Errorf("values = %v, want [42]", result.Values)
	}
}

func TestInvokeExtAdd(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, extAddGuest), "add5")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if len(result.Values) != 1 || result.Values[0] != 5 {
		t.Errorf("values = %v, want [5]", result.Values)
	}
}

func TestInvokeCustomExtAdd(t *testing.T) {
	rt, err := New(nil, WithExtAdd(func(a, b int32) int32 { return a * b }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, extAddGuest), "add5")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if len(result.Values) != 1 || result.Values[0] != 6 {
		t.Errorf("values = %v, want [6]", result.Values)
	}
}

func TestInvokeCompletionHandoff(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, completeGuest), "finish")
	if result.Error != nil {
		t.Fatalf("handoff must not be an error, got %v", result.Error)
	}
	if result.Outcome != program.OutcomeCompleted {
		t.Errorf("outcome = %v, want completed", result.Outcome)
	}
	if len(result.Values) != 0 {
		t.Errorf("completed invocation has values %v", result.Values)
	}
}

func TestInvokeCallByName(t *testing.T) {
	registry := hostcall.NewRegistry()
	registry.RegisterValue("test", 1234)

	rt, err := New(registry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, callByNameGuest), "entry")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if len(result.Values) != 1 || result.Values[0] != 1234 {
		t.Errorf("values = %v, want [1234]", result.Values)
	}
}

func TestInvokeCallByNameUnresolvedAborts(t *testing.T) {
	// Empty registry: resolving "test" fails and the invocation is torn
	// down with a nonzero exit.
	rt, err := New(hostcall.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, callByNameGuest), "entry")
	if result.Error == nil {
		t.Fatal("expected abort error")
	}
	if !strings.Contains(result.Error.Error(), "exit code 1") {
		t.Errorf("expected exit code 1 abort, got %v", result.Error)
	}
	if result.Outcome == program.OutcomeCompleted {
		t.Error("abort must not be classified as completion")
	}
}

func TestInvokeMissingEntry(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), writeGuest(t, emptyGuest), "nope")
	if result.Error == nil || !strings.Contains(result.Error.Error(), "exports no function") {
		t.Fatalf("expected missing export error, got %v", result.Error)
	}
}

func TestInvokeMissingFile(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	result := rt.Invoke(context.Background(), filepath.Join(t.TempDir(), "absent.wasm"), "f")
	if result.Error == nil {
		t.Fatal("expected read error")
	}
}

func TestInvokeCachesCompiledGuest(t *testing.T) {
	rt, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	path := writeGuest(t, const42Guest)

	for i := 0; i < 2; i++ {
		result := rt.Invoke(context.Background(), path, "f")
		if result.Error != nil {
			t.Fatalf("run %d: %v", i+1, result.Error)
		}
	}

	rt.mu.RLock()
	_, cached := rt.compiled[path]
	rt.mu.RUnlock()
	if !cached {
		t.Error("compiled guest not cached")
	}
}

func TestRuntimeDiskCache(t *testing.T) {
	rt, err := New(nil, WithDiskCache(t.TempDir()))
	if err != nil {
		t.Fatalf("New with disk cache: %v", err)
	}

	result := rt.Invoke(context.Background(), writeGuest(t, const42Guest), "f")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestReadCString(t *testing.T) {
	if _, ok := readCString(nil, 0); ok {
		t.Error("nil memory should fail")
	}
}
