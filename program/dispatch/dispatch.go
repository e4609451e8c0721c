// Package dispatch implements the name-dispatch test program: an entry point
// that sums two host-resolved names, a three-word static data table, and an
// addition helper that exercises both a local and a host-side adder.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// TableSize is the number of valid data table indices.
const TableSize = 3

// Table is the process-wide data array of the original program, behind
// bounds-checked accessors. Indices 0 through TableSize-1 are valid.
type Table struct {
	mu    sync.RWMutex
	words [TableSize]uint64
}

// NewTable returns a table seeded with the original's initial contents.
func NewTable() *Table {
	return &Table{words: [TableSize]uint64{0x1111, 0x2222, 0x99}}
}

func (t *Table) Set(index int, value uint64) error {
	if index < 0 || index >= TableSize {
		return fmt.Errorf("%w: %d", program.ErrIndexOutOfBounds, index)
	}
	t.mu.Lock()
	t.words[index] = value
	t.mu.Unlock()
	return nil
}

func (t *Table) Get(index int) (uint64, error) {
	if index < 0 || index >= TableSize {
		return 0, fmt.Errorf("%w: %d", program.ErrIndexOutOfBounds, index)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.words[index], nil
}

// Program bundles the dispatch entry point with its data table. State
// persists across invocations for the lifetime of the Program; concurrent
// entry-point use is the host's concern, matching the original.
type Program struct {
	table *Table

	mu     sync.Mutex
	result int64
}

func New() *Program {
	return &Program{table: NewTable()}
}

func (p *Program) Name() string { return "call-by-name" }

// Table exposes the program's data array.
func (p *Program) Table() *Table { return p.table }

// Entry resolves "test" and "test2" through the host and returns their sum
// plus one.
func (p *Program) Entry(ctx context.Context, host *hostcall.Host) (int64, error) {
	a, err := host.CallByName(ctx, "test")
	if err != nil {
		return 0, err
	}
	b, err := host.CallByName(ctx, "test2")
	if err != nil {
		return 0, err
	}
	return a + b + 1, nil
}

// add is the local addition path, kept distinct from the host adder so both
// call paths stay observable.
func add(a, b int32) int32 {
	return a + b
}

// CallAddPlusOne returns add(a,b) + extAdd(a,b) + 1, invoking the local and
// the host-side adder independently.
func (p *Program) CallAddPlusOne(ctx context.Context, host *hostcall.Host, a, b int32) (int32, error) {
	ext, err := host.ExtAdd(a, b)
	if err != nil {
		return 0, err
	}
	return add(a, b) + ext + 1, nil
}

// Run drives Entry once; the result is readable via Result afterward. The
// program returns to the host normally, it does not signal completion.
func (p *Program) Run(ctx context.Context, host *hostcall.Host) error {
	v, err := p.Entry(ctx, host)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.result = v
	p.mu.Unlock()
	return nil
}

// Result returns the value produced by the last successful Run.
func (p *Program) Result() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}
