// Package muldiv implements the unsigned multiply/divide/modulo program.
// Results are written to caller-owned output slots; the product wraps on
// overflow per standard unsigned arithmetic.
package muldiv

import (
	"context"
	"fmt"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// Program computes a*b, a/b and a%b into the caller's slots, then signals
// terminal completion.
type Program struct {
	a, b uint64

	outMul *uint64
	outDiv *uint64
	outMod *uint64
}

// New prepares the computation. The three output pointers are owned by the
// caller and written exactly once, on success only.
func New(a, b uint64, outMul, outDiv, outMod *uint64) *Program {
	return &Program{a: a, b: b, outMul: outMul, outDiv: outDiv, outMod: outMod}
}

func (p *Program) Name() string { return "mul-div-u" }

func (p *Program) Run(ctx context.Context, host *hostcall.Host) error {
	if p.b == 0 {
		return fmt.Errorf("%w: %d / 0", program.ErrDivisionByZero, p.a)
	}

	*p.outMul = p.a * p.b
	*p.outDiv = p.a / p.b
	*p.outMod = p.a % p.b

	host.Complete()
	return nil
}
