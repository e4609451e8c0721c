// Package program defines the contract shared by wbpf guest programs.
//
// A Program is a single leaf computation the host invokes once. It either
// returns a value to the host normally or hands control back terminally by
// signaling the completion capability. Implement this interface to add a new
// program; see the aescbc, dispatch, and muldiv subpackages.
package program

import (
	"context"
	"errors"

	"github.com/datenlord/wbpf-userspace/hostcall"
)

// Program is one host-invocable guest computation.
type Program interface {
	// Name returns a unique identifier for this program.
	Name() string

	// Run executes the computation once against the invocation's host
	// capabilities. A program that terminates via the completion handoff
	// calls host.Complete before returning.
	Run(ctx context.Context, host *hostcall.Host) error
}

// Outcome classifies how an invocation ended.
type Outcome uint8

const (
	// OutcomeFailed means the program returned an error; the invocation is
	// fatal, nothing is retried.
	OutcomeFailed Outcome = iota

	// OutcomeReturned means the program returned to the host normally
	// without signaling completion.
	OutcomeReturned

	// OutcomeCompleted means the program ended with the one-shot terminal
	// handoff (wbpf_host_complete in the original ABI).
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeReturned:
		return "returned"
	case OutcomeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Typed failures for conditions the original C programs left undefined.
var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrInvalidLength    = errors.New("buffer length not a multiple of block size")
)
