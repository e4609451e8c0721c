package host

import (
	"context"
	"fmt"
	"time"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// Result holds the outcome and metadata of one invocation.
type Result struct {
	Outcome  program.Outcome
	Duration time.Duration
	Error    error
}

// Invoker runs programs against a fixed set of host capabilities.
type Invoker struct {
	registry *hostcall.Registry
	extAdd   hostcall.AddFunc
}

// New creates an Invoker resolving names through registry. The external adder
// defaults to plain addition; override it with WithExtAdd.
func New(registry *hostcall.Registry, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		registry: registry,
		extAdd:   func(a, b int32) int32 { return a + b },
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Run executes one invocation of p. The program runs on its own goroutine so
// a deadline can cut it off; on timeout the invocation fails and the program's
// eventual return is discarded.
func (inv *Invoker) Run(ctx context.Context, p program.Program, opts ...Option) Result {
	start := time.Now()

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	h := hostcall.NewHost(inv.registry, inv.extAdd)

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx, h)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	result := Result{Duration: time.Since(start)}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Errorf("timeout after %v", cfg.timeout)
		} else {
			result.Error = fmt.Errorf("invocation failed: %w", err)
		}
		return result
	}

	if h.Completed() {
		result.Outcome = program.OutcomeCompleted
	} else {
		result.Outcome = program.OutcomeReturned
	}
	return result
}
