package hostcall

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrUnknownName is returned when a name has no registered resolver.
	ErrUnknownName = errors.New("unknown name")

	// ErrNoResolver is returned when an invocation has no name-resolution
	// capability at all.
	ErrNoResolver = errors.New("host provides no name resolver")

	// ErrNoAdder is returned when an invocation has no external addition
	// capability.
	ErrNoAdder = errors.New("host provides no external adder")
)

// CompletionSink is the one-shot latch behind wbpf_host_complete. In the
// original ABI the call never returns; here a program signals the sink and
// returns, and the invoker reads the latch to classify the outcome.
type CompletionSink struct {
	mu   sync.Mutex
	done bool
}

// Complete marks the invocation as terminally handed off. Safe to call more
// than once; only the first call changes state.
func (s *CompletionSink) Complete() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
}

func (s *CompletionSink) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Host is the capability set for one invocation. A nil registry or adder is
// allowed; using the missing capability fails with a typed error.
type Host struct {
	registry *Registry
	add      AddFunc
	sink     *CompletionSink
}

func NewHost(registry *Registry, add AddFunc) *Host {
	return &Host{
		registry: registry,
		add:      add,
		sink:     &CompletionSink{},
	}
}

// CallByName resolves name through the invocation's registry.
func (h *Host) CallByName(ctx context.Context, name string) (int64, error) {
	if h.registry == nil {
		return 0, ErrNoResolver
	}
	return h.registry.Resolve(ctx, name)
}

// ExtAdd invokes the host-side adder.
func (h *Host) ExtAdd(a, b int32) (int32, error) {
	if h.add == nil {
		return 0, ErrNoAdder
	}
	return h.add(a, b), nil
}

// Complete signals the terminal handoff for this invocation.
func (h *Host) Complete() {
	h.sink.Complete()
}

// Completed reports whether the program signaled completion.
func (h *Host) Completed() bool {
	return h.sink.Completed()
}
