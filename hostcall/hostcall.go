package hostcall

import (
	"context"
	"fmt"
	"sync"
)

// ResolveFunc produces the integer result bound to a registered name.
type ResolveFunc func(ctx context.Context) (int64, error)

// AddFunc is the host-side addition capability.
type AddFunc func(a, b int32) int32

// Registry maps symbolic names to resolvers, backing the callByName
// capability.
type Registry struct {
	mu    sync.RWMutex
	names map[string]ResolveFunc
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]ResolveFunc)}
}

func (r *Registry) Register(name string, fn ResolveFunc) {
	r.mu.Lock()
	r.names[name] = fn
	r.mu.Unlock()
}

// RegisterValue binds a name to a constant result.
func (r *Registry) RegisterValue(name string, value int64) {
	r.Register(name, func(ctx context.Context) (int64, error) {
		return value, nil
	})
}

// Resolve looks up name and evaluates its resolver.
func (r *Registry) Resolve(ctx context.Context, name string) (int64, error) {
	r.mu.RLock()
	fn, ok := r.names[name]
	r.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return fn(ctx)
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	return names
}
