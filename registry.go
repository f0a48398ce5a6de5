package offload

import (
	"slices"
	"sync"
)

// Registry maps logical names to [CapacityLimiter] instances so that
// call sites can select a limiter by identifier instead of holding a
// reference. At most one limiter is associated with a name at any time.
//
// Pattern: Singleton — DefaultRegistry uses sync.OnceValue for safe
// lazy init; explicit registries can be created for testing or
// multi-tenant scenarios.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]*CapacityLimiter
}

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*CapacityLimiter)}
}

// Register associates lim with name, replacing any previous
// association. A replaced limiter is orphaned, not drained: holders
// that captured it keep their reference and release against it
// unaffected.
func (r *Registry) Register(name string, lim *CapacityLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.limiters[name] = lim
}

// Unregister removes the association for name. An absent name is a
// no-op, so cleanup code never needs to check existence first.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, name)
}

// Lookup returns the limiter registered under name, and whether one is
// registered. Callers decide whether a missing limiter is fatal.
func (r *Registry) Lookup(name string) (*CapacityLimiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lim, ok := r.limiters[name]

	return lim, ok
}

// Len returns the number of registered limiters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.limiters)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.limiters))
	for name := range r.limiters {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Scoped creates a fresh limiter of the given capacity, registers it
// under name, runs fn with it, and unregisters the name when fn
// returns — on every exit path, including a panic inside fn. fn's error
// is returned as-is.
func (r *Registry) Scoped(name string, capacity int, fn func(*CapacityLimiter) error) error {
	lim := NewCapacityLimiter(capacity, nil)
	r.Register(name, lim)
	defer r.Unregister(name)

	return fn(lim)
}

// DefaultRegistry returns the package-level global registry, creating
// it on first call. Name selectors resolve against it unless
// [WithRegistry] says otherwise.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Package-level conveniences operating on the default registry.

// Register associates lim with name in the default registry.
func Register(name string, lim *CapacityLimiter) { DefaultRegistry().Register(name, lim) }

// Unregister removes name from the default registry.
func Unregister(name string) { DefaultRegistry().Unregister(name) }

// Lookup returns the limiter registered under name in the default
// registry.
func Lookup(name string) (*CapacityLimiter, bool) { return DefaultRegistry().Lookup(name) }

// Scoped runs fn with a fresh limiter registered under name in the
// default registry; see [Registry.Scoped].
func Scoped(name string, capacity int, fn func(*CapacityLimiter) error) error {
	return DefaultRegistry().Scoped(name, capacity, fn)
}
