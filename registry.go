package inputmodel

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps names to models for RefModel resolution.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// DefaultRegistry backs the package-level Compile.
var DefaultRegistry = NewRegistry()

// Register adds m under name. Names are unique within a registry.
func (r *Registry) Register(name string, m Model) error {
	if name == "" {
		return fmt.Errorf("inputmodel: register: empty name")
	}
	if m == nil {
		return fmt.Errorf("inputmodel: register %q: nil model", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.models[name]; dup {
		return fmt.Errorf("inputmodel: register %q: already registered", name)
	}
	r.models[name] = m
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, m Model) {
	if err := r.Register(name, m); err != nil {
		panic(err)
	}
}

// Lookup returns the model registered under name.
func (r *Registry) Lookup(name string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.models))
	for n := range r.models {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
