package database

import (
	"fmt"
	"sync"
)

// Registry holds the models built for this process, keyed by name.
// Create it once at startup and share it.
type Registry struct {
	mu     sync.Mutex
	models map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]any)}
}

// Lookup returns the model registered under name, or builds it with create and registers
// it. create runs at most once per name; a failed create registers nothing.
func Lookup[T any](r *Registry, name string, create func() (T, error)) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if m, ok := r.models[name]; ok {
		typed, ok := m.(T)
		if !ok {
			return zero, fmt.Errorf("model %q is registered as %T", name, m)
		}
		return typed, nil
	}
	m, err := create()
	if err != nil {
		return zero, fmt.Errorf("register model %q: %w", name, err)
	}
	r.models[name] = m
	return m, nil
}

// Names returns the registered model names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.models))
	for n := range r.models {
		names = append(names, n)
	}
	return names
}
