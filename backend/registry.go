package backend

import (
	"fmt"
	"maps"
	"slices"
)

// Registry holds the available backends by name.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry returns a registry with the given backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds b to the registry, replacing any backend with the same name.
func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
}

// Get returns the backend with the given name.
func (r *Registry) Get(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q, available: %v", name, r.Names())
	}
	return b, nil
}

// Names returns the sorted names of the registered backends.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.backends))
}
