package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/render"
)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default (first that opens wins).
	backendPriority = []string{NameGoGPU, NameOpenGL, NameWebGL}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the named backend.
func Open(name string) (render.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open backend %q: %w", name, err)
	}
	return b, nil
}

// Default opens the best available backend: the priority list first, then
// any other registered backend in name order. It returns the opened
// backend's name. Every failure is returned joined when nothing opens.
func Default() (string, render.Backend, error) {
	names := Available()
	order := make([]string, 0, len(names))
	for _, name := range backendPriority {
		if slices.Contains(names, name) {
			order = append(order, name)
		}
	}
	for _, name := range names {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}

	var errs []error
	for _, name := range order {
		b, err := Open(name)
		if err == nil {
			return name, b, nil
		}
		vgraph.Logger().Debug("backend: unavailable", "name", name, "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", nil, ErrBackendNotAvailable
	}
	return "", nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}
