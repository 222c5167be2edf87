package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory opens a new backend instance.
type Factory func() (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	backendPriority = []string{BackendNative, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
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
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %q: %w", name, err)
	}
	return b, nil
}

// Default opens the best available backend based on priority, falling
// back to the next one when a backend fails to open (for example when no
// GPU is present). Backends outside the priority list are tried last in
// name order.
func Default() (Backend, error) {
	registryMu.RLock()
	names := append([]string(nil), backendPriority...)
	var rest []string
	for name := range backends {
		if !contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	registryMu.RUnlock()

	sort.Strings(rest)
	names = append(names, rest...)

	var errs []error
	for _, name := range names {
		if !IsRegistered(name) {
			continue
		}
		b, err := Open(name)
		if err == nil {
			return b, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return nil, errors.Join(append([]error{ErrBackendNotAvailable}, errs...)...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
