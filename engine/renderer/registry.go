package renderer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() RendererBackend

var (
	registryMu sync.RWMutex
	backends   = make(map[RendererType]BackendFactory)
)

// RegisterBackend registers a backend factory for the given type.
// This is typically called from init() functions in backend packages.
// A factory already registered for the type is replaced.
func RegisterBackend(t RendererType, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[t] = factory
}

// UnregisterBackend removes a backend from the registry.
// This is useful for testing.
func UnregisterBackend(t RendererType) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, t)
}

// AvailableBackends returns the registered backend types in ascending order.
func AvailableBackends() []RendererType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]RendererType, 0, len(backends))
	for t := range backends {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// NewBackend returns a fresh backend of the given type.
func NewBackend(t RendererType) (RendererBackend, error) {
	registryMu.RLock()
	factory, ok := backends[t]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backend %s: %w", t, core.ErrBackendNotAvailable)
	}
	b := factory()
	if b == nil {
		return nil, fmt.Errorf("backend %s: %w", t, core.ErrBackendNotAvailable)
	}
	return b, nil
}
