// Registry manages adapter registration and lookup.
//
// DESIGN: Map of vendor → Adapter, constructed explicitly and passed to the
// optimizer. Adapters are registered once at startup; lookups afterwards are
// read-only. Tests build isolated registries with NewRegistry().
package vendors

import (
	"fmt"
	"sync"
)

// Registry manages adapter registration.
type Registry struct {
	adapters map[Vendor]Adapter
	mu       sync.RWMutex
}

// NewRegistry creates a registry holding the given adapters.
// With no arguments the registry is empty.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[Vendor]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// NewDefaultRegistry creates a registry with all built-in adapters.
func NewDefaultRegistry() *Registry {
	return NewRegistry(Builtin()...)
}

// Register adds an adapter. Registering the same vendor twice replaces the
// previous adapter.
func (r *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Vendor()] = adapter
}

// Get returns the adapter for vendor.
// Returns an error wrapping ErrVendorNotSupported when none is registered.
func (r *Registry) Get(vendor Vendor) (Adapter, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[vendor]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no adapter registered for vendor %q", ErrVendorNotSupported, vendor)
	}
	return adapter, nil
}

// IsRegistered reports whether vendor has an adapter.
func (r *Registry) IsRegistered(vendor Vendor) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[vendor]
	return ok
}

// Count returns the number of registered adapters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Vendors returns the registered vendors in canonical order.
func (r *Registry) Vendors() []Vendor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Vendor, 0, len(r.adapters))
	for _, v := range canonicalOrder {
		if _, ok := r.adapters[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
