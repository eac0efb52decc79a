package provider

import (
	"fmt"

	"MarketScanner/internal/ports"
)

// Registry keeps registered news providers in registration order. The order
// matters: aggregation concatenates per-provider results in this order.
type Registry struct {
	providers []ports.NewsProvider
	byName    map[string]ports.NewsProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]ports.NewsProvider{}}
}

// Register appends a provider; a provider registered twice under the same
// name replaces the earlier entry in place.
func (r *Registry) Register(p ports.NewsProvider) {
	if r.byName == nil {
		r.byName = map[string]ports.NewsProvider{}
	}
	if _, ok := r.byName[p.Name()]; ok {
		for i, existing := range r.providers {
			if existing.Name() == p.Name() {
				r.providers[i] = p
				break
			}
		}
	} else {
		r.providers = append(r.providers, p)
	}
	r.byName[p.Name()] = p
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.NewsProvider, error) {
	if p, ok := r.byName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("provider %s is not registered", name)
}

// All returns providers in registration order.
func (r *Registry) All() []ports.NewsProvider {
	out := make([]ports.NewsProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len reports how many providers are registered.
func (r *Registry) Len() int {
	return len(r.providers)
}
