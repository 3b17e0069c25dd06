package provider

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// ErrUnknownProvider is returned when an experiment selects a provider that
// is not registered.
var ErrUnknownProvider = errors.New("provider not registered")

// Registry maps provider selectors to providers. It is read-only after
// construction and safe for concurrent lookups.
type Registry struct {
	providers map[model.ProviderType]Provider
}

// NewRegistry registers each provider under its Type. A later provider with
// the same Type replaces an earlier one.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[model.ProviderType]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Type()] = p
	}
	return r
}

// Lookup returns the provider registered for t.
func (r *Registry) Lookup(t model.ProviderType) (Provider, error) {
	if r != nil {
		if p, ok := r.providers[t]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, t)
}

// Types returns the registered selectors in sorted order.
func (r *Registry) Types() []model.ProviderType {
	if r == nil {
		return nil
	}
	out := make([]model.ProviderType, 0, len(r.providers))
	for t := range r.providers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.providers)
}
