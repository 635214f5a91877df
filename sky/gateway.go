// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/gateway.go
// Summary: Launch gateway: the activate-or-open adapter between launch
//          requests (dock, launcher, search) and the window store.

package sky

// Resolver vets component keys before the gateway mints a window for
// them. The component registry implements it; a nil resolver accepts
// every key.
type Resolver interface {
	Resolve(componentKey string) error
}

// Gateway bridges "activate an application by key" requests and the
// store. It holds no state of its own.
type Gateway struct {
	store    *Store
	resolver Resolver
}

// NewGateway creates a gateway over the store. resolver may be nil.
func NewGateway(store *Store, resolver Resolver) *Gateway {
	return &Gateway{store: store, resolver: resolver}
}

// LaunchOrFocus raises the most recently used window hosting the key, or
// opens a new one when none is running. Single-instance-style apps get
// their duplicate-activation noise collapsed; multi-instance apps use
// Launch when the caller really wants another window.
func (g *Gateway) LaunchOrFocus(componentKey string, props map[string]any) (string, error) {
	if err := g.resolve(componentKey); err != nil {
		return "", err
	}
	if matches := g.store.FindByComponentKey(componentKey); len(matches) > 0 {
		id := matches[0].ID
		if err := g.store.BringToFront(id); err != nil {
			return "", err
		}
		return id, nil
	}
	return g.store.Open(componentKey, props)
}

// Launch always opens a fresh window for the key.
func (g *Gateway) Launch(componentKey string, props map[string]any) (string, error) {
	if err := g.resolve(componentKey); err != nil {
		return "", err
	}
	return g.store.Open(componentKey, props)
}

func (g *Gateway) resolve(componentKey string) error {
	if g.resolver == nil {
		return nil
	}
	return g.resolver.Resolve(componentKey)
}
