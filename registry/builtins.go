// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/builtins.go
// Summary: Supports init-time registration of built-in components.

package registry

import "sync"

// BuiltInProvider returns a manifest and factory for a registry instance.
type BuiltInProvider func(reg *Registry) (*Manifest, AppFactory)

var (
	builtInMu        sync.RWMutex
	builtInProviders []BuiltInProvider
)

// RegisterBuiltInProvider registers an init-time built-in provider.
// Component packages call this from init() so that importing the
// package is enough to make the component available.
func RegisterBuiltInProvider(provider BuiltInProvider) {
	if provider == nil {
		return
	}
	builtInMu.Lock()
	builtInProviders = append(builtInProviders, provider)
	builtInMu.Unlock()
}

// RegisterBuiltIns registers all init-time built-ins into the provided registry.
func RegisterBuiltIns(reg *Registry) {
	if reg == nil {
		return
	}
	builtInMu.RLock()
	providers := append([]BuiltInProvider(nil), builtInProviders...)
	builtInMu.RUnlock()

	for _, provider := range providers {
		manifest, factory := provider(reg)
		if manifest == nil || factory == nil {
			continue
		}
		reg.RegisterBuiltIn(manifest, factory)
	}
}
