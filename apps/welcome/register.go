// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/welcome/register.go
// Summary: Registers the welcome app with the Skylight registry.

package welcome

import "github.com/framegrace/skylight/registry"

func init() {
	registry.RegisterBuiltInProvider(func(reg *registry.Registry) (*registry.Manifest, registry.AppFactory) {
		return &registry.Manifest{
			Key:            "welcome",
			DisplayName:    "Welcome",
			Description:    "Key binding cheat sheet",
			Icon:           "👋",
			Category:       "system",
			SingleInstance: true,
		}, New
	})
}
