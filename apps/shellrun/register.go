// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/shellrun/register.go
// Summary: Registers the shell runner with the Skylight registry.

package shellrun

import "github.com/framegrace/skylight/registry"

func init() {
	registry.RegisterBuiltInProvider(func(reg *registry.Registry) (*registry.Manifest, registry.AppFactory) {
		return &registry.Manifest{
			Key:         "shellrun",
			DisplayName: "Shell Run",
			Description: "Run a shell command",
			Icon:        "💻",
			Category:    "system",
			Tags:        []string{"shell", "command", "terminal"},
		}, New
	})
}
