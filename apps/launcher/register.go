// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/register.go
// Summary: Registers the launcher app with the Skylight registry.

package launcher

import (
	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/ui"
)

// Register wires the launcher into the registry. Unlike the init-time
// built-ins, the launcher needs the launch gateway injected, so the
// caller registers it explicitly once the gateway exists.
func Register(reg *registry.Registry, launch LaunchFunc, theme *theming.Theme) {
	reg.RegisterBuiltIn(&registry.Manifest{
		Key:            "launcher",
		DisplayName:    "Launcher",
		Description:    "Find and launch components",
		Icon:           "🚀",
		Category:       "system",
		Tags:           []string{"apps", "search"},
		SingleInstance: true,
	}, func(props map[string]any) ui.App {
		return New(reg, launch, theme)
	})
}
