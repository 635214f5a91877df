// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/register.go
// Summary: Registers the clock app with the Skylight registry.

package clock

import "github.com/framegrace/skylight/registry"

func init() {
	registry.RegisterBuiltInProvider(func(reg *registry.Registry) (*registry.Manifest, registry.AppFactory) {
		return &registry.Manifest{
			Key:         "clock",
			DisplayName: "Clock",
			Description: "Shows the current time",
			Icon:        "🕐",
			Category:    "system",
			Tags:        []string{"time", "widget"},
		}, New
	})
}
