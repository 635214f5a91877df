// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/codeview/register.go
// Summary: Registers the code viewer with the Skylight registry.

package codeview

import "github.com/framegrace/skylight/registry"

func init() {
	registry.RegisterBuiltInProvider(func(reg *registry.Registry) (*registry.Manifest, registry.AppFactory) {
		return &registry.Manifest{
			Key:         "codeview",
			DisplayName: "Code View",
			Description: "Syntax highlighted file viewer",
			Icon:        "📄",
			Category:    "dev",
			Tags:        []string{"code", "viewer", "syntax"},
		}, New
	})
}
