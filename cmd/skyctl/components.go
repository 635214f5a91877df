// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/skyctl/components.go
// Summary: Components command: list everything the shell would offer,
//          built-ins plus whatever the component directories contain.

package main

import (
	"log"

	"github.com/spf13/cobra"

	_ "github.com/framegrace/skylight/apps/clock"
	_ "github.com/framegrace/skylight/apps/codeview"
	"github.com/framegrace/skylight/apps/launcher"
	_ "github.com/framegrace/skylight/apps/shellrun"
	_ "github.com/framegrace/skylight/apps/welcome"
	"github.com/framegrace/skylight/config"
	"github.com/framegrace/skylight/registry"
)

type componentRow struct {
	Key         string `yaml:"key" json:"key"`
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List available components",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		reg := registry.New()
		registry.RegisterBuiltIns(reg)
		// The launcher registers with a nil launch function here; it is
		// never instantiated, we only want its catalog entry.
		launcher.Register(reg, nil, nil)
		if err := reg.ScanAll(cfg.Desktop.ComponentDirs); err != nil {
			log.Printf("skyctl: component scan: %v", err)
		}

		entries := reg.List()
		rows := make([]componentRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, componentRow{
				Key:         e.Manifest.Key,
				Name:        e.Manifest.DisplayName,
				Type:        string(e.Manifest.Type),
				Category:    e.Manifest.Category,
				Description: e.Manifest.Description,
			})
		}
		return printOut(cmd, rows)
	},
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}
