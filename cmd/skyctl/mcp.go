// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/skyctl/mcp.go
// Summary: Serve the MCP tool surface over stdio against a stored
//          session, without a running shell.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/framegrace/skylight/apps/launcher"
	"github.com/framegrace/skylight/config"
	"github.com/framegrace/skylight/internal/mcphost"
	"github.com/framegrace/skylight/internal/session"
	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/sky"
)

const mcpSaveTimeout = 5 * time.Second

var mcpSession string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio against a stored session",
	Long: `mcp loads the named session into an offline window store and exposes
the full tool surface over stdio. Changes are written back to the
session database, so the next shell start picks them up. It does not
talk to a running shell.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		sessions, err := session.Open(cfg.Session.Path)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer sessions.Close()

		store := sky.NewStore()
		defer store.Shutdown()

		snap, err := sessions.Load(cmd.Context(), mcpSession)
		switch {
		case errors.Is(err, session.ErrNoSession):
			// New session: the first save creates it.
		case err != nil:
			return fmt.Errorf("load session %q: %w", mcpSession, err)
		default:
			if err := store.LoadSnapshot(snap); err != nil {
				return fmt.Errorf("session %q rejected by store: %w", mcpSession, err)
			}
		}

		reg := registry.New()
		registry.RegisterBuiltIns(reg)
		gateway := sky.NewGateway(store, reg)
		launcher.Register(reg, gateway.LaunchOrFocus, nil)
		if err := reg.ScanAll(cfg.Desktop.ComponentDirs); err != nil {
			log.Printf("skyctl: component scan: %v", err)
		}

		debounce := time.Duration(cfg.Session.DebounceMs) * time.Millisecond
		saver := session.NewAutosaver(store, sessions, mcpSession, debounce)
		saver.Start()

		host := mcphost.New(store, gateway, reg, version)
		serveErr := host.ServeStdio()

		saver.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), mcpSaveTimeout)
		defer cancel()
		if err := sessions.Save(ctx, mcpSession, store.Snapshot()); err != nil {
			log.Printf("skyctl: final save of %q: %v", mcpSession, err)
		}
		return serveErr
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpSession, "session", "default", "session to load and persist")
	rootCmd.AddCommand(mcpCmd)
}
