// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/skyctl/sessions.go
// Summary: Session catalog commands: list, show, delete.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/framegrace/skylight/config"
	"github.com/framegrace/skylight/internal/session"
	"github.com/framegrace/skylight/sky"
)

func openSessions() (*session.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return session.Open(cfg.Session.Path)
}

type sessionRow struct {
	Name    string `yaml:"name" json:"name"`
	Windows int    `yaml:"windows" json:"windows"`
	Groups  int    `yaml:"groups" json:"groups"`
	Updated string `yaml:"updated" json:"updated"`
}

// Output shapes for `show`. The snapshot types carry JSON tags for the
// session codec, so YAML needs its own projection.
type windowRow struct {
	ID        string         `yaml:"id" json:"id"`
	Component string         `yaml:"component" json:"component"`
	Props     map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
	Z         int            `yaml:"z" json:"z"`
	Minimized bool           `yaml:"minimized,omitempty" json:"minimized,omitempty"`
	Maximized bool           `yaml:"maximized,omitempty" json:"maximized,omitempty"`
	Focused   bool           `yaml:"focused,omitempty" json:"focused,omitempty"`
	Group     string         `yaml:"group,omitempty" json:"group,omitempty"`
	Bounds    [4]int         `yaml:"bounds,flow" json:"bounds"`
}

type groupRow struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Members   []string `yaml:"members" json:"members"`
	ActiveTab string   `yaml:"active_tab" json:"active_tab"`
	Collapsed bool     `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
}

type sessionDetail struct {
	Name    string      `yaml:"name" json:"name"`
	Windows []windowRow `yaml:"windows" json:"windows"`
	Groups  []groupRow  `yaml:"groups,omitempty" json:"groups,omitempty"`
	Focused string      `yaml:"focused,omitempty" json:"focused,omitempty"`
}

func detailOf(name string, snap sky.Snapshot) sessionDetail {
	d := sessionDetail{Name: name, Focused: snap.FocusedID}
	for _, w := range snap.Windows {
		d.Windows = append(d.Windows, windowRow{
			ID:        w.ID,
			Component: w.ComponentKey,
			Props:     w.Props,
			Z:         w.ZOrder,
			Minimized: w.Minimized,
			Maximized: w.Maximized,
			Focused:   w.Focused,
			Group:     w.GroupID,
			Bounds:    [4]int{w.Bounds.X, w.Bounds.Y, w.Bounds.Width, w.Bounds.Height},
		})
	}
	for _, g := range snap.Groups {
		d.Groups = append(d.Groups, groupRow{
			ID:        g.ID,
			Name:      g.Name,
			Members:   g.MemberIDs,
			ActiveTab: g.ActiveMemberID,
			Collapsed: g.Collapsed,
		})
	}
	return d
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer store.Close()

		metas, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([]sessionRow, 0, len(metas))
		for _, m := range metas {
			rows = append(rows, sessionRow{
				Name:    m.Name,
				Windows: m.Windows,
				Groups:  m.Groups,
				Updated: m.UpdatedAt.Format(time.RFC3339),
			})
		}
		return printOut(cmd, rows)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Dump a stored session's windows and groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printOut(cmd, detailOf(args[0], snap))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Session %q deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
