// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/window.go
// Summary: Window entity model: one open application surface.

package sky

import "time"

// Bounds is window geometry in canvas cells. The store treats it as an
// opaque payload written by the compositor; it never computes with it.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window is one open application surface.
//
// Invariants maintained by the store: at most one window is Focused,
// Minimized and Maximized are never both true, and a non-empty GroupID
// always names an existing group that lists this window as a member.
type Window struct {
	ID           string         `json:"id"`
	ComponentKey string         `json:"component_key"`
	Props        map[string]any `json:"props,omitempty"`
	ZOrder       int            `json:"z_order"`
	Minimized    bool           `json:"minimized"`
	Maximized    bool           `json:"maximized"`
	Focused      bool           `json:"focused"`
	GroupID      string         `json:"group_id,omitempty"`
	Bounds       Bounds         `json:"bounds"`
	SavedBounds  *Bounds        `json:"saved_bounds,omitempty"`
	OpenedAt     time.Time      `json:"opened_at"`
}

func (w *Window) clone() *Window {
	c := *w
	c.Props = cloneProps(w.Props)
	if w.SavedBounds != nil {
		sb := *w.SavedBounds
		c.SavedBounds = &sb
	}
	return &c
}

// cloneProps copies one level deep. Values are opaque payloads the store
// never inspects; callers that store nested mutable values share them.
func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	c := make(map[string]any, len(props))
	for k, v := range props {
		c[k] = v
	}
	return c
}
