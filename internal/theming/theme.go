// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/theme.go
// Summary: Resolved chrome palettes: defaults, overrides, per-component merge.
// Usage: The compositor builds one base theme at startup and derives
// per-component themes from config overrides.

package theming

import (
	"log"

	"github.com/gdamore/tcell/v2"
)

// Theme is an immutable resolved palette. Lookups fall back to the
// default palette so a partial override set is always safe to use.
type Theme struct {
	Name   string
	colors map[string]tcell.Color
}

// Default semantic keys. The compositor paints window chrome, group tab
// strips and the taskbar exclusively through these.
var defaultPalette = paletteFromHex(map[string]string{
	"bg.desktop":   "#1e1e2e",
	"bg.surface":   "#181825",
	"text.primary": "#cdd6f4",
	"text.muted":   "#6c7086",
	"text.inverse": "#11111b",
	"accent":       "#cba6f7",

	"chrome.title.active.bg": "#cba6f7",
	"chrome.title.active.fg": "#11111b",
	"chrome.border.active":   "#cba6f7",

	"tab.active.bg": "#cba6f7",
	"tab.active.fg": "#11111b",

	"taskbar.bg":       "#11111b",
	"taskbar.fg":       "#cdd6f4",
	"taskbar.entry.bg": "#313244",
	"taskbar.entry.fg": "#cdd6f4",
})

func paletteFromHex(hex map[string]string) map[string]tcell.Color {
	colors := make(map[string]tcell.Color, len(hex))
	for key, value := range hex {
		c, ok := ParseColor(value)
		if !ok {
			panic("theming: bad default color " + value + " for " + key)
		}
		colors[key] = c
	}
	return colors
}

// Default returns the built-in palette with derived inactive variants.
func Default() *Theme {
	return New("default", nil)
}

// New builds a theme from overrides layered over the defaults. Inactive
// chrome variants are derived from their active counterparts unless the
// overrides pin them explicitly.
func New(name string, overrides map[string]string) *Theme {
	colors := make(map[string]tcell.Color, len(defaultPalette)+len(overrides))
	for k, c := range defaultPalette {
		colors[k] = c
	}
	for k, v := range overrides {
		c, ok := ParseColor(v)
		if !ok {
			log.Printf("Theming: ignoring bad color %q for %s", v, k)
			continue
		}
		colors[k] = c
	}

	t := &Theme{Name: name, colors: colors}
	t.deriveInactive(overrides)
	return t
}

// ForComponent returns the base theme merged with per-component overrides.
func ForComponent(base *Theme, overrides map[string]string) *Theme {
	if base == nil {
		base = Default()
	}
	if len(overrides) == 0 {
		return base
	}

	colors := make(map[string]tcell.Color, len(base.colors)+len(overrides))
	for k, c := range base.colors {
		colors[k] = c
	}
	for k, v := range overrides {
		c, ok := ParseColor(v)
		if !ok {
			log.Printf("Theming: ignoring bad color %q for %s", v, k)
			continue
		}
		colors[k] = c
	}

	t := &Theme{Name: base.Name, colors: colors}
	t.deriveInactive(overrides)
	return t
}

// Color resolves a semantic key. Unknown keys resolve to the terminal
// default so a typo shows up as unstyled output rather than a crash.
func (t *Theme) Color(key string) tcell.Color {
	if t != nil {
		if c, ok := t.colors[key]; ok {
			return c
		}
	}
	if c, ok := defaultPalette[key]; ok {
		return c
	}
	return tcell.ColorDefault
}

// Style builds a tcell style from two semantic keys.
func (t *Theme) Style(fg, bg string) tcell.Style {
	return tcell.StyleDefault.Foreground(t.Color(fg)).Background(t.Color(bg))
}

// deriveInactive fills the unfocused chrome variants by pulling the
// active colors toward the surface background. Pinned overrides win.
func (t *Theme) deriveInactive(pinned map[string]string) {
	surface := t.Color("bg.surface")
	derive := func(activeKey, inactiveKey string, amount float64) {
		if _, ok := pinned[inactiveKey]; ok {
			return
		}
		t.colors[inactiveKey] = Dim(t.Color(activeKey), surface, amount)
	}

	derive("chrome.title.active.bg", "chrome.title.inactive.bg", 0.7)
	derive("chrome.title.active.fg", "chrome.title.inactive.fg", 0.35)
	derive("chrome.border.active", "chrome.border.inactive", 0.7)
	derive("tab.active.bg", "tab.inactive.bg", 0.6)
	derive("tab.active.fg", "tab.inactive.fg", 0.3)
}
