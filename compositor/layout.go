// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/layout.go
// Summary: Window geometry on the canvas: effective rectangles, cascade
// placement for new windows, and gesture hit-testing.

package compositor

import (
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

const (
	defaultWindowWidth  = 56
	defaultWindowHeight = 16
	cascadeStep         = 2

	minWindowWidth  = 8
	minWindowHeight = 3

	// Below this width the title bar drops its buttons.
	minButtonWidth = 14

	maxTabWidth = 16
)

// effectiveBounds maps a window's stored geometry onto the work area.
// Maximized windows take the whole area; everything else is clamped so at
// least the chrome stays reachable after a terminal shrink.
func effectiveBounds(w sky.Window, workW, workH int) sky.Bounds {
	if w.Maximized {
		return sky.Bounds{Width: workW, Height: workH}
	}
	return clampBounds(w.Bounds, workW, workH)
}

func clampBounds(b sky.Bounds, workW, workH int) sky.Bounds {
	if b.Width < minWindowWidth {
		b.Width = minWindowWidth
	}
	if b.Height < minWindowHeight {
		b.Height = minWindowHeight
	}
	if b.Width > workW {
		b.Width = workW
	}
	if b.Height > workH {
		b.Height = workH
	}
	if b.X > workW-b.Width {
		b.X = workW - b.Width
	}
	if b.Y > workH-b.Height {
		b.Y = workH - b.Height
	}
	if b.X < 0 {
		b.X = 0
	}
	if b.Y < 0 {
		b.Y = 0
	}
	return b
}

// cascadeBounds places the n-th freshly opened window. Each new window is
// offset diagonally from the last so stacks stay visible.
func cascadeBounds(n, workW, workH int) sky.Bounds {
	b := sky.Bounds{Width: defaultWindowWidth, Height: defaultWindowHeight}
	if workW > 0 && b.Width > workW {
		b.Width = workW
	}
	if workH > 0 && b.Height > workH {
		b.Height = workH
	}
	span := workW - b.Width
	if v := workH - b.Height; v < span {
		span = v
	}
	if span > 0 {
		off := (n * cascadeStep) % (span + 1)
		b.X, b.Y = off, off
	}
	return b
}

// windowAt returns the topmost visible window containing the point.
// Snapshot windows are sorted by z-order ascending, so scan backwards.
func windowAt(snap sky.Snapshot, x, y, workW, workH int) (sky.Window, bool) {
	for i := len(snap.Windows) - 1; i >= 0; i-- {
		w := snap.Windows[i]
		if w.Minimized {
			continue
		}
		r := effectiveBounds(w, workW, workH)
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			return w, true
		}
	}
	return sky.Window{}, false
}

type hitRegion int

const (
	hitNone hitRegion = iota
	hitTitle
	hitContent
	hitMinimizeButton
	hitMaximizeButton
	hitCloseButton
	hitTab
)

// hit describes what a canvas coordinate lands on.
type hit struct {
	Region   hitRegion
	WindowID string
	GroupID  string
	TabID    string // member addressed by a tab click
}

// buttonCols returns the title-bar columns of the minimize, maximize and
// close buttons for a frame of the given width.
func buttonCols(width int) (minCol, maxCol, closeCol int) {
	return width - 6, width - 4, width - 2
}

// tabLimit is the last usable title-bar column for the tab strip.
func tabLimit(width int) int {
	if width >= minButtonWidth {
		return width - 8
	}
	return width - 1
}

// tabSpan is one tab's position inside the title bar.
type tabSpan struct {
	ID     string
	Label  string
	X0, X1 int // frame columns, [X0, X1)
}

// tabSpans lays the group's members out as tabs, left to right, dropping
// whatever does not fit.
func tabSpans(g sky.Group, title func(string) string, limit int) []tabSpan {
	spans := make([]tabSpan, 0, len(g.MemberIDs))
	x := 1
	for _, id := range g.MemberIDs {
		label := " " + ui.TruncateString(title(id), maxTabWidth) + " "
		w := runewidth.StringWidth(label)
		if x+w > limit {
			break
		}
		spans = append(spans, tabSpan{ID: id, Label: label, X0: x, X1: x + w})
		x += w + 1
	}
	return spans
}

// hitTest resolves a canvas point against the window under it.
func (c *Compositor) hitTest(snap sky.Snapshot, x, y, workW, workH int) hit {
	win, ok := windowAt(snap, x, y, workW, workH)
	if !ok {
		return hit{Region: hitNone}
	}
	r := effectiveBounds(win, workW, workH)
	fx, fy := x-r.X, y-r.Y
	if fy != 0 {
		return hit{Region: hitContent, WindowID: win.ID}
	}

	if r.Width >= minButtonWidth {
		minCol, maxCol, closeCol := buttonCols(r.Width)
		switch fx {
		case minCol:
			return hit{Region: hitMinimizeButton, WindowID: win.ID}
		case maxCol:
			return hit{Region: hitMaximizeButton, WindowID: win.ID}
		case closeCol:
			return hit{Region: hitCloseButton, WindowID: win.ID}
		}
	}

	if win.GroupID != "" {
		if g, ok := snap.Group(win.GroupID); ok {
			for _, span := range tabSpans(g, c.titleIn(snap), tabLimit(r.Width)) {
				if fx >= span.X0 && fx < span.X1 {
					return hit{Region: hitTab, WindowID: win.ID, GroupID: g.ID, TabID: span.ID}
				}
			}
		}
	}
	return hit{Region: hitTitle, WindowID: win.ID}
}
