// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/frame.go
// Summary: Paints one window: title bar (or group tab strip), buttons,
// borders and the hosted app's content.

package compositor

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

const (
	buttonMinimize = '_'
	buttonMaximize = '□'
	buttonClose    = '×'
)

// componentTheme resolves the chrome palette for one component key,
// layering config overrides over the base theme. Called from the draw
// goroutine only.
func (c *Compositor) componentTheme(key string) *theming.Theme {
	if th, ok := c.themes[key]; ok {
		return th
	}
	var overrides map[string]string
	if c.cfg != nil {
		overrides = c.cfg.Component(key).Theme
	}
	th := theming.ForComponent(c.theme, overrides)
	c.themes[key] = th
	return th
}

// titleIn resolves window titles inside one snapshot: the running app
// names its window, fallback is the component key.
func (c *Compositor) titleIn(snap sky.Snapshot) func(string) string {
	return func(id string) string {
		if host := c.hostFor(id); host != nil {
			if t := host.app.GetTitle(); t != "" {
				return t
			}
		}
		if w, ok := snap.Window(id); ok {
			return w.ComponentKey
		}
		return id
	}
}

// renderFrame builds the full cell buffer for one window at its effective
// rectangle.
func (c *Compositor) renderFrame(win sky.Window, rect sky.Bounds, snap sky.Snapshot) [][]ui.Cell {
	th := c.componentTheme(win.ComponentKey)

	titleFg, titleBg := "chrome.title.inactive.fg", "chrome.title.inactive.bg"
	borderFg := "chrome.border.inactive"
	if win.Focused {
		titleFg, titleBg = "chrome.title.active.fg", "chrome.title.active.bg"
		borderFg = "chrome.border.active"
	}
	titleStyle := th.Style(titleFg, titleBg)
	borderStyle := th.Style(borderFg, "bg.surface")
	contentStyle := th.Style("text.primary", "bg.surface")

	w, h := rect.Width, rect.Height
	buf := ui.NewBuffer(w, h, contentStyle)
	if w == 0 || h == 0 {
		return buf
	}

	for x := 0; x < w; x++ {
		buf[0][x] = ui.Cell{Ch: ' ', Style: titleStyle}
	}
	c.paintTitleRow(buf, win, snap, th, titleStyle, w)

	if w >= minButtonWidth {
		minCol, maxCol, closeCol := buttonCols(w)
		buf[0][minCol] = ui.Cell{Ch: buttonMinimize, Style: titleStyle}
		buf[0][maxCol] = ui.Cell{Ch: buttonMaximize, Style: titleStyle}
		buf[0][closeCol] = ui.Cell{Ch: buttonClose, Style: titleStyle}
	}

	for y := 1; y < h; y++ {
		buf[y][0] = ui.Cell{Ch: tcell.RuneVLine, Style: borderStyle}
		if w > 1 {
			buf[y][w-1] = ui.Cell{Ch: tcell.RuneVLine, Style: borderStyle}
		}
	}
	if h > 1 {
		for x := 0; x < w; x++ {
			buf[h-1][x] = ui.Cell{Ch: tcell.RuneHLine, Style: borderStyle}
		}
		buf[h-1][0] = ui.Cell{Ch: tcell.RuneLLCorner, Style: borderStyle}
		if w > 1 {
			buf[h-1][w-1] = ui.Cell{Ch: tcell.RuneLRCorner, Style: borderStyle}
		}
	}

	c.paintContent(buf, win, th, w, h)
	return buf
}

// paintTitleRow draws either the plain window title or, for grouped
// windows, the group's tab strip.
func (c *Compositor) paintTitleRow(buf [][]ui.Cell, win sky.Window, snap sky.Snapshot, th *theming.Theme, titleStyle tcell.Style, w int) {
	if win.GroupID != "" {
		if g, ok := snap.Group(win.GroupID); ok {
			activeStyle := th.Style("tab.active.fg", "tab.active.bg")
			idleStyle := th.Style("tab.inactive.fg", "tab.inactive.bg")
			for _, span := range tabSpans(g, c.titleIn(snap), tabLimit(w)) {
				style := idleStyle
				if span.ID == g.ActiveMemberID {
					style = activeStyle
				}
				ui.DrawString(buf, span.X0, 0, span.Label, style)
			}
			return
		}
	}

	reserve := 2
	if w >= minButtonWidth {
		reserve = 8
	}
	title := ui.TruncateString(c.titleIn(snap)(win.ID), w-reserve)
	ui.DrawString(buf, 1, 0, title, titleStyle)
}

// paintContent blits the hosted app's render output into the frame
// interior, resizing the app first if the interior changed.
func (c *Compositor) paintContent(buf [][]ui.Cell, win sky.Window, th *theming.Theme, w, h int) {
	cw, ch := w-2, h-2
	if cw <= 0 || ch <= 0 {
		return
	}
	host := c.hostFor(win.ID)
	if host == nil {
		msg := ui.TruncateString("component unavailable: "+win.ComponentKey, cw)
		ui.DrawString(buf, 1+(cw-len([]rune(msg)))/2, 1+ch/2, msg, th.Style("text.muted", "bg.surface"))
		return
	}

	host.resizeTo(cw, ch)
	content := host.app.Render()
	for y := 0; y < ch && y < len(content); y++ {
		row := content[y]
		for x := 0; x < cw && x < len(row); x++ {
			buf[1+y][1+x] = row[x]
		}
	}
}
