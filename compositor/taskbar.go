// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/taskbar.go
// Summary: Bottom taskbar: one entry per ungrouped window, one per group.
// Click toggles minimize/restore (windows) or collapse/expand (groups).

package compositor

import (
	"fmt"
	"sort"

	"github.com/mattn/go-runewidth"

	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

const maxTaskbarEntry = 20

// taskbarEntry is one clickable span on the taskbar row.
type taskbarEntry struct {
	Label    string
	WindowID string // set for window entries
	GroupID  string // set for group entries
	Dimmed   bool   // minimized window or collapsed group
	Active   bool   // holds the focused window
	X0, X1   int    // canvas columns, [X0, X1)
}

// taskbarEntries lays the bar out left to right. Windows are ordered by
// open time so entries do not jump around as the stack is raised; grouped
// windows are represented by their group entry only.
func (c *Compositor) taskbarEntries(snap sky.Snapshot, width int) []taskbarEntry {
	title := c.titleIn(snap)

	wins := make([]sky.Window, 0, len(snap.Windows))
	for _, w := range snap.Windows {
		if w.GroupID == "" {
			wins = append(wins, w)
		}
	}
	sort.Slice(wins, func(i, j int) bool {
		if !wins[i].OpenedAt.Equal(wins[j].OpenedAt) {
			return wins[i].OpenedAt.Before(wins[j].OpenedAt)
		}
		return wins[i].ID < wins[j].ID
	})

	entries := make([]taskbarEntry, 0, len(wins)+len(snap.Groups))
	x := 1
	place := func(e taskbarEntry) bool {
		w := runewidth.StringWidth(e.Label)
		if x+w > width-1 {
			return false
		}
		e.X0, e.X1 = x, x+w
		entries = append(entries, e)
		x += w + 1
		return true
	}

	for _, w := range wins {
		label := " " + ui.TruncateString(title(w.ID), maxTaskbarEntry) + " "
		if !place(taskbarEntry{
			Label:    label,
			WindowID: w.ID,
			Dimmed:   w.Minimized,
			Active:   w.Focused,
		}) {
			return entries
		}
	}

	for _, g := range snap.Groups {
		name := g.Name
		if name == "" {
			name = "group"
		}
		label := " " + ui.TruncateString(fmt.Sprintf("%s (%d)", name, len(g.MemberIDs)), maxTaskbarEntry) + " "
		active := false
		if snap.FocusedID != "" {
			if fw, ok := snap.Window(snap.FocusedID); ok && fw.GroupID == g.ID {
				active = true
			}
		}
		if !place(taskbarEntry{
			Label:   label,
			GroupID: g.ID,
			Dimmed:  g.Collapsed,
			Active:  active,
		}) {
			return entries
		}
	}
	return entries
}

// drawTaskbar paints the bar onto the driver's bottom row.
func (c *Compositor) drawTaskbar(snap sky.Snapshot, width, y int) {
	barStyle := c.theme.Style("taskbar.fg", "taskbar.bg")
	for x := 0; x < width; x++ {
		c.driver.SetContent(x, y, ' ', nil, barStyle)
	}

	entryStyle := c.theme.Style("taskbar.entry.fg", "taskbar.entry.bg")
	dimStyle := c.theme.Style("text.muted", "taskbar.entry.bg")
	activeStyle := c.theme.Style("tab.active.fg", "tab.active.bg")

	for _, e := range c.taskbarEntries(snap, width) {
		style := entryStyle
		if e.Dimmed {
			style = dimStyle
		}
		if e.Active {
			style = activeStyle
		}
		x := e.X0
		for _, ch := range e.Label {
			w := runewidth.RuneWidth(ch)
			if w == 0 || x >= e.X1 {
				continue
			}
			c.driver.SetContent(x, y, ch, nil, style)
			for i := 1; i < w && x+i < e.X1; i++ {
				c.driver.SetContent(x+i, y, ' ', nil, style)
			}
			x += w
		}
	}
}

// clickTaskbar resolves a click on the bar row and applies the toggle.
func (c *Compositor) clickTaskbar(snap sky.Snapshot, x, width int) {
	for _, e := range c.taskbarEntries(snap, width) {
		if x < e.X0 || x >= e.X1 {
			continue
		}
		switch {
		case e.WindowID != "":
			w, ok := snap.Window(e.WindowID)
			if ok && w.Focused {
				c.do("minimize", c.store.Minimize(e.WindowID))
			} else {
				c.do("raise", c.store.BringToFront(e.WindowID))
			}
		case e.GroupID != "":
			g, ok := snap.Group(e.GroupID)
			if !ok {
				return
			}
			if g.Collapsed {
				c.do("expand", c.store.SetActiveGroupMember(g.ID, g.ActiveMemberID))
			} else {
				c.do("collapse", c.store.CollapseGroup(g.ID))
			}
		}
		return
	}
}
