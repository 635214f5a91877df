// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/input.go
// Summary: Translates terminal input into window store operations. Keys
// the shell does not claim go to the focused window's app.

package compositor

import (
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/ui"
)

// Shell key bindings. Everything else is delegated to the focused app.
const (
	keyQuit      = tcell.KeyCtrlQ
	keyLauncher  = tcell.KeyCtrlL
	keyCycle     = tcell.KeyCtrlA
	keyClose     = tcell.KeyCtrlW
	keyMinimize  = tcell.KeyCtrlZ
	keyMaxToggle = tcell.KeyCtrlF
	keyNextTab   = tcell.KeyCtrlT
)

func (c *Compositor) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		c.handleKey(ev)
	case *tcell.EventMouse:
		c.handleMouse(ev)
	case *tcell.EventResize:
		c.driver.Sync()
	}
}

func (c *Compositor) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case keyQuit:
		c.Close()
		return
	case keyLauncher:
		if c.gateway != nil {
			if _, err := c.gateway.LaunchOrFocus("launcher", nil); err != nil {
				log.Printf("Compositor: launcher: %v", err)
			}
		}
		return
	case keyCycle:
		c.cycleFocus()
		return
	case keyClose:
		if id := c.store.FocusedID(); id != "" {
			c.do("close", c.store.Close(id))
		}
		return
	case keyMinimize:
		if id := c.store.FocusedID(); id != "" {
			c.do("minimize", c.store.Minimize(id))
		}
		return
	case keyMaxToggle:
		c.toggleMaximize()
		return
	case keyNextTab:
		c.cycleGroupTab()
		return
	}

	if host := c.hostFor(c.store.FocusedID()); host != nil {
		host.app.HandleKey(ev)
	}
}

// cycleFocus raises the bottom-most visible window, rotating the stack.
func (c *Compositor) cycleFocus() {
	snap := c.store.Snapshot()
	for _, w := range snap.Windows {
		if !w.Minimized {
			c.do("cycle", c.store.BringToFront(w.ID))
			return
		}
	}
}

func (c *Compositor) toggleMaximize() {
	id := c.store.FocusedID()
	if id == "" {
		return
	}
	w, ok := c.store.Window(id)
	if !ok {
		return
	}
	if w.Maximized {
		c.do("restore", c.store.Restore(id))
	} else {
		c.do("maximize", c.store.Maximize(id))
	}
}

// cycleGroupTab advances the focused window's group to its next tab.
func (c *Compositor) cycleGroupTab() {
	id := c.store.FocusedID()
	if id == "" {
		return
	}
	w, ok := c.store.Window(id)
	if !ok || w.GroupID == "" {
		return
	}
	g, ok := c.store.Group(w.GroupID)
	if !ok || len(g.MemberIDs) < 2 {
		return
	}
	for i, member := range g.MemberIDs {
		if member == g.ActiveMemberID {
			next := g.MemberIDs[(i+1)%len(g.MemberIDs)]
			c.do("tab", c.store.SetActiveGroupMember(g.ID, next))
			return
		}
	}
}

func (c *Compositor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	width, height := c.driver.Size()
	workW, workH := c.workSize()

	if c.drag != nil {
		if buttons&tcell.Button1 != 0 {
			b := c.drag.origin
			b.X += x - c.drag.startX
			b.Y += y - c.drag.startY
			c.do("move", c.store.SetBounds(c.drag.windowID, clampBounds(b, workW, workH)))
		} else {
			c.drag = nil
		}
		return
	}

	if buttons&tcell.Button1 == 0 {
		return
	}

	snap := c.store.Snapshot()
	if c.showTaskbar && y == height-1 {
		c.clickTaskbar(snap, x, width)
		return
	}

	ht := c.hitTest(snap, x, y, workW, workH)
	switch ht.Region {
	case hitNone:
		return
	case hitCloseButton:
		c.do("close", c.store.Close(ht.WindowID))
	case hitMinimizeButton:
		c.do("minimize", c.store.Minimize(ht.WindowID))
	case hitMaximizeButton:
		if w, ok := snap.Window(ht.WindowID); ok && w.Maximized {
			c.do("restore", c.store.Restore(ht.WindowID))
		} else {
			c.do("maximize", c.store.Maximize(ht.WindowID))
		}
	case hitTab:
		c.do("tab", c.store.SetActiveGroupMember(ht.GroupID, ht.TabID))
	case hitTitle:
		c.do("raise", c.store.BringToFront(ht.WindowID))
		if w, ok := snap.Window(ht.WindowID); ok && !w.Maximized {
			c.drag = &dragState{
				windowID: w.ID,
				startX:   x,
				startY:   y,
				origin:   effectiveBounds(w, workW, workH),
			}
		}
	case hitContent:
		w, ok := snap.Window(ht.WindowID)
		if !ok {
			return
		}
		if !w.Focused {
			c.do("raise", c.store.BringToFront(ht.WindowID))
			return
		}
		if host := c.hostFor(ht.WindowID); host != nil {
			if mh, ok := host.app.(ui.MouseHandler); ok {
				rect := effectiveBounds(w, workW, workH)
				mh.HandleMouse(tcell.NewEventMouse(x-rect.X-1, y-rect.Y-1, buttons, ev.Modifiers()))
			}
		}
	}
}
