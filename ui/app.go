// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/app.go
// Summary: Contract between the compositor and everything a window can host.

package ui

import "github.com/gdamore/tcell/v2"

// Cell is a single rendered character cell.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// App is implemented by every application a window can host.
//
// Run blocks until Stop is called and owns the app's internal ticking or
// I/O. Render and Resize are called from the compositor goroutine while Run
// is active, so implementations guard shared state with their own mutex.
type App interface {
	Run() error
	Stop()
	Resize(cols, rows int)
	Render() [][]Cell
	GetTitle() string
	HandleKey(ev *tcell.EventKey)
	SetRefreshNotifier(ch chan<- bool)
}

// MouseHandler is implemented by apps that consume raw mouse events.
type MouseHandler interface {
	HandleMouse(ev *tcell.EventMouse)
}

// Notify performs the non-blocking refresh send used by app tick loops.
func Notify(ch chan<- bool) {
	if ch == nil {
		return
	}
	select {
	case ch <- true:
	default:
	}
}
