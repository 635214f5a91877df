// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/welcome/welcome.go
// Summary: Static welcome screen listing the default key bindings.

package welcome

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/ui"
)

// welcomeApp is a simple internal widget that displays a static welcome message.
type welcomeApp struct {
	width, height int
	mu            sync.RWMutex
}

// New creates the welcome app.
func New(props map[string]any) ui.App {
	return &welcomeApp{}
}

func (a *welcomeApp) Run() error {
	// No background process needed for this static app.
	return nil
}

func (a *welcomeApp) Stop() {}

func (a *welcomeApp) Resize(cols, rows int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = cols, rows
}

func (a *welcomeApp) Render() [][]ui.Cell {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.width <= 0 || a.height <= 0 {
		return [][]ui.Cell{}
	}

	buffer := make([][]ui.Cell, a.height)
	for i := range buffer {
		buffer[i] = make([]ui.Cell, a.width)
		for j := range buffer[i] {
			buffer[i][j] = ui.Cell{Ch: ' ', Style: tcell.StyleDefault}
		}
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen.TrueColor())

	messages := []string{
		"Welcome to Skylight!",
		"",
		"  Ctrl-L     - Open the launcher",
		"  Ctrl-A     - Cycle window focus",
		"  Ctrl-W     - Close the focused window",
		"  Ctrl-Z     - Minimize the focused window",
		"  Ctrl-F     - Toggle maximize",
		"  Ctrl-T     - Next tab in a window group",
		"",
		"Drag a title bar to move a window.",
		"Press 'Ctrl-Q' to quit.",
	}

	for i, msg := range messages {
		y := (a.height / 2) - len(messages)/2 + i
		x := (a.width - len(msg)) / 2
		if y >= 0 && y < a.height && x >= 0 {
			for j, ch := range msg {
				if x+j < a.width {
					buffer[y][x+j] = ui.Cell{Ch: ch, Style: style}
				}
			}
		}
	}
	return buffer
}

func (a *welcomeApp) GetTitle() string {
	return "Welcome"
}

func (a *welcomeApp) HandleKey(ev *tcell.EventKey) {
	// This app doesn't handle key presses.
}

// SetRefreshNotifier satisfies the interface, but this static app doesn't need to do anything with it.
func (a *welcomeApp) SetRefreshNotifier(refreshChan chan<- bool) {
	// No-op
}
