// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/clock.go
// Summary: A minimal built-in app showing the current time.

package clock

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/ui"
)

const defaultFormat = "15:04:05"

type clockApp struct {
	width, height int
	format        string
	currentTime   string
	mu            sync.RWMutex
	stop          chan struct{}
	refreshChan   chan<- bool
	buf           [][]ui.Cell
}

// New creates a clock app. Props may carry "format", a Go time layout
// string that replaces the default HH:MM:SS.
func New(props map[string]any) ui.App {
	format := defaultFormat
	if f, ok := props["format"].(string); ok && f != "" {
		format = f
	}
	return &clockApp{
		format: format,
		stop:   make(chan struct{}),
	}
}

// HandleKey does nothing for the clock app.
func (a *clockApp) HandleKey(ev *tcell.EventKey) {}

func (a *clockApp) SetRefreshNotifier(refreshChan chan<- bool) {
	a.refreshChan = refreshChan
}

// Run starts a ticker to update the time every second.
func (a *clockApp) Run() error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	updateTime := func() {
		a.mu.Lock()
		a.currentTime = time.Now().Format(a.format)
		a.mu.Unlock()
	}
	updateTime()

	for {
		select {
		case <-ticker.C:
			updateTime()
			ui.Notify(a.refreshChan)
		case <-a.stop:
			return nil
		}
	}
}

// Stop signals the Run loop to terminate.
func (a *clockApp) Stop() {
	close(a.stop)
}

// Resize stores the new dimensions of the window interior.
func (a *clockApp) Resize(cols, rows int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = cols, rows
}

// Render centers the formatted time in the window.
func (a *clockApp) Render() [][]ui.Cell {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.width <= 0 || a.height <= 0 {
		return [][]ui.Cell{}
	}

	if len(a.buf) != a.height || (len(a.buf) > 0 && len(a.buf[0]) != a.width) {
		a.buf = make([][]ui.Cell, a.height)
		for y := 0; y < a.height; y++ {
			a.buf[y] = make([]ui.Cell, a.width)
		}
	}

	for i := range a.buf {
		for j := range a.buf[i] {
			a.buf[i][j] = ui.Cell{Ch: ' ', Style: tcell.StyleDefault}
		}
	}

	style := tcell.StyleDefault.Foreground(tcell.PaletteColor(6))

	str := a.currentTime
	y := a.height / 2
	x := (a.width - len(str)) / 2

	if y < a.height && x >= 0 {
		for i, ch := range str {
			if x+i < a.width {
				a.buf[y][x+i] = ui.Cell{Ch: ch, Style: style}
			}
		}
	}

	return a.buf
}

func (a *clockApp) GetTitle() string {
	return "Clock"
}
