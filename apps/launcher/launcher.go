// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/launcher.go
// Summary: Implements the app launcher for discovering and launching components.
// Usage: Type to filter, Up/Down to select, Enter to launch, Esc to clear.

package launcher

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/ui"
)

// LaunchFunc opens or focuses a component window. It matches the launch
// gateway's LaunchOrFocus signature so the gateway method can be passed
// in directly.
type LaunchFunc func(componentKey string, props map[string]any) (string, error)

var _ ui.App = (*Launcher)(nil)

// Launcher displays available components from the registry and launches them.
type Launcher struct {
	registry *registry.Registry
	launch   LaunchFunc
	theme    *theming.Theme

	mu            sync.RWMutex
	query         []rune
	entries       []*registry.AppEntry
	usageCounts   map[string]int
	selectedIdx   int
	width, height int

	stop        chan struct{}
	refreshChan chan<- bool
}

// New creates a launcher over the given registry. Selecting an entry
// calls launch with the entry's component key.
func New(reg *registry.Registry, launch LaunchFunc, theme *theming.Theme) *Launcher {
	if theme == nil {
		theme = theming.Default()
	}
	l := &Launcher{
		registry:    reg,
		launch:      launch,
		theme:       theme,
		usageCounts: make(map[string]int),
		stop:        make(chan struct{}),
	}

	l.mu.Lock()
	l.reload()
	l.mu.Unlock()

	log.Printf("Launcher: Loaded %d components", len(l.entries))
	return l
}

// Run blocks until Stop is called. All work happens in HandleKey.
func (l *Launcher) Run() error {
	<-l.stop
	return nil
}

// Stop signals the Run loop to terminate.
func (l *Launcher) Stop() {
	close(l.stop)
}

func (l *Launcher) SetRefreshNotifier(refreshChan chan<- bool) {
	l.refreshChan = refreshChan
}

// reload refreshes the entry list from the registry for the current
// query. Assumes l.mu is already locked.
func (l *Launcher) reload() {
	if l.registry == nil {
		log.Printf("Launcher: No registry available")
		l.entries = nil
		return
	}

	q := strings.TrimSpace(string(l.query))
	if q == "" {
		l.entries = l.registry.List()
		l.sortByUsage()
	} else {
		l.entries = l.registry.Search(q)
	}

	if l.selectedIdx >= len(l.entries) {
		l.selectedIdx = 0
	}
}

// sortByUsage sorts entries most used first. Assumes l.mu is already locked.
func (l *Launcher) sortByUsage() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.usageCounts[l.entries[i].Manifest.Key] > l.usageCounts[l.entries[j].Manifest.Key]
	})
}

// HandleKey handles navigation, query editing and launching.
func (l *Launcher) HandleKey(ev *tcell.EventKey) {
	l.mu.Lock()

	switch ev.Key() {
	case tcell.KeyUp:
		if l.selectedIdx > 0 {
			l.selectedIdx--
		}

	case tcell.KeyDown:
		if l.selectedIdx < len(l.entries)-1 {
			l.selectedIdx++
		}

	case tcell.KeyEnter:
		if l.selectedIdx >= 0 && l.selectedIdx < len(l.entries) {
			selected := l.entries[l.selectedIdx]
			key := selected.Manifest.Key
			l.usageCounts[key]++
			launch := l.launch
			l.mu.Unlock()

			if launch == nil {
				log.Printf("Launcher: Cannot launch %q, no launch gateway attached", key)
				return
			}
			if _, err := launch(key, nil); err != nil {
				log.Printf("Launcher: Failed to launch %q: %v", key, err)
			}
			ui.Notify(l.refreshChan)
			return
		}

	case tcell.KeyEscape:
		l.query = l.query[:0]
		l.selectedIdx = 0
		l.reload()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(l.query) > 0 {
			l.query = l.query[:len(l.query)-1]
			l.selectedIdx = 0
			l.reload()
		}

	case tcell.KeyRune:
		l.query = append(l.query, ev.Rune())
		l.selectedIdx = 0
		l.reload()
	}

	l.mu.Unlock()
	ui.Notify(l.refreshChan)
}

// Resize stores the new dimensions of the window interior.
func (l *Launcher) Resize(cols, rows int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.width, l.height = cols, rows
}

// Render paints the query line and the entry list.
func (l *Launcher) Render() [][]ui.Cell {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.width <= 0 || l.height <= 0 {
		return [][]ui.Cell{}
	}

	bg := l.theme.Style("text.primary", "bg.surface")
	muted := l.theme.Style("text.muted", "bg.surface")
	selected := l.theme.Style("text.inverse", "accent")

	buf := make([][]ui.Cell, l.height)
	for y := range buf {
		buf[y] = make([]ui.Cell, l.width)
		for x := range buf[y] {
			buf[y][x] = ui.Cell{Ch: ' ', Style: bg}
		}
	}

	if len(l.query) > 0 {
		drawString(buf, 0, 2, l.width-2, "> "+string(l.query), bg)
	} else {
		x := drawString(buf, 0, 2, l.width-2, "> ", bg)
		drawString(buf, 0, x, l.width-2, "type to search", muted)
	}

	for i, entry := range l.entries {
		y := 2 + i
		if y >= l.height {
			break
		}

		text := fmt.Sprintf("%s  %s", entry.Manifest.Icon, entry.Manifest.DisplayName)
		if entry.Manifest.Description != "" {
			text += fmt.Sprintf(" - %s", entry.Manifest.Description)
		}

		style := bg
		if i == l.selectedIdx {
			style = selected
			for x := 2; x < l.width-2; x++ {
				buf[y][x] = ui.Cell{Ch: ' ', Style: style}
			}
		}
		drawString(buf, y, 2, l.width-2, text, style)
	}

	return buf
}

// drawString places a string on the buffer row, advancing per rune width
// so emoji icons line up. Returns the x position after the last rune.
func drawString(buf [][]ui.Cell, y, x, maxX int, s string, style tcell.Style) int {
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		buf[y][x] = ui.Cell{Ch: ch, Style: style}
		for i := 1; i < w; i++ {
			buf[y][x+i] = ui.Cell{Ch: ' ', Style: style}
		}
		x += w
	}
	return x
}

// GetTitle returns the launcher title.
func (l *Launcher) GetTitle() string {
	return "Launcher"
}
