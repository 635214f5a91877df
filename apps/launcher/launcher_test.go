// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package launcher

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/ui"
)

// mockApp is a minimal app for testing.
type mockApp struct {
	title string
}

func (m *mockApp) Run() error                                 { return nil }
func (m *mockApp) Stop()                                      {}
func (m *mockApp) Resize(cols, rows int)                      {}
func (m *mockApp) Render() [][]ui.Cell                        { return nil }
func (m *mockApp) GetTitle() string                           { return m.title }
func (m *mockApp) HandleKey(ev *tcell.EventKey)               {}
func (m *mockApp) SetRefreshNotifier(refreshChan chan<- bool) {}

func createTestRegistry() *registry.Registry {
	reg := registry.New()

	reg.RegisterBuiltIn(&registry.Manifest{
		Key: "editor", DisplayName: "Editor", Description: "Edit text",
	}, func(map[string]any) ui.App { return &mockApp{title: "Editor"} })
	reg.RegisterBuiltIn(&registry.Manifest{
		Key: "pad", DisplayName: "Pad", Description: "Scratch pad",
	}, func(map[string]any) ui.App { return &mockApp{title: "Pad"} })
	reg.RegisterBuiltIn(&registry.Manifest{
		Key: "term", DisplayName: "Terminal", Description: "Run a shell",
	}, func(map[string]any) ui.App { return &mockApp{title: "Terminal"} })

	return reg
}

func TestLauncher_Creation(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)

	if l.GetTitle() != "Launcher" {
		t.Errorf("Expected title 'Launcher', got '%s'", l.GetTitle())
	}
	if len(l.entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(l.entries))
	}
}

func TestLauncher_NavigationUpDown(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)

	if l.selectedIdx != 0 {
		t.Errorf("Expected selectedIdx 0, got %d", l.selectedIdx)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if l.selectedIdx != 1 {
		t.Errorf("After Down, expected selectedIdx 1, got %d", l.selectedIdx)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if l.selectedIdx != 2 {
		t.Errorf("After Down at boundary, expected selectedIdx 2, got %d", l.selectedIdx)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if l.selectedIdx != 1 {
		t.Errorf("After Up, expected selectedIdx 1, got %d", l.selectedIdx)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if l.selectedIdx != 0 {
		t.Errorf("After Up at boundary, expected selectedIdx 0, got %d", l.selectedIdx)
	}
}

func TestLauncher_LaunchSelected(t *testing.T) {
	reg := createTestRegistry()

	var launched []string
	launch := func(key string, props map[string]any) (string, error) {
		launched = append(launched, key)
		return "win-1", nil
	}
	l := New(reg, launch, nil)

	// Entries sort by display name: Editor, Pad, Terminal.
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if len(launched) != 1 || launched[0] != "editor" {
		t.Fatalf("Expected launch of 'editor', got %v", launched)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if len(launched) != 2 || launched[1] != "pad" {
		t.Fatalf("Expected launch of 'pad', got %v", launched)
	}
}

func TestLauncher_UsageSortsList(t *testing.T) {
	reg := createTestRegistry()
	launch := func(key string, props map[string]any) (string, error) { return "win-1", nil }
	l := New(reg, launch, nil)

	// Launch "pad" twice so it outranks the alphabetical order.
	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	l.mu.Lock()
	l.reload()
	first := l.entries[0].Manifest.Key
	l.mu.Unlock()

	if first != "pad" {
		t.Errorf("Expected 'pad' first after repeated use, got '%s'", first)
	}
}

func TestLauncher_QueryFiltersEntries(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)

	for _, ch := range "term" {
		l.HandleKey(tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone))
	}

	l.mu.RLock()
	n := len(l.entries)
	first := ""
	if n > 0 {
		first = l.entries[0].Manifest.Key
	}
	l.mu.RUnlock()

	if n == 0 || first != "term" {
		t.Fatalf("Expected 'term' as best match, got %d entries, first '%s'", n, first)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	l.mu.RLock()
	n = len(l.entries)
	l.mu.RUnlock()
	if n != 3 {
		t.Errorf("Expected full list after Esc, got %d entries", n)
	}
}

func TestLauncher_BackspaceEditsQuery(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)

	l.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))

	l.mu.RLock()
	q := string(l.query)
	l.mu.RUnlock()

	if q != "p" {
		t.Errorf("Expected query 'p', got '%s'", q)
	}

	// Backspace on an empty query should not panic.
	l.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
}

func TestLauncher_LaunchWithoutGateway(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)

	// No launch func attached - should not panic.
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
}

func TestLauncher_EmptyRegistry(t *testing.T) {
	reg := registry.New()
	l := New(reg, nil, nil)

	if len(l.entries) != 0 {
		t.Errorf("Expected 0 entries with empty registry, got %d", len(l.entries))
	}

	// Navigation should not panic.
	l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
}

func TestLauncher_RenderMarksSelection(t *testing.T) {
	reg := createTestRegistry()
	l := New(reg, nil, nil)
	l.Resize(60, 12)

	buf := l.Render()
	if len(buf) != 12 || len(buf[0]) != 60 {
		t.Fatalf("unexpected buffer dimensions: %dx%d", len(buf), len(buf[0]))
	}

	rowText := func(y int) string {
		runes := make([]rune, 0, len(buf[y]))
		for _, c := range buf[y] {
			runes = append(runes, c.Ch)
		}
		return string(runes)
	}

	if got := rowText(0); !strings.Contains(got, "> ") {
		t.Errorf("Expected query prompt on row 0, got %q", got)
	}
	if got := rowText(2); !strings.Contains(got, "Editor") {
		t.Errorf("Expected first entry on row 2, got %q", got)
	}

	// Selected row carries the accent background, other rows do not.
	_, selBg, _ := buf[2][2].Style.Decompose()
	_, otherBg, _ := buf[3][2].Style.Decompose()
	if selBg == otherBg {
		t.Error("Expected selected row background to differ from unselected")
	}
}
