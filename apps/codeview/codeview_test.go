// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package codeview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

const sampleSource = `package sample

import "fmt"

func main() {
	fmt.Println("hello")
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.go")
	if err := os.WriteFile(path, []byte(sampleSource), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCodeViewHighlightsFile(t *testing.T) {
	path := writeSample(t)
	v := New(map[string]any{"path": path}).(*codeView)
	v.load()

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.status != "" {
		t.Fatalf("unexpected status after load: %q", v.status)
	}
	if len(v.lines) < 6 {
		t.Fatalf("expected at least 6 lines, got %d", len(v.lines))
	}

	var first strings.Builder
	for _, c := range v.lines[0] {
		first.WriteRune(c.Ch)
	}
	if !strings.HasPrefix(first.String(), "package sample") {
		t.Errorf("first line = %q", first.String())
	}

	// The keyword should carry a different foreground than plain text.
	fgs := make(map[tcell.Color]bool)
	for _, line := range v.lines {
		for _, c := range line {
			fg, _, _ := c.Style.Decompose()
			fgs[fg] = true
		}
	}
	if len(fgs) < 2 {
		t.Error("expected more than one foreground color in highlighted output")
	}
}

func TestCodeViewExpandsTabs(t *testing.T) {
	path := writeSample(t)
	v := New(map[string]any{"path": path}).(*codeView)
	v.load()

	v.mu.RLock()
	defer v.mu.RUnlock()

	// Line 5 is the indented fmt.Println call.
	line := v.lines[5]
	for i := 0; i < tabWidth; i++ {
		if line[i].Ch != ' ' {
			t.Fatalf("expected %d leading spaces, found %q at %d", tabWidth, line[i].Ch, i)
		}
	}
	if line[tabWidth].Ch != 'f' {
		t.Errorf("expected 'f' after tab expansion, got %q", line[tabWidth].Ch)
	}
}

func TestCodeViewScrolls(t *testing.T) {
	path := writeSample(t)
	v := New(map[string]any{"path": path}).(*codeView)
	v.load()
	v.Resize(40, 3)

	rowText := func() string {
		buf := v.Render()
		var b strings.Builder
		for _, c := range buf[0] {
			b.WriteRune(c.Ch)
		}
		return strings.TrimRight(b.String(), " ")
	}

	if got := rowText(); !strings.HasPrefix(got, "package") {
		t.Fatalf("initial top row = %q", got)
	}

	v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if got := rowText(); !strings.HasPrefix(got, "import") {
		t.Errorf("after scrolling down twice, top row = %q", got)
	}

	v.HandleKey(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	if v.offsetY != len(v.lines)-3 {
		t.Errorf("End did not clamp to bottom: offsetY=%d lines=%d", v.offsetY, len(v.lines))
	}

	v.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	if v.offsetY != 0 || v.offsetX != 0 {
		t.Errorf("Home did not reset offsets: %d,%d", v.offsetX, v.offsetY)
	}

	// Scrolling above the top stays at the top.
	v.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if v.offsetY != 0 {
		t.Errorf("Up at top moved offsetY to %d", v.offsetY)
	}
}

func TestCodeViewMissingFile(t *testing.T) {
	v := New(map[string]any{"path": "/nonexistent/file.go"}).(*codeView)
	v.load()

	v.mu.RLock()
	status := v.status
	v.mu.RUnlock()

	if status == "" {
		t.Fatal("expected a status message for a missing file")
	}

	v.Resize(40, 5)
	buf := v.Render()
	var b strings.Builder
	for _, c := range buf[2] {
		b.WriteRune(c.Ch)
	}
	if !strings.Contains(b.String(), "cannot read") {
		t.Errorf("status row = %q", b.String())
	}
}

func TestCodeViewTitle(t *testing.T) {
	v := New(map[string]any{"path": "/tmp/sample.go"}).(*codeView)
	if v.GetTitle() != "sample.go" {
		t.Errorf("GetTitle() = %q", v.GetTitle())
	}

	empty := New(nil).(*codeView)
	if empty.GetTitle() != "Code" {
		t.Errorf("GetTitle() without path = %q", empty.GetTitle())
	}
}
