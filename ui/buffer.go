// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/buffer.go
// Summary: Cell-buffer helpers shared by apps and the compositor chrome.

package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// NewBuffer allocates a rows x cols grid of blank cells in the given style.
func NewBuffer(cols, rows int, style tcell.Style) [][]Cell {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	buf := make([][]Cell, rows)
	for y := range buf {
		row := make([]Cell, cols)
		for x := range row {
			row[x] = Cell{Ch: ' ', Style: style}
		}
		buf[y] = row
	}
	return buf
}

// Fill overwrites every cell with a blank in the given style.
func Fill(buf [][]Cell, style tcell.Style) {
	for y := range buf {
		for x := range buf[y] {
			buf[y][x] = Cell{Ch: ' ', Style: style}
		}
	}
}

// DrawString writes s at (x, y), clipping to the row. Wide runes occupy two
// columns; the continuation cell is left as a space so the terminal driver
// does not double-paint. Returns the column after the last written cell.
func DrawString(buf [][]Cell, x, y int, s string, style tcell.Style) int {
	if y < 0 || y >= len(buf) {
		return x
	}
	row := buf[y]
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if x < 0 {
			x += w
			continue
		}
		if x >= len(row) {
			break
		}
		row[x] = Cell{Ch: ch, Style: style}
		for i := 1; i < w && x+i < len(row); i++ {
			row[x+i] = Cell{Ch: ' ', Style: style}
		}
		x += w
	}
	return x
}

// TruncateString shortens s to fit max columns, appending an ellipsis when
// anything was cut.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return runewidth.Truncate(s, max-1, "") + "…"
}
