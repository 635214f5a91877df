// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/driver.go
// Summary: Screen driver abstraction so the shell can run on a real
// terminal or on a fake screen in tests.

package compositor

import "github.com/gdamore/tcell/v2"

// ScreenDriver is the surface the compositor paints on. The production
// implementation wraps a tcell.Screen; tests substitute an in-memory fake.
type ScreenDriver interface {
	Init() error
	Fini()
	Size() (int, int)
	SetStyle(style tcell.Style)
	EnableMouse()
	HideCursor()
	Show()
	Sync()
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	GetContent(x, y int) (rune, []rune, tcell.Style, int)
}

// TcellScreenDriver adapts a tcell.Screen to the ScreenDriver interface.
type TcellScreenDriver struct {
	screen tcell.Screen
}

// NewTcellScreenDriver wraps the provided screen.
func NewTcellScreenDriver(screen tcell.Screen) *TcellScreenDriver {
	return &TcellScreenDriver{screen: screen}
}

// NewTerminalDriver allocates a driver on the process terminal.
func NewTerminalDriver() (*TcellScreenDriver, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTcellScreenDriver(screen), nil
}

func (d *TcellScreenDriver) Init() error {
	return d.screen.Init()
}

func (d *TcellScreenDriver) Fini() {
	d.screen.Fini()
}

func (d *TcellScreenDriver) Size() (int, int) {
	return d.screen.Size()
}

func (d *TcellScreenDriver) SetStyle(style tcell.Style) {
	d.screen.SetStyle(style)
}

func (d *TcellScreenDriver) EnableMouse() {
	d.screen.EnableMouse()
}

func (d *TcellScreenDriver) HideCursor() {
	d.screen.HideCursor()
}

func (d *TcellScreenDriver) Show() {
	d.screen.Show()
}

func (d *TcellScreenDriver) Sync() {
	d.screen.Sync()
}

func (d *TcellScreenDriver) PollEvent() tcell.Event {
	return d.screen.PollEvent()
}

func (d *TcellScreenDriver) PostEvent(ev tcell.Event) error {
	return d.screen.PostEvent(ev)
}

func (d *TcellScreenDriver) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	d.screen.SetContent(x, y, mainc, combc, style)
}

func (d *TcellScreenDriver) GetContent(x, y int) (rune, []rune, tcell.Style, int) {
	return d.screen.GetContent(x, y)
}

// Underlying exposes the wrapped tcell.Screen for code paths that still
// need direct access.
func (d *TcellScreenDriver) Underlying() tcell.Screen {
	return d.screen
}
