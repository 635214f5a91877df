// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/compositor.go
// Summary: The interactive shell engine: hosts one app per window, listens
// to the window store and repaints the canvas from its snapshots.
// Usage: cmd/skylight builds one Compositor over the terminal driver and
// blocks in Run until the quit key or an external Close.

package compositor

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/config"
	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

const frameInterval = 16 * time.Millisecond

// hostedApp is one running app bound to one window, with the last size
// it was given.
type hostedApp struct {
	app  ui.App
	cols int
	rows int
}

func (h *hostedApp) resizeTo(cols, rows int) {
	if h.cols == cols && h.rows == rows {
		return
	}
	h.cols, h.rows = cols, rows
	h.app.Resize(cols, rows)
}

// dragState tracks an in-progress title-bar drag.
type dragState struct {
	windowID       string
	startX, startY int
	origin         sky.Bounds
}

// Compositor owns the screen. It renders window store snapshots, turns
// input gestures into store operations and runs one app per open window.
// All store writes it performs are absorb-on-NotFound: a gesture racing a
// concurrent close is logged, never fatal.
type Compositor struct {
	driver   ScreenDriver
	store    *sky.Store
	gateway  *sky.Gateway
	registry *registry.Registry
	cfg      *config.Config

	theme  *theming.Theme
	themes map[string]*theming.Theme // per component key, draw goroutine only

	lifecycle AppLifecycle

	quit        chan struct{}
	closeOnce   sync.Once
	refreshChan chan bool

	mu     sync.Mutex
	hosts  map[string]*hostedApp
	opened int // cascade placement counter

	drag        *dragState
	showTaskbar bool
}

var _ sky.Listener = (*Compositor)(nil)

// New wires the shell together and subscribes to the store, so windows
// opened before Run still get their apps started.
func New(driver ScreenDriver, store *sky.Store, gateway *sky.Gateway, reg *registry.Registry, cfg *config.Config, theme *theming.Theme) *Compositor {
	if theme == nil {
		theme = theming.Default()
	}
	c := &Compositor{
		driver:      driver,
		store:       store,
		gateway:     gateway,
		registry:    reg,
		cfg:         cfg,
		theme:       theme,
		themes:      make(map[string]*theming.Theme),
		lifecycle:   &LocalAppLifecycle{},
		quit:        make(chan struct{}),
		refreshChan: make(chan bool, 1),
		hosts:       make(map[string]*hostedApp),
		showTaskbar: cfg == nil || cfg.Desktop.ShowTaskbar,
	}
	store.Subscribe(c)
	return c
}

// Run initializes the screen and blocks in the event/render loop until
// Close is called.
func (c *Compositor) Run() error {
	if err := c.driver.Init(); err != nil {
		return fmt.Errorf("compositor: init screen: %w", err)
	}
	c.driver.SetStyle(c.theme.Style("text.primary", "bg.desktop"))
	c.driver.EnableMouse()
	c.driver.HideCursor()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	eventChan := make(chan tcell.Event, 10)
	go func() {
		for {
			ev := c.driver.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-c.quit:
				return
			}
		}
	}()

	c.reconcile()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	dirty := true
	for {
		select {
		case <-sigChan:
			c.driver.Sync()
			dirty = true
		case ev := <-eventChan:
			c.handleEvent(ev)
			dirty = true
		case <-c.refreshChan:
			dirty = true
		case <-ticker.C:
			if dirty {
				c.draw()
				dirty = false
			}
		case <-c.quit:
			return nil
		}
	}
}

// Close stops every hosted app, detaches from the store and releases the
// terminal. Safe to call more than once and from any goroutine.
func (c *Compositor) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.store.Unsubscribe(c)

		c.mu.Lock()
		hosts := make([]*hostedApp, 0, len(c.hosts))
		for id, h := range c.hosts {
			hosts = append(hosts, h)
			delete(c.hosts, id)
		}
		c.mu.Unlock()
		for _, h := range hosts {
			c.lifecycle.StopApp(h.app)
		}
		if l, ok := c.lifecycle.(*LocalAppLifecycle); ok {
			l.Wait()
		}
		c.driver.Fini()
	})
}

// Refresh schedules a repaint without blocking.
func (c *Compositor) Refresh() {
	select {
	case c.refreshChan <- true:
	default:
	}
}

// OnEvent reacts to store transitions: app lifecycle on open/close, full
// reconcile on snapshot swaps, repaint for everything.
func (c *Compositor) OnEvent(ev sky.Event) {
	switch ev.Type {
	case sky.EventWindowOpened:
		p, ok := ev.Payload.(sky.WindowPayload)
		if !ok {
			return
		}
		c.startApp(p.Window)
		if p.Window.Bounds == (sky.Bounds{}) {
			workW, workH := c.workSize()
			c.do("place", c.store.SetBounds(p.Window.ID, cascadeBounds(c.nextPlacement(), workW, workH)))
		}
	case sky.EventWindowClosed:
		p, ok := ev.Payload.(sky.WindowPayload)
		if !ok {
			return
		}
		c.stopApp(p.Window.ID)
	case sky.EventSnapshotLoaded:
		c.reconcile()
	}
	c.Refresh()
}

func (c *Compositor) hostFor(id string) *hostedApp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hosts[id]
}

// startApp creates and launches the app for a window. Config props for
// the component apply under the window's own props.
func (c *Compositor) startApp(win sky.Window) {
	c.mu.Lock()
	if _, ok := c.hosts[win.ID]; ok {
		c.mu.Unlock()
		return
	}
	props := win.Props
	if c.cfg != nil {
		if extra := c.cfg.Component(win.ComponentKey).Props; len(extra) > 0 {
			merged := make(map[string]any, len(extra)+len(props))
			for k, v := range extra {
				merged[k] = v
			}
			for k, v := range props {
				merged[k] = v
			}
			props = merged
		}
	}
	app, err := c.registry.CreateApp(win.ComponentKey, props)
	if err != nil {
		c.mu.Unlock()
		log.Printf("Compositor: cannot host %q in window %s: %v", win.ComponentKey, win.ID, err)
		return
	}
	app.SetRefreshNotifier(c.refreshChan)
	c.hosts[win.ID] = &hostedApp{app: app}
	c.mu.Unlock()

	c.lifecycle.StartApp(app)
}

func (c *Compositor) stopApp(windowID string) {
	c.mu.Lock()
	host := c.hosts[windowID]
	delete(c.hosts, windowID)
	c.mu.Unlock()
	if host != nil {
		c.lifecycle.StopApp(host.app)
	}
}

// reconcile aligns hosted apps with the current store state: orphaned
// hosts are stopped, unhosted windows get their apps started.
func (c *Compositor) reconcile() {
	snap := c.store.Snapshot()
	alive := make(map[string]bool, len(snap.Windows))
	for _, w := range snap.Windows {
		alive[w.ID] = true
	}

	c.mu.Lock()
	var orphans []*hostedApp
	for id, host := range c.hosts {
		if !alive[id] {
			orphans = append(orphans, host)
			delete(c.hosts, id)
		}
	}
	c.mu.Unlock()

	for _, h := range orphans {
		c.lifecycle.StopApp(h.app)
	}
	for _, w := range snap.Windows {
		c.startApp(w)
	}
}

func (c *Compositor) nextPlacement() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.opened
	c.opened++
	return n
}

// workSize is the canvas area windows may occupy: the screen minus the
// taskbar row.
func (c *Compositor) workSize() (int, int) {
	w, h := c.driver.Size()
	if c.showTaskbar {
		h--
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// draw repaints the whole canvas from one snapshot: desktop background,
// windows bottom-up in z-order, then the taskbar.
func (c *Compositor) draw() {
	width, height := c.driver.Size()
	workW, workH := c.workSize()
	snap := c.store.Snapshot()

	bg := c.theme.Style("text.muted", "bg.desktop")
	for y := 0; y < workH; y++ {
		for x := 0; x < width; x++ {
			c.driver.SetContent(x, y, ' ', nil, bg)
		}
	}

	for _, win := range snap.Windows {
		if win.Minimized {
			continue
		}
		rect := effectiveBounds(win, workW, workH)
		c.blit(rect.X, rect.Y, c.renderFrame(win, rect, snap), width, workH)
	}

	if c.showTaskbar && height > 0 {
		c.drawTaskbar(snap, width, height-1)
	}
	c.driver.Show()
}

func (c *Compositor) blit(x0, y0 int, buf [][]ui.Cell, clipW, clipH int) {
	for y, row := range buf {
		sy := y0 + y
		if sy < 0 || sy >= clipH {
			continue
		}
		for x, cell := range row {
			sx := x0 + x
			if sx < 0 || sx >= clipW {
				continue
			}
			c.driver.SetContent(sx, sy, cell.Ch, nil, cell.Style)
		}
	}
}

// do logs a failed store operation. NotFound is a benign gesture/state
// race; anything else is reported loudly.
func (c *Compositor) do(op string, err error) {
	if err == nil {
		return
	}
	if sky.IsNotFound(err) {
		log.Printf("Compositor: %s: %v", op, err)
		return
	}
	log.Printf("Compositor: %s FAILED: %v", op, err)
}
