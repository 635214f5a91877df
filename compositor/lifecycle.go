// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: compositor/lifecycle.go
// Summary: Runs hosted apps in-process: one goroutine per window app.

package compositor

import (
	"log"
	"sync"

	"github.com/framegrace/skylight/ui"
)

// AppLifecycle starts and stops the apps hosted by windows. Split out as
// an interface so tests can observe lifecycle calls without running real
// app loops.
type AppLifecycle interface {
	StartApp(app ui.App)
	StopApp(app ui.App)
}

// LocalAppLifecycle runs each app's Run loop in its own goroutine and
// delegates Stop calls directly.
type LocalAppLifecycle struct {
	wg sync.WaitGroup
}

// StartApp launches the app's Run method asynchronously.
func (l *LocalAppLifecycle) StartApp(app ui.App) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := app.Run(); err != nil {
			log.Printf("Compositor: app %q exited with error: %v", app.GetTitle(), err)
		}
	}()
}

// StopApp forwards the stop request to the app implementation.
func (l *LocalAppLifecycle) StopApp(app ui.App) {
	app.Stop()
}

// Wait blocks until all started apps have exited. Primarily useful for
// tests and shutdown.
func (l *LocalAppLifecycle) Wait() {
	l.wg.Wait()
}
