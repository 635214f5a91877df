// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/session/autosave.go
// Summary: Debounced background persistence of the live window store.

package session

import (
	"context"
	"log"
	"time"

	"github.com/framegrace/skylight/sky"
)

const saveTimeout = 5 * time.Second

// Autosaver subscribes to store events and persists a snapshot once
// changes stop arriving for the debounce interval. A burst of window
// operations costs one write, not one per event.
type Autosaver struct {
	store    *sky.Store
	sessions *Store
	name     string
	debounce time.Duration

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewAutosaver prepares an autosaver for the named session.
func NewAutosaver(store *sky.Store, sessions *Store, name string, debounce time.Duration) *Autosaver {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Autosaver{
		store:    store,
		sessions: sessions,
		name:     name,
		debounce: debounce,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnEvent implements sky.Listener.
func (a *Autosaver) OnEvent(sky.Event) {
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Start subscribes to the store and launches the save loop.
func (a *Autosaver) Start() {
	a.store.Subscribe(a)
	go a.loop()
}

// Stop unsubscribes, flushes any pending save, and waits for the loop.
func (a *Autosaver) Stop() {
	a.store.Unsubscribe(a)
	close(a.stop)
	<-a.done
}

func (a *Autosaver) loop() {
	defer close(a.done)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-a.kick:
			if timer == nil {
				timer = time.NewTimer(a.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(a.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			a.save()

		case <-a.stop:
			if fire != nil {
				a.save()
			}
			return
		}
	}
}

func (a *Autosaver) save() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.sessions.Save(ctx, a.name, a.store.Snapshot()); err != nil {
		log.Printf("Session: autosave of %q failed: %v", a.name, err)
	}
}
