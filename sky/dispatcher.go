// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/dispatcher.go
// Summary: Synchronous event dispatcher for store transitions.
// Usage: The store broadcasts after each committed operation; the
//        compositor, session autosaver, and taskbar subscribe.

package sky

import "sync"

// EventType identifies a store transition.
type EventType int

const (
	// Window lifecycle.
	EventWindowOpened EventType = iota
	EventWindowClosed
	// Minimize/maximize/restore/bounds transitions.
	EventWindowStateChanged
	// Focus moved between windows (or to/from none). At most one per
	// operation.
	EventFocusChanged
	// The z-order changed: something opened, closed, or was raised.
	EventStackChanged
	// Group lifecycle.
	EventGroupCreated
	EventGroupUpdated
	EventGroupDeleted
	// The whole state was replaced from a snapshot.
	EventSnapshotLoaded
)

// Event is a message describing one committed store transition.
type Event struct {
	Type    EventType
	Payload interface{}
}

// WindowPayload accompanies window lifecycle and state events.
type WindowPayload struct {
	Window Window
}

// FocusPayload accompanies EventFocusChanged. Empty ids mean "no window".
type FocusPayload struct {
	PrevID string
	NewID  string
}

// GroupPayload accompanies group created/updated events.
type GroupPayload struct {
	Group Group
}

// GroupDeletedPayload accompanies EventGroupDeleted.
type GroupDeletedPayload struct {
	GroupID string
	Name    string
}

// Listener receives store events.
type Listener interface {
	OnEvent(event Event)
}

// EventDispatcher manages listeners and broadcasts events to them.
// Broadcast snapshots the listener list first, so listeners may subscribe
// or unsubscribe from inside their callback.
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventDispatcher creates an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// Subscribe adds a listener.
func (d *EventDispatcher) Subscribe(l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Unsubscribe removes a previously subscribed listener.
func (d *EventDispatcher) Unsubscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, cur := range d.listeners {
		if cur == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
}

// Broadcast delivers the event to every listener in subscription order.
func (d *EventDispatcher) Broadcast(event Event) {
	d.mu.RLock()
	snapshot := make([]Listener, len(d.listeners))
	copy(snapshot, d.listeners)
	d.mu.RUnlock()
	for _, l := range snapshot {
		l.OnEvent(event)
	}
}

// Reset drops all listeners.
func (d *EventDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = nil
}
