// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/store.go
// Summary: The window store: single source of truth for all open windows
//          and groups, keeping their invariants intact after every operation.
// Usage: Construct one with NewStore at startup and pass it around
//        explicitly; tests build as many independent stores as they like.
// Notes: Operations serialize on one mutex and run to completion before
//        events are dispatched, so listeners never observe partial state.

package sky

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns every Window and Group record. All mutation goes through its
// operations; readers get deep-copied values.
type Store struct {
	mu        sync.Mutex
	windows   map[string]*Window
	groups    map[string]*Group
	focusedID string
	zTop      int

	dispatcher *EventDispatcher
	strict     bool
	newID      func() string
	closeOnce  sync.Once
}

// Option configures a Store at construction.
type Option func(*Store)

// WithStrictInvariants makes the store panic on a post-operation
// consistency failure instead of logging it. Tests and the stress driver
// run strict; the interactive shell logs and keeps going.
func WithStrictInvariants() Option {
	return func(s *Store) { s.strict = true }
}

// WithIDGenerator replaces the UUID generator. Tests use it for
// deterministic ids; the generator must never repeat a value for the
// lifetime of the store.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		windows:    make(map[string]*Window),
		groups:     make(map[string]*Group),
		dispatcher: NewEventDispatcher(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener for store events.
func (s *Store) Subscribe(l Listener) { s.dispatcher.Subscribe(l) }

// Unsubscribe removes a listener.
func (s *Store) Unsubscribe(l Listener) { s.dispatcher.Unsubscribe(l) }

// Shutdown detaches all listeners. The store itself needs no other teardown;
// operations called afterwards still work but broadcast to nobody.
func (s *Store) Shutdown() {
	s.closeOnce.Do(func() {
		s.dispatcher.Reset()
	})
}

// Open creates a window hosting componentKey, puts it on top of the stack
// and focuses it. The props payload is copied and passed through to the
// rendered content, never inspected.
func (s *Store) Open(componentKey string, props map[string]any) (string, error) {
	s.mu.Lock()
	prevFocus := s.focusedID
	w := &Window{
		ID:           s.newID(),
		ComponentKey: componentKey,
		Props:        cloneProps(props),
		ZOrder:       s.nextZLocked(),
		OpenedAt:     time.Now(),
	}
	if _, dup := s.windows[w.ID]; dup {
		s.mu.Unlock()
		return "", &InvariantError{Op: "open", Detail: "id generator repeated " + w.ID}
	}
	s.windows[w.ID] = w
	s.setFocusLocked(w)

	evs := []Event{
		{Type: EventWindowOpened, Payload: WindowPayload{Window: *w.clone()}},
		{Type: EventStackChanged},
	}
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("open")
	s.mu.Unlock()

	s.broadcast(evs)
	return w.ID, nil
}

// Close removes the window. Group membership is cleaned up (a group losing
// its last member is deleted; a group losing its active member gets a new
// one), and focus, if lost, moves to the highest non-minimized window.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	prevFocus := s.focusedID

	var evs []Event
	if w.GroupID != "" {
		evs = append(evs, s.detachFromGroupLocked(w)...)
	}
	delete(s.windows, id)
	if s.focusedID == id {
		s.setFocusLocked(s.topVisibleLocked())
	}
	evs = append(evs,
		Event{Type: EventWindowClosed, Payload: WindowPayload{Window: *w.clone()}},
		Event{Type: EventStackChanged},
	)
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("close")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// BringToFront raises the window to the top of the stack, focuses it and
// clears its minimized state. Clicking a window and re-activating an app
// by key both land here. Raising a member of a collapsed group expands the
// group first and surfaces the window as its active tab.
func (s *Store) BringToFront(id string) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	prevFocus := s.focusedID

	evs := s.surfaceInGroupLocked(w)
	wasMinimized := w.Minimized
	w.Minimized = false
	w.ZOrder = s.nextZLocked()
	s.setFocusLocked(w)

	if wasMinimized {
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}})
	}
	evs = append(evs, Event{Type: EventStackChanged})
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("bringToFront")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// Minimize hides the window: current bounds are saved for a later Restore,
// the window loses focus, and focus moves per the Close rule. Minimizing
// an already-minimized window is a no-op.
func (s *Store) Minimize(id string) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	if w.Minimized {
		s.mu.Unlock()
		return nil
	}
	prevFocus := s.focusedID

	sb := w.Bounds
	w.SavedBounds = &sb
	w.Minimized = true
	w.Maximized = false
	if s.focusedID == id {
		s.setFocusLocked(s.topVisibleLocked())
	}

	evs := []Event{{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}}}
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("minimize")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// Maximize expands the window: bounds are saved for a later Restore and
// the window is raised and focused.
func (s *Store) Maximize(id string) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	prevFocus := s.focusedID

	evs := s.surfaceInGroupLocked(w)
	if !w.Maximized {
		sb := w.Bounds
		w.SavedBounds = &sb
	}
	w.Maximized = true
	w.Minimized = false
	w.ZOrder = s.nextZLocked()
	s.setFocusLocked(w)

	evs = append(evs,
		Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}},
		Event{Type: EventStackChanged},
	)
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("maximize")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// Restore clears both minimized and maximized, moves the window back to
// its saved bounds, raises and focuses it.
func (s *Store) Restore(id string) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	prevFocus := s.focusedID

	evs := s.surfaceInGroupLocked(w)
	w.Minimized = false
	w.Maximized = false
	if w.SavedBounds != nil {
		w.Bounds = *w.SavedBounds
		w.SavedBounds = nil
	}
	w.ZOrder = s.nextZLocked()
	s.setFocusLocked(w)

	evs = append(evs,
		Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}},
		Event{Type: EventStackChanged},
	)
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("restore")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// SetBounds records new geometry for the window. Pure pass-through from
// the gesture layer: no focus or stacking effects.
func (s *Store) SetBounds(id string, b Bounds) error {
	s.mu.Lock()
	w, ok := s.windows[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: id}
	}
	if w.Bounds == b {
		s.mu.Unlock()
		return nil
	}
	w.Bounds = b
	ev := Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}}
	s.mu.Unlock()

	s.broadcast([]Event{ev})
	return nil
}

// Snapshot returns a deep copy of the whole state: windows sorted by
// z-order ascending, groups sorted by id.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Windows:   make([]Window, 0, len(s.windows)),
		Groups:    make([]Group, 0, len(s.groups)),
		FocusedID: s.focusedID,
	}
	for _, w := range s.windows {
		snap.Windows = append(snap.Windows, *w.clone())
	}
	for _, g := range s.groups {
		snap.Groups = append(snap.Groups, *g.clone())
	}
	sort.Slice(snap.Windows, func(i, j int) bool { return snap.Windows[i].ZOrder < snap.Windows[j].ZOrder })
	sort.Slice(snap.Groups, func(i, j int) bool { return snap.Groups[i].ID < snap.Groups[j].ID })
	return snap
}

// Window returns a copy of one window.
func (s *Store) Window(id string) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w.clone(), true
}

// Group returns a copy of one group.
func (s *Store) Group(id string) (Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return Group{}, false
	}
	return *g.clone(), true
}

// FocusedID returns the id of the focused window, or "" when none.
func (s *Store) FocusedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusedID
}

// FindByComponentKey returns copies of every window hosting the key,
// most recently raised first.
func (s *Store) FindByComponentKey(key string) []Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Window
	for _, w := range s.windows {
		if w.ComponentKey == key {
			out = append(out, *w.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZOrder > out[j].ZOrder })
	return out
}

// LoadSnapshot replaces the whole state with the snapshot, after
// validating every invariant. On failure the prior state is untouched.
func (s *Store) LoadSnapshot(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.mu.Lock()
	windows := make(map[string]*Window, len(snap.Windows))
	zTop := 0
	for i := range snap.Windows {
		w := snap.Windows[i].clone()
		windows[w.ID] = w
		if w.ZOrder > zTop {
			zTop = w.ZOrder
		}
	}
	groups := make(map[string]*Group, len(snap.Groups))
	for i := range snap.Groups {
		g := snap.Groups[i].clone()
		groups[g.ID] = g
	}
	s.windows = windows
	s.groups = groups
	s.focusedID = snap.FocusedID
	s.zTop = zTop
	s.mu.Unlock()

	s.broadcast([]Event{
		{Type: EventSnapshotLoaded},
		{Type: EventStackChanged},
	})
	return nil
}

// --- internal helpers; callers hold s.mu ---

func (s *Store) nextZLocked() int {
	s.zTop++
	return s.zTop
}

// setFocusLocked moves the focus flag to w (nil clears focus).
func (s *Store) setFocusLocked(w *Window) {
	if s.focusedID != "" {
		if cur, ok := s.windows[s.focusedID]; ok {
			cur.Focused = false
		}
		s.focusedID = ""
	}
	if w != nil {
		w.Focused = true
		s.focusedID = w.ID
	}
}

// topVisibleLocked returns the non-minimized window with the highest
// z-order, or nil.
func (s *Store) topVisibleLocked() *Window {
	var top *Window
	for _, w := range s.windows {
		if w.Minimized {
			continue
		}
		if top == nil || w.ZOrder > top.ZOrder {
			top = w
		}
	}
	return top
}

// appendFocusEventLocked emits the single focus-transfer event for the
// operation, if focus actually moved since prev.
func (s *Store) appendFocusEventLocked(evs []Event, prev string) []Event {
	if s.focusedID == prev {
		return evs
	}
	return append(evs, Event{Type: EventFocusChanged, Payload: FocusPayload{PrevID: prev, NewID: s.focusedID}})
}

// surfaceInGroupLocked prepares w to be shown: if it sits in a collapsed
// group the group is expanded, and if grouped at all it becomes the active
// tab. Returns the group events this produced.
func (s *Store) surfaceInGroupLocked(w *Window) []Event {
	if w.GroupID == "" {
		return nil
	}
	g, ok := s.groups[w.GroupID]
	if !ok {
		return nil
	}
	var evs []Event
	if g.Collapsed {
		evs = append(evs, s.expandLocked(g)...)
	}
	if g.ActiveMemberID != w.ID {
		g.ActiveMemberID = w.ID
		evs = append(evs, Event{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}})
	}
	return evs
}

// checkLocked runs the defensive consistency net after a mutation. A
// failure here is a store bug: validate-first discipline means it should
// be unreachable. Strict stores panic; others log loudly.
func (s *Store) checkLocked(op string) {
	if err := s.viewLocked().Validate(); err != nil {
		if s.strict {
			panic(fmt.Sprintf("sky: after %s: %v", op, err))
		}
		log.Printf("Store: BUG after %s: %v", op, err)
	}
}

// viewLocked builds a shallow (no prop/bounds cloning) sorted view for
// validation only.
func (s *Store) viewLocked() Snapshot {
	snap := Snapshot{
		Windows:   make([]Window, 0, len(s.windows)),
		Groups:    make([]Group, 0, len(s.groups)),
		FocusedID: s.focusedID,
	}
	for _, w := range s.windows {
		snap.Windows = append(snap.Windows, *w)
	}
	for _, g := range s.groups {
		snap.Groups = append(snap.Groups, *g)
	}
	return snap
}

func (s *Store) broadcast(evs []Event) {
	for _, ev := range evs {
		s.dispatcher.Broadcast(ev)
	}
}
