// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/store_test.go
// Summary: Window lifecycle tests: stacking, focus, minimize/maximize,
//          snapshots.

package sky

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// eventRecorder captures every broadcast event for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// newTestStore builds a strict store with deterministic ids (id-1, id-2,
// ...) and a subscribed recorder.
func newTestStore(t *testing.T) (*Store, *eventRecorder) {
	t.Helper()
	n := 0
	s := NewStore(
		WithStrictInvariants(),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	t.Cleanup(s.Shutdown)
	rec := &eventRecorder{}
	s.Subscribe(rec)
	return s, rec
}

func mustOpen(t *testing.T, s *Store, key string) string {
	t.Helper()
	id, err := s.Open(key, nil)
	if err != nil {
		t.Fatalf("open %s: %v", key, err)
	}
	return id
}

func getWindow(t *testing.T, s *Store, id string) Window {
	t.Helper()
	w, ok := s.Window(id)
	if !ok {
		t.Fatalf("window %s not in store", id)
	}
	return w
}

func TestOpenStacksAndFocuses(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	c := mustOpen(t, s, "files")

	wa, wb, wc := getWindow(t, s, a), getWindow(t, s, b), getWindow(t, s, c)
	if !(wc.ZOrder > wb.ZOrder && wb.ZOrder > wa.ZOrder) {
		t.Fatalf("z-order not increasing: a=%d b=%d c=%d", wa.ZOrder, wb.ZOrder, wc.ZOrder)
	}
	if !wc.Focused || wa.Focused || wb.Focused {
		t.Fatalf("focus flags wrong: a=%v b=%v c=%v", wa.Focused, wb.Focused, wc.Focused)
	}
	if s.FocusedID() != c {
		t.Fatalf("focused id = %q, want %q", s.FocusedID(), c)
	}
	if got := rec.count(EventFocusChanged); got != 3 {
		t.Fatalf("focus events = %d, want 3 (one per open)", got)
	}
	if got := rec.count(EventWindowOpened); got != 3 {
		t.Fatalf("opened events = %d, want 3", got)
	}
}

func TestOpenCopiesProps(t *testing.T) {
	s, _ := newTestStore(t)
	props := map[string]any{"path": "/tmp/x"}
	id, err := s.Open("files", props)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	props["path"] = "/changed"
	if got := getWindow(t, s, id).Props["path"]; got != "/tmp/x" {
		t.Fatalf("props leaked caller mutation: %v", got)
	}
	w := getWindow(t, s, id)
	w.Props["path"] = "/also-changed"
	if got := getWindow(t, s, id).Props["path"]; got != "/tmp/x" {
		t.Fatalf("props leaked reader mutation: %v", got)
	}
}

func TestCloseFocusedTransfersFocus(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	c := mustOpen(t, s, "files")
	rec.reset()

	if err := s.Close(c); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := s.Window(c); ok {
		t.Fatalf("window %s still present after close", c)
	}
	if s.FocusedID() != b {
		t.Fatalf("focus = %q, want %q (next-highest z)", s.FocusedID(), b)
	}
	if _, ok := s.Window(a); !ok {
		t.Fatalf("window %s vanished", a)
	}
	if got := rec.count(EventFocusChanged); got != 1 {
		t.Fatalf("focus events = %d, want exactly 1", got)
	}
	ev, _ := rec.last(EventFocusChanged)
	fp := ev.Payload.(FocusPayload)
	if fp.PrevID != c || fp.NewID != b {
		t.Fatalf("focus payload = %+v, want %s -> %s", fp, c, b)
	}
}

func TestCloseSkipsMinimizedForFocus(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	c := mustOpen(t, s, "files")
	if err := s.Minimize(b); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if err := s.Close(c); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.FocusedID() != a {
		t.Fatalf("focus = %q, want %q (minimized windows are skipped)", s.FocusedID(), a)
	}
}

func TestCloseUnfocusedKeepsFocus(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	rec.reset()
	if err := s.Close(a); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.FocusedID() != b {
		t.Fatalf("focus moved unexpectedly to %q", s.FocusedID())
	}
	if got := rec.count(EventFocusChanged); got != 0 {
		t.Fatalf("focus events = %d, want 0", got)
	}
}

func TestCloseMissingIsNotFound(t *testing.T) {
	s, rec := newTestStore(t)
	mustOpen(t, s, "calc")
	rec.reset()
	err := s.Close("nope")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("missing-id close emitted %d events", len(rec.events))
	}
	if got := len(s.Snapshot().Windows); got != 1 {
		t.Fatalf("window count = %d, want 1", got)
	}
}

func TestLastWindowClosedClearsFocus(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	if err := s.Close(a); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.FocusedID() != "" {
		t.Fatalf("focus = %q, want none", s.FocusedID())
	}
}

func TestBringToFrontRaisesFocusesUnminimizes(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	if err := s.Minimize(a); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if err := s.BringToFront(a); err != nil {
		t.Fatalf("bringToFront: %v", err)
	}
	wa, wb := getWindow(t, s, a), getWindow(t, s, b)
	if wa.ZOrder <= wb.ZOrder {
		t.Fatalf("raised window z=%d not above %d", wa.ZOrder, wb.ZOrder)
	}
	if !wa.Focused || wa.Minimized {
		t.Fatalf("raised window focused=%v minimized=%v", wa.Focused, wa.Minimized)
	}
}

func TestBringToFrontMissingIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.BringToFront("ghost"); !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestMinimizeSavesBoundsAndDropsFocus(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	bounds := Bounds{X: 4, Y: 2, Width: 40, Height: 12}
	if err := s.SetBounds(b, bounds); err != nil {
		t.Fatalf("setBounds: %v", err)
	}
	rec.reset()

	if err := s.Minimize(b); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	wb := getWindow(t, s, b)
	if !wb.Minimized || wb.Maximized || wb.Focused {
		t.Fatalf("state after minimize: %+v", wb)
	}
	if wb.SavedBounds == nil || *wb.SavedBounds != bounds {
		t.Fatalf("saved bounds = %v, want %v", wb.SavedBounds, bounds)
	}
	if s.FocusedID() != a {
		t.Fatalf("focus = %q, want %q", s.FocusedID(), a)
	}
	if got := rec.count(EventFocusChanged); got != 1 {
		t.Fatalf("focus events = %d, want 1", got)
	}

	// Second minimize is a no-op.
	rec.reset()
	if err := s.Minimize(b); err != nil {
		t.Fatalf("repeat minimize: %v", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("repeat minimize emitted %d events", len(rec.events))
	}
}

func TestMinimizeLastWindowClearsFocus(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	if err := s.Minimize(a); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if s.FocusedID() != "" {
		t.Fatalf("focus = %q, want none", s.FocusedID())
	}
}

func TestMaximizeIsExclusiveWithMinimize(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	mustOpen(t, s, "notes")
	if err := s.Minimize(a); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if err := s.Maximize(a); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	wa := getWindow(t, s, a)
	if !wa.Maximized || wa.Minimized {
		t.Fatalf("after maximize: maximized=%v minimized=%v", wa.Maximized, wa.Minimized)
	}
	if !wa.Focused {
		t.Fatalf("maximize should focus the window")
	}
	snap := s.Snapshot()
	if top := snap.Windows[len(snap.Windows)-1]; top.ID != a {
		t.Fatalf("maximized window not on top, got %s", top.ID)
	}
}

func TestRestoreBringsBackSavedBounds(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	mustOpen(t, s, "notes")
	bounds := Bounds{X: 1, Y: 1, Width: 30, Height: 10}
	if err := s.SetBounds(a, bounds); err != nil {
		t.Fatalf("setBounds: %v", err)
	}
	if err := s.Maximize(a); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	if err := s.Restore(a); err != nil {
		t.Fatalf("restore: %v", err)
	}
	wa := getWindow(t, s, a)
	if wa.Minimized || wa.Maximized {
		t.Fatalf("flags after restore: %+v", wa)
	}
	if wa.Bounds != bounds {
		t.Fatalf("bounds = %v, want %v", wa.Bounds, bounds)
	}
	if wa.SavedBounds != nil {
		t.Fatalf("saved bounds should be consumed, got %v", wa.SavedBounds)
	}
	if !wa.Focused {
		t.Fatalf("restore should focus the window")
	}
}

func TestMinimizeThenCloseIsClean(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	if err := s.Minimize(b); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if s.FocusedID() != a {
		t.Fatalf("focus should have moved on minimize, got %q", s.FocusedID())
	}
	rec.reset()
	if err := s.Close(b); err != nil {
		t.Fatalf("close minimized: %v", err)
	}
	if _, ok := s.Window(b); ok {
		t.Fatalf("window still present")
	}
	if got := rec.count(EventFocusChanged); got != 0 {
		t.Fatalf("closing an unfocused window moved focus %d times", got)
	}
}

func TestSetBoundsIsPassThrough(t *testing.T) {
	s, rec := newTestStore(t)
	a := mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	rec.reset()
	if err := s.SetBounds(a, Bounds{X: 3, Y: 3, Width: 20, Height: 8}); err != nil {
		t.Fatalf("setBounds: %v", err)
	}
	if s.FocusedID() != b {
		t.Fatalf("setBounds moved focus")
	}
	if got := rec.count(EventStackChanged); got != 0 {
		t.Fatalf("setBounds changed stacking (%d events)", got)
	}
	if err := s.SetBounds("ghost", Bounds{}); !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestSnapshotIsSortedAndIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	mustOpen(t, s, "calc")
	b := mustOpen(t, s, "notes")
	mustOpen(t, s, "files")
	if err := s.BringToFront(b); err != nil {
		t.Fatalf("bringToFront: %v", err)
	}

	snap := s.Snapshot()
	for i := 1; i < len(snap.Windows); i++ {
		if snap.Windows[i-1].ZOrder >= snap.Windows[i].ZOrder {
			t.Fatalf("snapshot not sorted by z: %d then %d", snap.Windows[i-1].ZOrder, snap.Windows[i].ZOrder)
		}
	}
	if top := snap.Windows[len(snap.Windows)-1]; top.ID != b {
		t.Fatalf("top of snapshot = %s, want %s", top.ID, b)
	}

	// Mutating the snapshot must not leak into the store.
	snap.Windows[0].Minimized = true
	snap.FocusedID = "junk"
	if err := s.Snapshot().Validate(); err != nil {
		t.Fatalf("store corrupted through snapshot: %v", err)
	}
}

func TestLoadSnapshotRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	bID := mustOpen(t, s, "notes")
	c := mustOpen(t, s, "files")
	if _, err := s.CreateGroup("work", []string{a, bID}); err != nil {
		t.Fatalf("createGroup: %v", err)
	}
	if err := s.Minimize(c); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	snap := s.Snapshot()

	restored := NewStore(WithStrictInvariants())
	defer restored.Shutdown()
	if err := restored.LoadSnapshot(snap); err != nil {
		t.Fatalf("loadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored.Snapshot(), snap)
	}

	// New windows must stack above everything restored.
	d, err := restored.Open("clock", nil)
	if err != nil {
		t.Fatalf("open after restore: %v", err)
	}
	wd, _ := restored.Window(d)
	for _, w := range snap.Windows {
		if wd.ZOrder <= w.ZOrder {
			t.Fatalf("new window z=%d not above restored z=%d", wd.ZOrder, w.ZOrder)
		}
	}
}

func TestLoadSnapshotRejectsCorruptState(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustOpen(t, s, "calc")
	mustOpen(t, s, "notes")
	snap := s.Snapshot()
	before := s.Snapshot()

	// Forge a second focused window.
	for i := range snap.Windows {
		snap.Windows[i].Focused = true
	}
	err := s.LoadSnapshot(snap)
	if !IsInvariant(err) {
		t.Fatalf("err = %v, want InvariantViolation", err)
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatalf("failed load mutated the store")
	}

	// Forge a focused-but-minimized window.
	snap = s.Snapshot()
	for i := range snap.Windows {
		if snap.Windows[i].ID == a {
			snap.Windows[i].Minimized = true
		}
	}
	snap.FocusedID = a
	for i := range snap.Windows {
		snap.Windows[i].Focused = snap.Windows[i].ID == a
	}
	if err := s.LoadSnapshot(snap); !IsInvariant(err) {
		t.Fatalf("err = %v, want InvariantViolation", err)
	}
}

func TestFocusTransfersAreSingleEvents(t *testing.T) {
	s, rec := newTestStore(t)

	script := []struct {
		name string
		op   func() error
		want int
	}{
		{"open a", func() error { _, err := s.Open("calc", nil); return err }, 1},
		{"open b", func() error { _, err := s.Open("notes", nil); return err }, 1},
		{"raise focused", func() error { return s.BringToFront(s.FocusedID()) }, 0},
		{"minimize focused", func() error { return s.Minimize(s.FocusedID()) }, 1},
		{"minimize last", func() error { return s.Minimize(s.FocusedID()) }, 1},
	}
	for _, step := range script {
		rec.reset()
		if err := step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got := rec.count(EventFocusChanged); got != step.want {
			t.Fatalf("%s: focus events = %d, want %d", step.name, got, step.want)
		}
		if err := s.Snapshot().Validate(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
	}
}
