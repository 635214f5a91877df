// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/group_ops.go
// Summary: Group lifecycle operations: create, membership, active tab,
//          collapse/expand, bulk close.

package sky

import (
	"fmt"
	"log"
)

// CreateGroup makes a tabbed group out of the given windows, in order.
// Windows already in another group are pulled out of it first (the old
// group gets the usual last-member/active-member cleanup). The first
// member becomes the active tab and takes focus.
func (s *Store) CreateGroup(name string, memberIDs []string) (string, error) {
	s.mu.Lock()
	if len(memberIDs) == 0 {
		s.mu.Unlock()
		return "", &InvariantError{Op: "createGroup", Detail: "empty member list"}
	}
	members := make([]*Window, 0, len(memberIDs))
	seen := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		w, ok := s.windows[id]
		if !ok {
			s.mu.Unlock()
			return "", &NotFoundError{Kind: KindWindow, ID: id}
		}
		seen[id] = true
		members = append(members, w)
	}
	prevFocus := s.focusedID

	var evs []Event
	gid := s.newID()
	g := &Group{ID: gid, Name: name, MemberIDs: make([]string, 0, len(members))}
	for _, w := range members {
		if w.GroupID != "" {
			evs = append(evs, s.detachFromGroupLocked(w)...)
		}
		w.GroupID = gid
		g.MemberIDs = append(g.MemberIDs, w.ID)
	}
	g.ActiveMemberID = g.MemberIDs[0]
	s.groups[gid] = g
	evs = append(evs, Event{Type: EventGroupCreated, Payload: GroupPayload{Group: *g.clone()}})

	first := members[0]
	if first.Minimized {
		first.Minimized = false
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *first.clone()}})
	}
	s.setFocusLocked(first)
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("createGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return gid, nil
}

// AddWindowToGroup appends the window to the group's tab order, detaching
// it from any previous group first. Joining a collapsed group minimizes
// the window immediately.
func (s *Store) AddWindowToGroup(windowID, groupID string) error {
	s.mu.Lock()
	w, ok := s.windows[windowID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: windowID}
	}
	g, ok := s.groups[groupID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindGroup, ID: groupID}
	}
	if w.GroupID == groupID {
		s.mu.Unlock()
		return nil
	}
	prevFocus := s.focusedID

	var evs []Event
	if w.GroupID != "" {
		evs = append(evs, s.detachFromGroupLocked(w)...)
	}
	w.GroupID = groupID
	g.MemberIDs = append(g.MemberIDs, windowID)
	if g.Collapsed && !w.Minimized {
		sb := w.Bounds
		w.SavedBounds = &sb
		w.Minimized = true
		w.Maximized = false
		if s.focusedID == windowID {
			s.setFocusLocked(s.topVisibleLocked())
		}
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}})
	}
	evs = append(evs, Event{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}})
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("addWindowToGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// RemoveWindowFromGroup takes the window out of its group. Removing the
// last member deletes the group; removing the active member promotes the
// first remaining one. A window that is in no group is a no-op. The
// window keeps its current minimized state.
func (s *Store) RemoveWindowFromGroup(windowID string) error {
	s.mu.Lock()
	w, ok := s.windows[windowID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: windowID}
	}
	if w.GroupID == "" {
		s.mu.Unlock()
		return nil
	}
	evs := s.detachFromGroupLocked(w)
	s.checkLocked("removeWindowFromGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// SetActiveGroupMember switches the visible tab. The window must already
// be a member; asking for a non-member is caller misuse, not a benign
// miss. A collapsed group expands first, since the new active tab takes
// focus and a focused window cannot stay minimized.
func (s *Store) SetActiveGroupMember(groupID, windowID string) error {
	s.mu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindGroup, ID: groupID}
	}
	w, ok := s.windows[windowID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindWindow, ID: windowID}
	}
	if !g.hasMember(windowID) {
		s.mu.Unlock()
		return &InvariantError{
			Op:     "setActiveGroupMember",
			Detail: fmt.Sprintf("window %s is not a member of group %s", windowID, groupID),
		}
	}
	prevFocus := s.focusedID

	var evs []Event
	if g.Collapsed {
		evs = append(evs, s.expandLocked(g)...)
	}
	if g.ActiveMemberID != windowID {
		g.ActiveMemberID = windowID
		evs = append(evs, Event{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}})
	}
	if w.Minimized {
		w.Minimized = false
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}})
	}
	s.setFocusLocked(w)
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("setActiveGroupMember")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// CollapseGroup folds the group: every member is minimized (bounds saved,
// same as Minimize) and focus leaves the group if it was inside.
func (s *Store) CollapseGroup(groupID string) error {
	s.mu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindGroup, ID: groupID}
	}
	if g.Collapsed {
		s.mu.Unlock()
		return nil
	}
	prevFocus := s.focusedID

	g.Collapsed = true
	var evs []Event
	for _, id := range g.MemberIDs {
		w, ok := s.windows[id]
		if !ok || w.Minimized {
			continue
		}
		sb := w.Bounds
		w.SavedBounds = &sb
		w.Minimized = true
		w.Maximized = false
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}})
	}
	if cur, ok := s.windows[s.focusedID]; ok && cur.Minimized {
		s.setFocusLocked(s.topVisibleLocked())
	}
	evs = append(evs, Event{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}})
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("collapseGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// ExpandGroup unfolds the group: every member's minimized flag is cleared.
// Membership, tab order and focus are untouched.
func (s *Store) ExpandGroup(groupID string) error {
	s.mu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindGroup, ID: groupID}
	}
	if !g.Collapsed {
		s.mu.Unlock()
		return nil
	}
	evs := s.expandLocked(g)
	s.checkLocked("expandGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// CloseGroup closes every member window and deletes the group as one
// atomic transition: listeners see the final state, a single closed event
// per window and at most one focus transfer.
func (s *Store) CloseGroup(groupID string) error {
	s.mu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Kind: KindGroup, ID: groupID}
	}
	prevFocus := s.focusedID

	members := append([]string(nil), g.MemberIDs...)
	delete(s.groups, groupID)
	var evs []Event
	for _, id := range members {
		w, ok := s.windows[id]
		if !ok {
			continue
		}
		delete(s.windows, id)
		evs = append(evs, Event{Type: EventWindowClosed, Payload: WindowPayload{Window: *w.clone()}})
	}
	evs = append(evs, Event{Type: EventGroupDeleted, Payload: GroupDeletedPayload{GroupID: groupID, Name: g.Name}})
	if _, ok := s.windows[s.focusedID]; !ok && s.focusedID != "" {
		s.setFocusLocked(s.topVisibleLocked())
	}
	evs = append(evs, Event{Type: EventStackChanged})
	evs = s.appendFocusEventLocked(evs, prevFocus)
	s.checkLocked("closeGroup")
	s.mu.Unlock()

	s.broadcast(evs)
	return nil
}

// --- internal helpers; callers hold s.mu ---

// detachFromGroupLocked removes w from its group, deleting the group when
// it empties and promoting a new active member when needed. The caller
// owns any focus or stack events.
func (s *Store) detachFromGroupLocked(w *Window) []Event {
	g, ok := s.groups[w.GroupID]
	if !ok {
		log.Printf("Store: BUG: window %s references missing group %s", w.ID, w.GroupID)
		w.GroupID = ""
		return nil
	}
	g.removeMember(w.ID)
	w.GroupID = ""
	if len(g.MemberIDs) == 0 {
		delete(s.groups, g.ID)
		return []Event{{Type: EventGroupDeleted, Payload: GroupDeletedPayload{GroupID: g.ID, Name: g.Name}}}
	}
	if g.ActiveMemberID == w.ID {
		g.ActiveMemberID = g.MemberIDs[0]
	}
	return []Event{{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}}}
}

// expandLocked clears Collapsed and un-minimizes every member.
func (s *Store) expandLocked(g *Group) []Event {
	if !g.Collapsed {
		return nil
	}
	g.Collapsed = false
	var evs []Event
	for _, id := range g.MemberIDs {
		w, ok := s.windows[id]
		if !ok || !w.Minimized {
			continue
		}
		w.Minimized = false
		evs = append(evs, Event{Type: EventWindowStateChanged, Payload: WindowPayload{Window: *w.clone()}})
	}
	evs = append(evs, Event{Type: EventGroupUpdated, Payload: GroupPayload{Group: *g.clone()}})
	return evs
}
