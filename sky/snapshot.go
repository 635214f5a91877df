// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/snapshot.go
// Summary: Immutable deep-copy view of the full store state, plus the
//          consistency validation shared by LoadSnapshot and the store's
//          defensive post-checks.

package sky

// Snapshot is a deep copy of the store state at one instant. Windows are
// sorted by ZOrder ascending (paint order); groups by id. Readers must
// re-query rather than mutate.
type Snapshot struct {
	Windows   []Window `json:"windows"`
	Groups    []Group  `json:"groups"`
	FocusedID string   `json:"focused_id,omitempty"`
}

// Window returns the snapshot window with the given id.
func (s Snapshot) Window(id string) (Window, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

// Group returns the snapshot group with the given id.
func (s Snapshot) Group(id string) (Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Validate checks every store invariant over the snapshot. It returns an
// *InvariantError naming the first violation, or nil.
func (s Snapshot) Validate() error {
	windows := make(map[string]Window, len(s.Windows))
	focused := ""
	for _, w := range s.Windows {
		if w.ID == "" {
			return &InvariantError{Op: "validate", Detail: "window with empty id"}
		}
		if _, dup := windows[w.ID]; dup {
			return &InvariantError{Op: "validate", Detail: "duplicate window id " + w.ID}
		}
		windows[w.ID] = w
		if w.Minimized && w.Maximized {
			return &InvariantError{Op: "validate", Detail: "window " + w.ID + " both minimized and maximized"}
		}
		if w.Focused {
			if focused != "" {
				return &InvariantError{Op: "validate", Detail: "multiple focused windows: " + focused + " and " + w.ID}
			}
			if w.Minimized {
				return &InvariantError{Op: "validate", Detail: "focused window " + w.ID + " is minimized"}
			}
			focused = w.ID
		}
	}
	if focused != s.FocusedID {
		return &InvariantError{Op: "validate", Detail: "focused id " + s.FocusedID + " disagrees with window flags"}
	}

	zSeen := make(map[int]string, len(s.Windows))
	for _, w := range s.Windows {
		if other, dup := zSeen[w.ZOrder]; dup {
			return &InvariantError{Op: "validate", Detail: "windows " + other + " and " + w.ID + " share z-order"}
		}
		zSeen[w.ZOrder] = w.ID
	}

	groups := make(map[string]Group, len(s.Groups))
	membership := make(map[string]string) // window id -> group id
	for _, g := range s.Groups {
		if g.ID == "" {
			return &InvariantError{Op: "validate", Detail: "group with empty id"}
		}
		if _, dup := groups[g.ID]; dup {
			return &InvariantError{Op: "validate", Detail: "duplicate group id " + g.ID}
		}
		groups[g.ID] = g
		if len(g.MemberIDs) == 0 {
			return &InvariantError{Op: "validate", Detail: "group " + g.ID + " is empty"}
		}
		if !g.hasMember(g.ActiveMemberID) {
			return &InvariantError{Op: "validate", Detail: "group " + g.ID + " active member " + g.ActiveMemberID + " is not a member"}
		}
		for _, id := range g.MemberIDs {
			w, ok := windows[id]
			if !ok {
				return &InvariantError{Op: "validate", Detail: "group " + g.ID + " references missing window " + id}
			}
			if w.GroupID != g.ID {
				return &InvariantError{Op: "validate", Detail: "window " + id + " does not point back at group " + g.ID}
			}
			if prev, dup := membership[id]; dup {
				return &InvariantError{Op: "validate", Detail: "window " + id + " appears in groups " + prev + " and " + g.ID}
			}
			membership[id] = g.ID
			if g.Collapsed && !w.Minimized {
				return &InvariantError{Op: "validate", Detail: "collapsed group " + g.ID + " has non-minimized member " + id}
			}
		}
	}
	for id, w := range windows {
		if w.GroupID == "" {
			continue
		}
		g, ok := groups[w.GroupID]
		if !ok {
			return &InvariantError{Op: "validate", Detail: "window " + id + " references missing group " + w.GroupID}
		}
		if !g.hasMember(id) {
			return &InvariantError{Op: "validate", Detail: "group " + g.ID + " does not list member " + id}
		}
	}
	return nil
}
