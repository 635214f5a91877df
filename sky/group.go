// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/group.go
// Summary: Group entity model: a tabbed container of windows.

package sky

// Group is a tabbed container holding an ordered set of windows, one of
// which is active (visible) at a time.
//
// Invariants maintained by the store: MemberIDs is non-empty for as long
// as the group exists, every member references an open window whose
// GroupID points back here, and ActiveMemberID is always a member. When
// Collapsed is true every member window is forced minimized.
type Group struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MemberIDs      []string `json:"member_ids"`
	ActiveMemberID string   `json:"active_member_id"`
	Collapsed      bool     `json:"collapsed"`
}

func (g *Group) clone() *Group {
	c := *g
	c.MemberIDs = append([]string(nil), g.MemberIDs...)
	return &c
}

func (g *Group) hasMember(id string) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// removeMember deletes id from MemberIDs preserving order and reports
// whether it was present.
func (g *Group) removeMember(id string) bool {
	for i, m := range g.MemberIDs {
		if m == id {
			g.MemberIDs = append(g.MemberIDs[:i], g.MemberIDs[i+1:]...)
			return true
		}
	}
	return false
}
