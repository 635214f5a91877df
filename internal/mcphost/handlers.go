// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/mcphost/handlers.go
// Summary: Tool handlers translating MCP calls into store operations.
// Notes: Store errors, NotFound included, come back as tool error
//        results so the client sees them as text, never as a broken
//        transport.

package mcphost

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/framegrace/skylight/sky"
)

// opResult is the YAML payload returned by mutating tools.
type opResult struct {
	OK bool   `yaml:"ok"`
	Op string `yaml:"op"`
	ID string `yaml:"id,omitempty"`
}

// windowView is the projection of a window for tool results.
type windowView struct {
	ID        string         `yaml:"id"`
	Component string         `yaml:"component"`
	Props     map[string]any `yaml:"props,omitempty"`
	Z         int            `yaml:"z"`
	Minimized bool           `yaml:"minimized,omitempty"`
	Maximized bool           `yaml:"maximized,omitempty"`
	Focused   bool           `yaml:"focused,omitempty"`
	Group     string         `yaml:"group,omitempty"`
	Bounds    boundsView     `yaml:"bounds"`
}

type boundsView struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type groupView struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name,omitempty"`
	Members   []string `yaml:"members"`
	ActiveTab string   `yaml:"active_tab"`
	Collapsed bool     `yaml:"collapsed,omitempty"`
}

type stateView struct {
	Windows []windowView `yaml:"windows"`
	Groups  []groupView  `yaml:"groups,omitempty"`
	Focused string       `yaml:"focused,omitempty"`
}

func viewWindow(w sky.Window) windowView {
	return windowView{
		ID:        w.ID,
		Component: w.ComponentKey,
		Props:     w.Props,
		Z:         w.ZOrder,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		Focused:   w.Focused,
		Group:     w.GroupID,
		Bounds:    boundsView{X: w.Bounds.X, Y: w.Bounds.Y, Width: w.Bounds.Width, Height: w.Bounds.Height},
	}
}

func viewGroup(g sky.Group) groupView {
	return groupView{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.MemberIDs,
		ActiveTab: g.ActiveMemberID,
		Collapsed: g.Collapsed,
	}
}

func viewState(s sky.Snapshot) stateView {
	v := stateView{
		Windows: make([]windowView, 0, len(s.Windows)),
		Focused: s.FocusedID,
	}
	for _, w := range s.Windows {
		v.Windows = append(v.Windows, viewWindow(w))
	}
	for _, g := range s.Groups {
		v.Groups = append(v.Groups, viewGroup(g))
	}
	return v
}

// resultText serializes v to YAML for an MCP text result.
func resultText(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("marshal failed: %v", err)
	}
	return string(b)
}

func (h *Host) handleListWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	component := stringParam(params, "component", "")
	visibleOnly := boolParam(params, "visible_only", false)

	snap := h.store.Snapshot()
	views := make([]windowView, 0, len(snap.Windows))
	for _, w := range snap.Windows {
		if component != "" && w.ComponentKey != component {
			continue
		}
		if visibleOnly && w.Minimized {
			continue
		}
		views = append(views, viewWindow(w))
	}
	return mcp.NewToolResultText(resultText(views)), nil
}

func (h *Host) handleDumpState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(resultText(viewState(h.store.Snapshot()))), nil
}

func (h *Host) handleListComponents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.registry == nil {
		return mcp.NewToolResultError("no component registry attached"), nil
	}
	type componentView struct {
		Key         string `yaml:"key"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Category    string `yaml:"category,omitempty"`
	}
	entries := h.registry.List()
	views := make([]componentView, 0, len(entries))
	for _, e := range entries {
		views = append(views, componentView{
			Key:         e.Manifest.Key,
			Name:        e.Manifest.DisplayName,
			Description: e.Manifest.Description,
			Category:    e.Manifest.Category,
		})
	}
	return mcp.NewToolResultText(resultText(views)), nil
}

func (h *Host) handleOpenWindow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	component := stringParam(params, "component", "")
	if component == "" {
		return mcp.NewToolResultError("component parameter is required"), nil
	}

	// The gateway vets keys against the registry; without one any key
	// passes, same as a direct store caller.
	var (
		id  string
		err error
	)
	if h.gateway != nil {
		id, err = h.gateway.Launch(component, propsParam(params))
	} else {
		id, err = h.store.Open(component, propsParam(params))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "open_window", ID: id})), nil
}

func (h *Host) handleLaunchOrFocus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	component := stringParam(params, "component", "")
	if component == "" {
		return mcp.NewToolResultError("component parameter is required"), nil
	}
	if h.gateway == nil {
		return mcp.NewToolResultError("no launch gateway attached"), nil
	}
	id, err := h.gateway.LaunchOrFocus(component, propsParam(params))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "launch_or_focus", ID: id})), nil
}

func (h *Host) handleMoveWindow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	w, ok := h.store.Window(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("window %q not found", id)), nil
	}
	b := w.Bounds
	b.X = intParam(params, "x", b.X)
	b.Y = intParam(params, "y", b.Y)
	b.Width = intParam(params, "width", b.Width)
	b.Height = intParam(params, "height", b.Height)
	if err := h.store.SetBounds(id, b); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "move_window", ID: id})), nil
}

func (h *Host) handleCreateGroup(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")

	membersRaw, ok := params["members"]
	if !ok {
		return mcp.NewToolResultError("members parameter is required"), nil
	}
	arr, ok := membersRaw.([]interface{})
	if !ok {
		return mcp.NewToolResultError("members must be an array of window ids"), nil
	}
	members := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return mcp.NewToolResultError("each member must be a window id string"), nil
		}
		members = append(members, s)
	}

	groupID, err := h.store.CreateGroup(name, members)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "create_group", ID: groupID})), nil
}

func (h *Host) handleAddToGroup(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	windowID := stringParam(params, "window_id", "")
	groupID := stringParam(params, "group_id", "")
	if windowID == "" || groupID == "" {
		return mcp.NewToolResultError("window_id and group_id parameters are required"), nil
	}
	if err := h.store.AddWindowToGroup(windowID, groupID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "add_to_group", ID: groupID})), nil
}

func (h *Host) handleRemoveFromGroup(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	windowID := stringParam(params, "window_id", "")
	if windowID == "" {
		return mcp.NewToolResultError("window_id parameter is required"), nil
	}
	if err := h.store.RemoveWindowFromGroup(windowID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "remove_from_group", ID: windowID})), nil
}

func (h *Host) handleSetActiveTab(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	groupID := stringParam(params, "group_id", "")
	windowID := stringParam(params, "window_id", "")
	if groupID == "" || windowID == "" {
		return mcp.NewToolResultError("group_id and window_id parameters are required"), nil
	}
	if err := h.store.SetActiveGroupMember(groupID, windowID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(opResult{OK: true, Op: "set_active_tab", ID: windowID})), nil
}

// windowOpHandler adapts a single-id window operation into a tool
// handler. The op name echoes back in the result payload.
func (h *Host) windowOpHandler(op string, fn func(id string) error) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := stringParam(request.GetArguments(), "id", "")
		if id == "" {
			return mcp.NewToolResultError("id parameter is required"), nil
		}
		if err := fn(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(resultText(opResult{OK: true, Op: op, ID: id})), nil
	}
}

// groupOpHandler is windowOpHandler for single-group_id operations.
func (h *Host) groupOpHandler(op string, fn func(groupID string) error) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		groupID := stringParam(request.GetArguments(), "group_id", "")
		if groupID == "" {
			return mcp.NewToolResultError("group_id parameter is required"), nil
		}
		if err := fn(groupID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(resultText(opResult{OK: true, Op: op, ID: groupID})), nil
	}
}

// Parameter extraction helpers for tool argument maps.

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func propsParam(params map[string]interface{}) map[string]any {
	v, ok := params["props"]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}
