// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/mcphost/mcphost_test.go
// Summary: Tool handler tests driving the host against a real store.

package mcphost

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

type stubApp struct{ title string }

func (a *stubApp) Run() error                        { return nil }
func (a *stubApp) Stop()                             {}
func (a *stubApp) Resize(cols, rows int)             {}
func (a *stubApp) Render() [][]ui.Cell               { return nil }
func (a *stubApp) GetTitle() string                  { return a.title }
func (a *stubApp) HandleKey(ev *tcell.EventKey)      {}
func (a *stubApp) SetRefreshNotifier(ch chan<- bool) {}

// newTestHost builds a host over a strict store with two registered
// components, so gateway key vetting is live.
func newTestHost(t *testing.T) *Host {
	t.Helper()
	store := sky.NewStore(sky.WithStrictInvariants())
	t.Cleanup(store.Shutdown)

	reg := registry.New()
	reg.RegisterBuiltIn(&registry.Manifest{Key: "clock", DisplayName: "Clock"}, func(props map[string]any) ui.App {
		return &stubApp{title: "Clock"}
	})
	reg.RegisterBuiltIn(&registry.Manifest{Key: "pad", DisplayName: "Pad"}, func(props map[string]any) ui.App {
		return &stubApp{title: "Pad"}
	})

	return New(store, sky.NewGateway(store, reg), reg, "test")
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

// invokeOK calls a tool handler, asserts success and decodes the payload.
func invokeOK(t *testing.T, fn mcpserver.ToolHandlerFunc, args map[string]any) opResult {
	t.Helper()
	res, err := fn(context.Background(), callReq(args))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textOf(t, res))
	}
	var out opResult
	if err := yaml.Unmarshal([]byte(textOf(t, res)), &out); err != nil {
		t.Fatalf("unmarshal result payload: %v", err)
	}
	return out
}

// invokeErr calls a tool handler, asserts a tool-level error and returns
// its message. The transport error must stay nil either way.
func invokeErr(t *testing.T, fn mcpserver.ToolHandlerFunc, args map[string]any) string {
	t.Helper()
	res, err := fn(context.Background(), callReq(args))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result, got: %s", textOf(t, res))
	}
	return textOf(t, res)
}

func TestOpenWindowTool(t *testing.T) {
	h := newTestHost(t)

	out := invokeOK(t, h.handleOpenWindow, map[string]any{
		"component": "clock",
		"props":     map[string]any{"format": "15:04"},
	})
	if !out.OK || out.Op != "open_window" || out.ID == "" {
		t.Fatalf("unexpected payload: %+v", out)
	}

	w, ok := h.store.Window(out.ID)
	if !ok {
		t.Fatalf("window %s not in store", out.ID)
	}
	if w.ComponentKey != "clock" {
		t.Errorf("component = %q, want clock", w.ComponentKey)
	}
	if w.Props["format"] != "15:04" {
		t.Errorf("props not carried through: %+v", w.Props)
	}
}

func TestOpenWindowVetsComponentKey(t *testing.T) {
	h := newTestHost(t)

	msg := invokeErr(t, h.handleOpenWindow, map[string]any{"component": "ghost"})
	if !strings.Contains(msg, "unknown component") {
		t.Errorf("message = %q, want unknown component", msg)
	}
	if n := len(h.store.Snapshot().Windows); n != 0 {
		t.Errorf("store has %d windows after rejected open", n)
	}
}

func TestOpenWindowRequiresComponent(t *testing.T) {
	h := newTestHost(t)

	msg := invokeErr(t, h.handleOpenWindow, nil)
	if !strings.Contains(msg, "required") {
		t.Errorf("message = %q, want a required-parameter complaint", msg)
	}
}

func TestLaunchOrFocusCollapsesToExisting(t *testing.T) {
	h := newTestHost(t)

	first := invokeOK(t, h.handleLaunchOrFocus, map[string]any{"component": "pad"})
	second := invokeOK(t, h.handleLaunchOrFocus, map[string]any{"component": "pad"})
	if first.ID != second.ID {
		t.Errorf("second launch minted %s, want existing %s", second.ID, first.ID)
	}
	if n := len(h.store.Snapshot().Windows); n != 1 {
		t.Errorf("store has %d windows, want 1", n)
	}
}

func TestLaunchOrFocusWithoutGateway(t *testing.T) {
	store := sky.NewStore(sky.WithStrictInvariants())
	t.Cleanup(store.Shutdown)
	h := New(store, nil, nil, "test")

	msg := invokeErr(t, h.handleLaunchOrFocus, map[string]any{"component": "pad"})
	if !strings.Contains(msg, "gateway") {
		t.Errorf("message = %q, want gateway complaint", msg)
	}
}

func TestWindowOpHandlerMinimizeRestore(t *testing.T) {
	h := newTestHost(t)
	id, err := h.store.Open("clock", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	out := invokeOK(t, h.windowOpHandler("minimize_window", h.store.Minimize), map[string]any{"id": id})
	if out.Op != "minimize_window" || out.ID != id {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if w, _ := h.store.Window(id); !w.Minimized {
		t.Error("window not minimized")
	}

	invokeOK(t, h.windowOpHandler("restore_window", h.store.Restore), map[string]any{"id": id})
	if w, _ := h.store.Window(id); w.Minimized {
		t.Error("window still minimized after restore")
	}
}

func TestWindowOpNotFoundIsToolError(t *testing.T) {
	h := newTestHost(t)

	closeTool := h.windowOpHandler("close_window", h.store.Close)
	msg := invokeErr(t, closeTool, map[string]any{"id": "no-such-window"})
	if !strings.Contains(msg, "not found") {
		t.Errorf("message = %q, want not found", msg)
	}
}

func TestMoveWindowKeepsOmittedGeometry(t *testing.T) {
	h := newTestHost(t)
	id, err := h.store.Open("clock", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := h.store.SetBounds(id, sky.Bounds{X: 1, Y: 2, Width: 30, Height: 10}); err != nil {
		t.Fatalf("set bounds: %v", err)
	}

	invokeOK(t, h.handleMoveWindow, map[string]any{"id": id, "x": 5})

	w, _ := h.store.Window(id)
	want := sky.Bounds{X: 5, Y: 2, Width: 30, Height: 10}
	if w.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", w.Bounds, want)
	}
}

func TestGroupToolsLifecycle(t *testing.T) {
	h := newTestHost(t)
	open := func(key string) string {
		t.Helper()
		id, err := h.store.Open(key, nil)
		if err != nil {
			t.Fatalf("open %s: %v", key, err)
		}
		return id
	}
	a, b, c := open("clock"), open("pad"), open("pad")

	created := invokeOK(t, h.handleCreateGroup, map[string]any{
		"name":    "Work",
		"members": []any{a, b},
	})
	gid := created.ID
	g, ok := h.store.Group(gid)
	if !ok {
		t.Fatalf("group %s not in store", gid)
	}
	if g.Name != "Work" || g.ActiveMemberID != a || len(g.MemberIDs) != 2 {
		t.Fatalf("unexpected group: %+v", g)
	}

	invokeOK(t, h.handleSetActiveTab, map[string]any{"group_id": gid, "window_id": b})
	if g, _ = h.store.Group(gid); g.ActiveMemberID != b {
		t.Errorf("active tab = %s, want %s", g.ActiveMemberID, b)
	}

	invokeOK(t, h.handleAddToGroup, map[string]any{"window_id": c, "group_id": gid})
	if g, _ = h.store.Group(gid); len(g.MemberIDs) != 3 {
		t.Errorf("members = %v, want 3 entries", g.MemberIDs)
	}

	invokeOK(t, h.groupOpHandler("collapse_group", h.store.CollapseGroup), map[string]any{"group_id": gid})
	for _, id := range []string{a, b, c} {
		if w, _ := h.store.Window(id); !w.Minimized {
			t.Errorf("member %s not minimized after collapse", id)
		}
	}

	invokeOK(t, h.groupOpHandler("expand_group", h.store.ExpandGroup), map[string]any{"group_id": gid})
	for _, id := range []string{a, b, c} {
		if w, _ := h.store.Window(id); w.Minimized {
			t.Errorf("member %s still minimized after expand", id)
		}
	}

	invokeOK(t, h.handleRemoveFromGroup, map[string]any{"window_id": c})
	if g, _ = h.store.Group(gid); len(g.MemberIDs) != 2 {
		t.Errorf("members = %v after remove, want 2 entries", g.MemberIDs)
	}

	invokeOK(t, h.groupOpHandler("close_group", h.store.CloseGroup), map[string]any{"group_id": gid})
	if _, ok := h.store.Group(gid); ok {
		t.Error("group survived close_group")
	}
	if _, ok := h.store.Window(a); ok {
		t.Error("member window survived close_group")
	}
	if _, ok := h.store.Window(c); !ok {
		t.Error("removed window should survive close_group")
	}
}

func TestCreateGroupValidation(t *testing.T) {
	h := newTestHost(t)

	if msg := invokeErr(t, h.handleCreateGroup, map[string]any{"name": "x"}); !strings.Contains(msg, "required") {
		t.Errorf("missing members: %q", msg)
	}
	if msg := invokeErr(t, h.handleCreateGroup, map[string]any{"members": "not-an-array"}); !strings.Contains(msg, "array") {
		t.Errorf("non-array members: %q", msg)
	}
	if msg := invokeErr(t, h.handleCreateGroup, map[string]any{"members": []any{42}}); !strings.Contains(msg, "window id string") {
		t.Errorf("non-string member: %q", msg)
	}
}

func TestListWindowsFilters(t *testing.T) {
	h := newTestHost(t)
	clockID, _ := h.store.Open("clock", nil)
	padID, _ := h.store.Open("pad", nil)
	if err := h.store.Minimize(padID); err != nil {
		t.Fatalf("minimize: %v", err)
	}

	list := func(args map[string]any) []windowView {
		t.Helper()
		res, err := h.handleListWindows(context.Background(), callReq(args))
		if err != nil {
			t.Fatalf("list_windows(%v): %v", args, err)
		}
		if res.IsError {
			t.Fatalf("list_windows(%v): %s", args, textOf(t, res))
		}
		var views []windowView
		if err := yaml.Unmarshal([]byte(textOf(t, res)), &views); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return views
	}

	all := list(nil)
	if len(all) != 2 {
		t.Fatalf("unfiltered list has %d windows, want 2", len(all))
	}

	visible := list(map[string]any{"visible_only": true})
	if len(visible) != 1 || visible[0].ID != clockID {
		t.Errorf("visible_only = %+v, want just %s", visible, clockID)
	}

	pads := list(map[string]any{"component": "pad"})
	if len(pads) != 1 || pads[0].ID != padID || !pads[0].Minimized {
		t.Errorf("component filter = %+v, want minimized %s", pads, padID)
	}
}

func TestDumpStateTool(t *testing.T) {
	h := newTestHost(t)
	a, _ := h.store.Open("clock", nil)
	b, _ := h.store.Open("pad", nil)
	if _, err := h.store.CreateGroup("Work", []string{a, b}); err != nil {
		t.Fatalf("create group: %v", err)
	}

	res, err := h.handleDumpState(context.Background(), callReq(nil))
	if err != nil || res.IsError {
		t.Fatalf("dump_state: err=%v", err)
	}
	var state stateView
	if err := yaml.Unmarshal([]byte(textOf(t, res)), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(state.Windows) != 2 || len(state.Groups) != 1 {
		t.Fatalf("state = %+v, want 2 windows and 1 group", state)
	}
	if state.Focused != a {
		t.Errorf("focused = %s, want %s", state.Focused, a)
	}
	if state.Groups[0].Name != "Work" {
		t.Errorf("group name = %q", state.Groups[0].Name)
	}
}

func TestListComponentsTool(t *testing.T) {
	h := newTestHost(t)

	res, err := h.handleListComponents(context.Background(), callReq(nil))
	if err != nil || res.IsError {
		t.Fatalf("list_components: err=%v", err)
	}
	text := textOf(t, res)
	for _, key := range []string{"clock", "pad"} {
		if !strings.Contains(text, key) {
			t.Errorf("output missing component %q:\n%s", key, text)
		}
	}
}

func TestListComponentsWithoutRegistry(t *testing.T) {
	store := sky.NewStore(sky.WithStrictInvariants())
	t.Cleanup(store.Shutdown)
	h := New(store, nil, nil, "test")

	msg := invokeErr(t, h.handleListComponents, nil)
	if !strings.Contains(msg, "registry") {
		t.Errorf("message = %q, want registry complaint", msg)
	}
}
