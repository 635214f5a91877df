// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/mcphost/mcphost.go
// Summary: MCP host exposing the window store to automation clients.
//          One tool per store operation, served over stdio or
//          streamable HTTP.
// Usage: h := mcphost.New(store, gateway, reg); h.ServeStdio()

package mcphost

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/sky"
)

// serverName is reported to MCP clients during initialization.
const serverName = "skylight"

// Host bridges MCP tool calls and the window store. It adds no locking
// of its own; every tool funnels through the store's serialized ops, so
// concurrent tool calls are as safe as concurrent compositor input.
type Host struct {
	store    *sky.Store
	gateway  *sky.Gateway
	registry *registry.Registry
	mcp      *mcpserver.MCPServer
}

// New creates a host over a live store. gateway and reg may be nil;
// tools that need them return an error result instead of panicking.
func New(store *sky.Store, gateway *sky.Gateway, reg *registry.Registry, version string) *Host {
	h := &Host{
		store:    store,
		gateway:  gateway,
		registry: reg,
	}
	h.mcp = mcpserver.NewMCPServer(serverName, version)
	h.registerTools()
	return h
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (h *Host) ServeStdio() error {
	return mcpserver.ServeStdio(h.mcp)
}

// ServeHTTP serves MCP over streamable HTTP on addr (e.g. ":8731").
func (h *Host) ServeHTTP(addr string) error {
	return mcpserver.NewStreamableHTTPServer(h.mcp).Start(addr)
}

func (h *Host) registerTools() {
	// read-only
	h.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List open windows in stacking order, bottom to top"),
			mcp.WithString("component", mcp.Description("Only windows hosting this component key")),
			mcp.WithBoolean("visible_only", mcp.Description("Omit minimized windows")),
		),
		h.handleListWindows,
	)

	h.mcp.AddTool(
		mcp.NewTool("dump_state",
			mcp.WithDescription("Dump the full desktop state: every window, every group and the focused window id"),
		),
		h.handleDumpState,
	)

	h.mcp.AddTool(
		mcp.NewTool("list_components",
			mcp.WithDescription("List the components that can be opened, sorted by display name"),
		),
		h.handleListComponents,
	)

	// window lifecycle
	h.mcp.AddTool(
		mcp.NewTool("open_window",
			mcp.WithDescription("Open a new window hosting a component"),
			mcp.WithString("component", mcp.Description("Component key, e.g. 'clock' or 'shellrun'"), mcp.Required()),
			mcp.WithObject("props", mcp.Description("Instance props passed to the app")),
		),
		h.handleOpenWindow,
	)

	h.mcp.AddTool(
		mcp.NewTool("launch_or_focus",
			mcp.WithDescription("Raise the most recently used window hosting a component, or open a new one when none is running"),
			mcp.WithString("component", mcp.Description("Component key"), mcp.Required()),
			mcp.WithObject("props", mcp.Description("Instance props used only when a new window is opened")),
		),
		h.handleLaunchOrFocus,
	)

	h.mcp.AddTool(
		mcp.NewTool("close_window",
			mcp.WithDescription("Close a window"),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
		),
		h.windowOpHandler("close_window", h.store.Close),
	)

	h.mcp.AddTool(
		mcp.NewTool("focus_window",
			mcp.WithDescription("Bring a window to the front and give it focus, restoring it if minimized"),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
		),
		h.windowOpHandler("focus_window", h.store.BringToFront),
	)

	h.mcp.AddTool(
		mcp.NewTool("minimize_window",
			mcp.WithDescription("Minimize a window to the taskbar"),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
		),
		h.windowOpHandler("minimize_window", h.store.Minimize),
	)

	h.mcp.AddTool(
		mcp.NewTool("maximize_window",
			mcp.WithDescription("Maximize a window, saving its bounds for a later restore"),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
		),
		h.windowOpHandler("maximize_window", h.store.Maximize),
	)

	h.mcp.AddTool(
		mcp.NewTool("restore_window",
			mcp.WithDescription("Restore a minimized or maximized window to its saved bounds"),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
		),
		h.windowOpHandler("restore_window", h.store.Restore),
	)

	h.mcp.AddTool(
		mcp.NewTool("move_window",
			mcp.WithDescription("Set a window's canvas geometry in cells. Omitted fields keep their current value."),
			mcp.WithString("id", mcp.Description("Window id"), mcp.Required()),
			mcp.WithNumber("x", mcp.Description("Left edge")),
			mcp.WithNumber("y", mcp.Description("Top edge")),
			mcp.WithNumber("width", mcp.Description("Width in cells")),
			mcp.WithNumber("height", mcp.Description("Height in cells")),
		),
		h.handleMoveWindow,
	)

	// groups
	h.mcp.AddTool(
		mcp.NewTool("create_group",
			mcp.WithDescription("Create a tabbed group from existing windows. The first member becomes the active tab and takes focus."),
			mcp.WithString("name", mcp.Description("Display name for the group")),
			mcp.WithArray("members", mcp.Description("Window ids to group, in tab order"), mcp.Required()),
		),
		h.handleCreateGroup,
	)

	h.mcp.AddTool(
		mcp.NewTool("add_to_group",
			mcp.WithDescription("Append a window to a group's tab order, detaching it from any previous group"),
			mcp.WithString("window_id", mcp.Description("Window id"), mcp.Required()),
			mcp.WithString("group_id", mcp.Description("Group id"), mcp.Required()),
		),
		h.handleAddToGroup,
	)

	h.mcp.AddTool(
		mcp.NewTool("remove_from_group",
			mcp.WithDescription("Take a window out of its group. Removing the last member deletes the group."),
			mcp.WithString("window_id", mcp.Description("Window id"), mcp.Required()),
		),
		h.handleRemoveFromGroup,
	)

	h.mcp.AddTool(
		mcp.NewTool("set_active_tab",
			mcp.WithDescription("Switch which member window a group shows. The new tab takes focus."),
			mcp.WithString("group_id", mcp.Description("Group id"), mcp.Required()),
			mcp.WithString("window_id", mcp.Description("Member window id to show"), mcp.Required()),
		),
		h.handleSetActiveTab,
	)

	h.mcp.AddTool(
		mcp.NewTool("collapse_group",
			mcp.WithDescription("Fold a group: every member window is minimized"),
			mcp.WithString("group_id", mcp.Description("Group id"), mcp.Required()),
		),
		h.groupOpHandler("collapse_group", h.store.CollapseGroup),
	)

	h.mcp.AddTool(
		mcp.NewTool("expand_group",
			mcp.WithDescription("Unfold a collapsed group: every member window is un-minimized"),
			mcp.WithString("group_id", mcp.Description("Group id"), mcp.Required()),
		),
		h.groupOpHandler("expand_group", h.store.ExpandGroup),
	)

	h.mcp.AddTool(
		mcp.NewTool("close_group",
			mcp.WithDescription("Close every member window and delete the group in one step"),
			mcp.WithString("group_id", mcp.Description("Group id"), mcp.Required()),
		),
		h.groupOpHandler("close_group", h.store.CloseGroup),
	)
}
