// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/manifest.go
// Summary: Defines the component manifest structure for the registry.
// Usage: Components ship a manifest.json describing their metadata.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ComponentType specifies how a component is instantiated.
type ComponentType string

const (
	// TypeBuiltIn uses a factory compiled into the binary.
	TypeBuiltIn ComponentType = "built-in"

	// TypeWrapper wraps another component with preset props.
	// Example: htop = shellrun with {"command": "htop"}.
	TypeWrapper ComponentType = "wrapper"

	// TypeExternal launches an external binary (future).
	TypeExternal ComponentType = "external"
)

// Manifest describes a component's metadata and capabilities.
// The Key is what windows record as their component key, so renaming
// a component orphans any saved sessions that reference the old key.
type Manifest struct {
	// Key is the unique identifier for this component (e.g. "clock", "htop").
	Key string `json:"key"`

	// DisplayName is the human-readable name shown in the launcher.
	DisplayName string `json:"displayName"`

	// Description provides a brief explanation of what the component does.
	Description string `json:"description"`

	// Version follows semantic versioning (e.g. "1.0.0").
	Version string `json:"version,omitempty"`

	// Type specifies how to instantiate this component.
	// Defaults to "external" when loaded from disk.
	Type ComponentType `json:"type,omitempty"`

	// --- For wrapper components ---

	// Wraps names the built-in component to wrap (e.g. "shellrun").
	// Only used when Type is "wrapper".
	Wraps string `json:"wraps,omitempty"`

	// Props are preset props merged into every instance of a wrapper.
	// They define the wrapper's identity and win over caller props.
	Props map[string]any `json:"props,omitempty"`

	// --- For external components ---

	// Binary is the executable path relative to the manifest directory.
	// Only used when Type is "external".
	Binary string `json:"binary,omitempty"`

	// --- Common metadata ---

	// Icon is a single emoji or short string for visual identification.
	Icon string `json:"icon,omitempty"`

	// Category groups components in the launcher (e.g. "system", "dev").
	Category string `json:"category,omitempty"`

	// Tags are searchable keywords.
	Tags []string `json:"tags,omitempty"`

	// SingleInstance tells the launcher to focus a running instance
	// instead of opening another one.
	SingleInstance bool `json:"singleInstance,omitempty"`
}

// LoadManifest reads and parses a manifest.json file from the given directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if m.Key == "" {
		return nil, fmt.Errorf("manifest missing required field: key")
	}
	if m.DisplayName == "" {
		return nil, fmt.Errorf("manifest missing required field: displayName")
	}

	// Default type to external if not specified
	if m.Type == "" {
		m.Type = TypeExternal
	}

	return &m, nil
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate(dir string) error {
	if m.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if m.DisplayName == "" {
		return fmt.Errorf("displayName cannot be empty")
	}

	switch m.Type {
	case TypeWrapper:
		if m.Wraps == "" {
			return fmt.Errorf("wrapper component must specify 'wraps' field")
		}

	case TypeExternal:
		if m.Binary == "" {
			return fmt.Errorf("external component must specify 'binary' field")
		}
		binaryPath := filepath.Join(dir, m.Binary)
		if _, err := os.Stat(binaryPath); err != nil {
			return fmt.Errorf("binary not found: %s (%w)", m.Binary, err)
		}

	case TypeBuiltIn:
		// Built-ins are registered in code and need no disk validation.

	default:
		return fmt.Errorf("unknown component type: %s", m.Type)
	}

	return nil
}

// BinaryPath returns the absolute path to an external component's binary.
func (m *Manifest) BinaryPath(dir string) string {
	return filepath.Join(dir, m.Binary)
}
