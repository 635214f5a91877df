// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for skylight configuration and data.

package config

import (
	"os"
	"path/filepath"
)

// Root returns the skylight configuration directory.
func Root() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "skylight"), nil
}

// DataRoot returns the directory for mutable state (session db, logs).
func DataRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "skylight"), nil
}
