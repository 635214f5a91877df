// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Typed configuration loaded from file and environment.
// Usage: Reads ~/.config/skylight/config.yaml; SKYLIGHT_* env vars override.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the desktop configuration.
type Config struct {
	Desktop    DesktopConfig
	Session    SessionConfig
	Theme      ThemeConfig
	Log        LogConfig
	Components map[string]ComponentConfig
}

// DesktopConfig holds compositor settings.
type DesktopConfig struct {
	// ComponentDirs are scanned for manifest.json component definitions.
	ComponentDirs []string `mapstructure:"component_dirs"`

	// Startup lists component keys activated when the desktop starts.
	Startup []string

	// ShowTaskbar toggles the bottom taskbar.
	ShowTaskbar bool `mapstructure:"show_taskbar"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	Path       string
	Autosave   bool
	DebounceMs int `mapstructure:"debounce_ms"`
}

// ThemeConfig holds the base palette selection.
type ThemeConfig struct {
	Name   string
	Colors map[string]string
}

// LogConfig holds logging settings.
type LogConfig struct {
	File string
}

// ComponentConfig holds per-component settings.
type ComponentConfig struct {
	// Props are merged into the window props when the component launches.
	Props map[string]any

	// Theme overrides chrome colors for windows hosting this component.
	Theme map[string]string
}

// Component returns the section for a component key, or a zero value
// when the component has no config.
func (c Config) Component(key string) ComponentConfig {
	return c.Components[key]
}

// Load reads configuration from file and env. Env var overrides use
// prefix SKYLIGHT_, with dots replaced by underscores (theme.name
// becomes SKYLIGHT_THEME_NAME).
func Load() (Config, error) {
	configRoot, err := Root()
	if err != nil {
		return Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	dataRoot, err := DataRoot()
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	v := viper.New()
	applyDefaults(v, configRoot, dataRoot)

	v.SetConfigType("yaml")
	if cfgPath := os.Getenv("SKYLIGHT_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(configRoot)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SKYLIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine, defaults apply.
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func applyDefaults(v *viper.Viper, configRoot, dataRoot string) {
	v.SetDefault("desktop.component_dirs", []string{filepath.Join(configRoot, "components")})
	v.SetDefault("desktop.startup", []string{"welcome"})
	v.SetDefault("desktop.show_taskbar", true)
	v.SetDefault("session.path", filepath.Join(dataRoot, "sessions.db"))
	v.SetDefault("session.autosave", true)
	v.SetDefault("session.debounce_ms", 2000)
	v.SetDefault("theme.name", "default")
	v.SetDefault("log.file", filepath.Join(dataRoot, "skylight.log"))
}

// Save writes the provided config to disk, creating the config
// directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("SKYLIGHT_CONFIG")
	if path == "" {
		root, err := Root()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(root, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("desktop.component_dirs", cfg.Desktop.ComponentDirs)
	v.Set("desktop.startup", cfg.Desktop.Startup)
	v.Set("desktop.show_taskbar", cfg.Desktop.ShowTaskbar)
	v.Set("session.path", cfg.Session.Path)
	v.Set("session.autosave", cfg.Session.Autosave)
	v.Set("session.debounce_ms", cfg.Session.DebounceMs)
	v.Set("theme.name", cfg.Theme.Name)
	if len(cfg.Theme.Colors) > 0 {
		v.Set("theme.colors", cfg.Theme.Colors)
	}
	v.Set("log.file", cfg.Log.File)
	for key, cc := range cfg.Components {
		if len(cc.Props) > 0 {
			v.Set("components."+key+".props", cc.Props)
		}
		if len(cc.Theme) > 0 {
			v.Set("components."+key+".theme", cc.Theme)
		}
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
