// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/registry.go
// Summary: Implements the component registry for discovering and creating apps.
// Usage: The compositor scans and loads components from ~/.config/skylight/components/

package registry

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/framegrace/skylight/sky"
	"github.com/framegrace/skylight/ui"
)

// ErrUnknownComponent is returned for keys no manifest claims.
var ErrUnknownComponent = errors.New("unknown component")

// AppFactory creates a new app instance from window props.
type AppFactory func(props map[string]any) ui.App

// AppEntry represents a discovered component with its metadata and factory.
type AppEntry struct {
	Manifest *Manifest
	Dir      string
	Factory  AppFactory
}

// Registry manages the collection of available components.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]*AppEntry // key -> entry (scanned components)
	builtIn map[string]*AppEntry // key -> entry (built-in components)
}

var _ sky.Resolver = (*Registry)(nil)

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		apps:    make(map[string]*AppEntry),
		builtIn: make(map[string]*AppEntry),
	}
}

// RegisterBuiltIn registers a component that's compiled into the binary.
// Built-ins have priority over scanned components with the same key.
func (r *Registry) RegisterBuiltIn(manifest *Manifest, factory AppFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if manifest.Type == "" {
		manifest.Type = TypeBuiltIn
	}
	r.builtIn[manifest.Key] = &AppEntry{
		Manifest: manifest,
		Factory:  factory,
	}
	log.Printf("Registry: Registered built-in component '%s'", manifest.Key)
}

// Scan searches for components in the given directory.
// Each subdirectory should contain a manifest.json file.
func (r *Registry) Scan(baseDir string) error {
	return r.ScanAll([]string{baseDir})
}

// ScanAll rescans a set of component directories. Previously scanned
// components are dropped first (built-ins survive); on a key collision
// the later directory wins.
func (r *Registry) ScanAll(dirs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Clear scanned components (keep built-ins)
	r.apps = make(map[string]*AppEntry)

	for _, dir := range dirs {
		if err := r.scanDirLocked(dir); err != nil {
			return err
		}
	}

	log.Printf("Registry: Loaded %d scanned components, %d built-in components",
		len(r.apps), len(r.builtIn))
	return nil
}

func (r *Registry) scanDirLocked(baseDir string) error {
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		log.Printf("Registry: Component directory does not exist: %s", baseDir)
		return nil // Not an error - just no components
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return fmt.Errorf("read component directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(baseDir, entry.Name())
		if err := r.loadComponent(dir); err != nil {
			log.Printf("Registry: Failed to load component from %s: %v", dir, err)
			// Continue loading other components
		}
	}
	return nil
}

// loadComponent attempts to load a single component from a directory.
func (r *Registry) loadComponent(dir string) error {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	if err := manifest.Validate(dir); err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}

	var factory AppFactory

	switch manifest.Type {
	case TypeWrapper:
		factory = r.createWrapperFactory(manifest)

	case TypeExternal:
		// TODO: launch external binaries behind the ui.App contract.
		factory = func(map[string]any) ui.App {
			log.Printf("Registry: External component launch not yet implemented: %s", manifest.Key)
			return nil
		}

	default:
		return fmt.Errorf("unsupported component type: %s", manifest.Type)
	}

	r.apps[manifest.Key] = &AppEntry{
		Manifest: manifest,
		Dir:      dir,
		Factory:  factory,
	}

	log.Printf("Registry: Loaded %s component '%s' (%s) from %s",
		manifest.Type, manifest.Key, manifest.DisplayName, dir)
	return nil
}

// createWrapperFactory builds a factory that instantiates the wrapped
// built-in with the manifest's preset props merged in.
func (r *Registry) createWrapperFactory(manifest *Manifest) AppFactory {
	return func(props map[string]any) ui.App {
		r.mu.RLock()
		wrapped, ok := r.builtIn[manifest.Wraps]
		r.mu.RUnlock()
		if !ok || wrapped.Factory == nil {
			log.Printf("Registry: Wrapped component not found: %s (for %s)",
				manifest.Wraps, manifest.Key)
			return nil
		}

		merged := make(map[string]any, len(props)+len(manifest.Props))
		for k, v := range props {
			merged[k] = v
		}
		// Preset props define the wrapper's identity and win over caller props.
		for k, v := range manifest.Props {
			merged[k] = v
		}
		return wrapped.Factory(merged)
	}
}

// Get retrieves a component entry by key.
// Returns nil if the component doesn't exist.
func (r *Registry) Get(key string) *AppEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Check built-ins first
	if entry, ok := r.builtIn[key]; ok {
		return entry
	}

	return r.apps[key]
}

// Resolve reports whether a component key is known.
func (r *Registry) Resolve(componentKey string) error {
	if r.Get(componentKey) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, componentKey)
	}
	return nil
}

// List returns all available components sorted by display name.
func (r *Registry) List() []*AppEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*AppEntry

	for _, entry := range r.builtIn {
		entries = append(entries, entry)
	}
	for key, entry := range r.apps {
		if _, shadowed := r.builtIn[key]; shadowed {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Manifest.DisplayName < entries[j].Manifest.DisplayName
	})

	return entries
}

// ListByCategory returns components grouped by category.
func (r *Registry) ListByCategory() map[string][]*AppEntry {
	categories := make(map[string][]*AppEntry)

	for _, entry := range r.List() {
		category := entry.Manifest.Category
		if category == "" {
			category = "other"
		}
		categories[category] = append(categories[category], entry)
	}

	return categories
}

// Search returns components matching the query, best match first.
// Exact key or name matches rank above prefix matches, prefix above
// substring, substring above tag hits and fuzzy matches.
func (r *Registry) Search(query string) []*AppEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.List()
	}

	type scored struct {
		entry *AppEntry
		rank  int
	}
	var hits []scored

	for _, entry := range r.List() {
		if rank, ok := matchRank(q, entry.Manifest); ok {
			hits = append(hits, scored{entry, rank})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].rank < hits[j].rank
	})

	entries := make([]*AppEntry, len(hits))
	for i, h := range hits {
		entries[i] = h.entry
	}
	return entries
}

// matchRank scores a manifest against a lowercased query. Lower is better.
func matchRank(q string, m *Manifest) (int, bool) {
	key := strings.ToLower(m.Key)
	name := strings.ToLower(m.DisplayName)

	switch {
	case key == q || name == q:
		return 0, true
	case strings.HasPrefix(key, q) || strings.HasPrefix(name, q):
		return 1, true
	case strings.Contains(key, q) || strings.Contains(name, q):
		return 2, true
	}

	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return 3, true
		}
	}

	// Fuzzy matching on very short queries matches everything.
	if len(q) >= 3 {
		if levenshtein.ComputeDistance(q, key) <= 2 ||
			levenshtein.ComputeDistance(q, name) <= 2 {
			return 4, true
		}
	}

	return 0, false
}

// CreateApp instantiates the component registered under key.
// Props come from the window that hosts the instance.
func (r *Registry) CreateApp(key string, props map[string]any) (ui.App, error) {
	entry := r.Get(key)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, key)
	}

	if entry.Factory == nil {
		return nil, fmt.Errorf("component '%s' has no factory", key)
	}

	app := entry.Factory(props)
	if app == nil {
		return nil, fmt.Errorf("component '%s' could not be instantiated", key)
	}
	return app, nil
}

// Count returns the total number of registered components.
func (r *Registry) Count() int {
	return len(r.List())
}
