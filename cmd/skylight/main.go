// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/skylight/main.go
// Summary: The skylight shell binary: wires config, registry, session
//          store and window store together and hands the terminal to
//          the compositor.
// Usage: Run `skylight` in a terminal. Ctrl-Q quits; the session is
//        saved on exit and restored on the next start.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	_ "github.com/framegrace/skylight/apps/clock"
	_ "github.com/framegrace/skylight/apps/codeview"
	"github.com/framegrace/skylight/apps/launcher"
	_ "github.com/framegrace/skylight/apps/shellrun"
	_ "github.com/framegrace/skylight/apps/welcome"
	"github.com/framegrace/skylight/compositor"
	"github.com/framegrace/skylight/config"
	"github.com/framegrace/skylight/internal/mcphost"
	"github.com/framegrace/skylight/internal/session"
	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/registry"
	"github.com/framegrace/skylight/sky"
)

const version = "0.1.0"

const finalSaveTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	sessionName := flag.String("session", "default", "Session to restore and save")
	fromScratch := flag.Bool("from-scratch", false, "Ignore any saved session and start fresh")
	logPath := flag.String("log", "", "Log file (default from config)")
	mcpAddr := flag.String("mcp-http", "", "Serve MCP tools over streamable HTTP on this address (e.g. :8731)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("skylight", version)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("skylight must run on an interactive terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The compositor owns the terminal, so logging goes to a file.
	if *logPath == "" {
		*logPath = cfg.Log.File
	}
	logFile, err := openLogFile(*logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Printf("Main: skylight %s starting, session %q", version, *sessionName)

	theme := theming.New(cfg.Theme.Name, cfg.Theme.Colors)

	store := sky.NewStore()
	reg := registry.New()
	registry.RegisterBuiltIns(reg)
	gateway := sky.NewGateway(store, reg)
	launcher.Register(reg, gateway.LaunchOrFocus, theme)
	if err := reg.ScanAll(cfg.Desktop.ComponentDirs); err != nil {
		log.Printf("Main: component scan: %v", err)
	}

	sessions, err := session.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	driver, err := compositor.NewTerminalDriver()
	if err != nil {
		return fmt.Errorf("allocate screen: %w", err)
	}
	comp := compositor.New(driver, store, gateway, reg, &cfg, theme)

	// Populate the store only after the compositor subscribed, so every
	// window gets its app started and its placement assigned.
	restored := false
	if !*fromScratch {
		restored = restoreSession(store, sessions, *sessionName)
	}
	if !restored {
		for _, key := range cfg.Desktop.Startup {
			if _, err := gateway.LaunchOrFocus(key, nil); err != nil {
				log.Printf("Main: startup component %q: %v", key, err)
			}
		}
	}

	var saver *session.Autosaver
	if cfg.Session.Autosave {
		saver = session.NewAutosaver(store, sessions, *sessionName,
			time.Duration(cfg.Session.DebounceMs)*time.Millisecond)
		saver.Start()
	}

	if *mcpAddr != "" {
		host := mcphost.New(store, gateway, reg, version)
		go func() {
			log.Printf("Main: MCP listening on %s", *mcpAddr)
			if err := host.ServeHTTP(*mcpAddr); err != nil {
				log.Printf("Main: MCP server: %v", err)
			}
		}()
	}

	runErr := comp.Run()
	comp.Close()

	if saver != nil {
		saver.Stop()
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer cancel()
	if err := sessions.Save(saveCtx, *sessionName, store.Snapshot()); err != nil {
		log.Printf("Main: final save of %q failed: %v", *sessionName, err)
	}
	store.Shutdown()

	log.Printf("Main: skylight stopped")
	return runErr
}

// restoreSession loads the named session into the store. It reports
// whether the store now carries restored windows; a missing or corrupt
// session leaves the store empty and is never fatal.
func restoreSession(store *sky.Store, sessions *session.Store, name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer cancel()

	snap, err := sessions.Load(ctx, name)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return false
	case err != nil:
		log.Printf("Main: cannot load session %q: %v", name, err)
		return false
	}
	if len(snap.Windows) == 0 {
		return false
	}
	if err := store.LoadSnapshot(snap); err != nil {
		log.Printf("Main: session %q rejected by store: %v", name, err)
		return false
	}
	log.Printf("Main: restored session %q (%d windows, %d groups)",
		name, len(snap.Windows), len(snap.Groups))
	return true
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
