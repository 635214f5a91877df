// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/session/store.go
// Summary: SQLite-backed persistence for named desktop sessions.
// Usage: Save/Load round-trip full store snapshots; List/Delete manage
// the catalog. Schema changes ship as embedded migrations.

package session

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/framegrace/skylight/sky"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoSession is returned when a named session does not exist.
var ErrNoSession = errors.New("session not found")

// Store persists named desktop sessions in sqlite.
type Store struct {
	db *sql.DB
}

// Meta describes a stored session.
type Meta struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Windows   int
	Groups    int
}

// Open opens (creating if needed) the session database at path and
// applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	// Pragmas tuned for a desktop that writes small snapshots often.
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect session db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	// Not closed: migrate.Close would close the shared *sql.DB too.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the snapshot under name, replacing any previous contents.
// The write is a single transaction: either the whole session updates
// or nothing does.
func (s *Store) Save(ctx context.Context, name string, snap sky.Snapshot) error {
	if name == "" {
		return errors.New("session name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO sessions(name) VALUES(?)
	ON CONFLICT(name) DO UPDATE SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		name); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	var sessionID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE name = ?`, name).Scan(&sessionID); err != nil {
		return fmt.Errorf("resolve session id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM windows WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM groups WHERE session_id = ?`, sessionID); err != nil {
		return err
	}

	for _, w := range snap.Windows {
		props := "{}"
		if len(w.Props) > 0 {
			raw, err := json.Marshal(w.Props)
			if err != nil {
				return fmt.Errorf("encode props for %s: %w", w.ID, err)
			}
			props = string(raw)
		}

		var savedBounds any
		if w.SavedBounds != nil {
			raw, err := json.Marshal(w.SavedBounds)
			if err != nil {
				return fmt.Errorf("encode saved bounds for %s: %w", w.ID, err)
			}
			savedBounds = string(raw)
		}

		if _, err := tx.ExecContext(ctx, `
		INSERT INTO windows(
		 session_id, id, component_key, props, z_order, minimized, maximized,
		 focused, group_id, x, y, width, height, saved_bounds, opened_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, w.ID, w.ComponentKey, props, w.ZOrder,
			w.Minimized, w.Maximized, w.Focused, w.GroupID,
			w.Bounds.X, w.Bounds.Y, w.Bounds.Width, w.Bounds.Height,
			savedBounds, w.OpenedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert window %s: %w", w.ID, err)
		}
	}

	for _, g := range snap.Groups {
		members, err := json.Marshal(g.MemberIDs)
		if err != nil {
			return fmt.Errorf("encode members for %s: %w", g.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO groups(session_id, id, name, member_ids, active_member_id, collapsed)
		VALUES(?, ?, ?, ?, ?, ?)`,
			sessionID, g.ID, g.Name, string(members), g.ActiveMemberID,
			g.Collapsed); err != nil {
			return fmt.Errorf("insert group %s: %w", g.ID, err)
		}
	}

	return tx.Commit()
}

// Load rebuilds the named session's snapshot. The result is validated
// before it is returned, so a corrupt session fails here instead of
// poisoning a live store.
func (s *Store) Load(ctx context.Context, name string) (sky.Snapshot, error) {
	var snap sky.Snapshot

	var sessionID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE name = ?`, name).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	if err != nil {
		return snap, err
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, component_key, props, z_order, minimized, maximized, focused,
	       group_id, x, y, width, height, saved_bounds, opened_at
	FROM windows WHERE session_id = ? ORDER BY z_order ASC`, sessionID)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			w           sky.Window
			props       string
			savedBounds sql.NullString
			openedAt    string
		)
		if err := rows.Scan(&w.ID, &w.ComponentKey, &props, &w.ZOrder,
			&w.Minimized, &w.Maximized, &w.Focused, &w.GroupID,
			&w.Bounds.X, &w.Bounds.Y, &w.Bounds.Width, &w.Bounds.Height,
			&savedBounds, &openedAt); err != nil {
			return snap, fmt.Errorf("scan window: %w", err)
		}

		if props != "" && props != "{}" && props != "null" {
			if err := json.Unmarshal([]byte(props), &w.Props); err != nil {
				return snap, fmt.Errorf("decode props for %s: %w", w.ID, err)
			}
		}
		if savedBounds.Valid && savedBounds.String != "" {
			var b sky.Bounds
			if err := json.Unmarshal([]byte(savedBounds.String), &b); err != nil {
				return snap, fmt.Errorf("decode saved bounds for %s: %w", w.ID, err)
			}
			w.SavedBounds = &b
		}
		if t, err := time.Parse(time.RFC3339Nano, openedAt); err == nil {
			w.OpenedAt = t
		}
		if w.Focused {
			snap.FocusedID = w.ID
		}
		snap.Windows = append(snap.Windows, w)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	grows, err := s.db.QueryContext(ctx, `
	SELECT id, name, member_ids, active_member_id, collapsed
	FROM groups WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return snap, err
	}
	defer grows.Close()

	for grows.Next() {
		var (
			g       sky.Group
			members string
		)
		if err := grows.Scan(&g.ID, &g.Name, &members, &g.ActiveMemberID,
			&g.Collapsed); err != nil {
			return snap, fmt.Errorf("scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &g.MemberIDs); err != nil {
			return snap, fmt.Errorf("decode members for %s: %w", g.ID, err)
		}
		snap.Groups = append(snap.Groups, g)
	}
	if err := grows.Err(); err != nil {
		return snap, err
	}

	if err := snap.Validate(); err != nil {
		return sky.Snapshot{}, fmt.Errorf("session %q is corrupt: %w", name, err)
	}
	return snap, nil
}

// List returns all stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT s.name, s.created_at, s.updated_at,
	       (SELECT COUNT(*) FROM windows w WHERE w.session_id = s.id),
	       (SELECT COUNT(*) FROM groups g WHERE g.session_id = s.id)
	FROM sessions s ORDER BY s.updated_at DESC, s.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var (
			m                Meta
			created, updated string
		)
		if err := rows.Scan(&m.Name, &created, &updated, &m.Windows, &m.Groups); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes a stored session and its windows and groups.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	return nil
}
