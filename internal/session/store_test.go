// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/session/store_test.go

package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/framegrace/skylight/sky"
)

func newTestStores(t *testing.T) (*sky.Store, *Store) {
	t.Helper()

	n := 0
	win := sky.NewStore(
		sky.WithStrictInvariants(),
		sky.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	t.Cleanup(win.Shutdown)

	sessions, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	return win, sessions
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	win, sessions := newTestStores(t)

	a, err := win.Open("clock", map[string]any{"format": "15:04"})
	require.NoError(t, err)
	b, err := win.Open("shellrun", nil)
	require.NoError(t, err)
	c, err := win.Open("codeview", nil)
	require.NoError(t, err)

	require.NoError(t, win.SetBounds(a, sky.Bounds{X: 2, Y: 3, Width: 40, Height: 12}))
	require.NoError(t, win.Minimize(b))
	_, err = win.CreateGroup("dev", []string{a, c})
	require.NoError(t, err)

	snap := win.Snapshot()
	require.NoError(t, sessions.Save(ctx, "main", snap))

	loaded, err := sessions.Load(ctx, "main")
	require.NoError(t, err)

	require.Equal(t, snap.FocusedID, loaded.FocusedID)
	require.Len(t, loaded.Windows, len(snap.Windows))
	for i, w := range snap.Windows {
		got := loaded.Windows[i]
		require.True(t, got.OpenedAt.Equal(w.OpenedAt), "opened_at drift for %s", w.ID)
		got.OpenedAt = w.OpenedAt
		require.Equal(t, w, got)
	}
	require.Equal(t, snap.Groups, loaded.Groups)
}

func TestLoadMissingSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, sessions := newTestStores(t)

	_, err := sessions.Load(ctx, "ghost")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSaveReplacesPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	_, err := win.Open("clock", nil)
	require.NoError(t, err)
	id2, err := win.Open("shellrun", nil)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, "main", win.Snapshot()))

	require.NoError(t, win.Close(id2))
	require.NoError(t, sessions.Save(ctx, "main", win.Snapshot()))

	loaded, err := sessions.Load(ctx, "main")
	require.NoError(t, err)
	require.Len(t, loaded.Windows, 1)

	var count int
	require.NoError(t, sessions.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM windows").Scan(&count))
	require.Equal(t, 1, count, "replaced windows should not linger")
}

func TestListCountsSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	_, err := win.Open("clock", nil)
	require.NoError(t, err)
	_, err = win.Open("shellrun", nil)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, "two-windows", win.Snapshot()))
	require.NoError(t, sessions.Save(ctx, "copy", win.Snapshot()))

	metas, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	byName := make(map[string]Meta)
	for _, m := range metas {
		byName[m.Name] = m
	}
	require.Equal(t, 2, byName["two-windows"].Windows)
	require.Equal(t, 0, byName["two-windows"].Groups)
	require.False(t, byName["copy"].UpdatedAt.IsZero())
}

func TestDeleteCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	_, err := win.Open("clock", nil)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, "main", win.Snapshot()))

	require.NoError(t, sessions.Delete(ctx, "main"))
	require.ErrorIs(t, sessions.Delete(ctx, "main"), ErrNoSession)

	_, err = sessions.Load(ctx, "main")
	require.ErrorIs(t, err, ErrNoSession)

	var count int
	require.NoError(t, sessions.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM windows").Scan(&count))
	require.Equal(t, 0, count, "cascade should remove window rows")
}

func TestLoadRejectsCorruptSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	id, err := win.Open("clock", nil)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, "main", win.Snapshot()))

	// Forge a second focused window directly in the database.
	_, err = sessions.db.ExecContext(ctx, `
	INSERT INTO windows(session_id, id, component_key, props, z_order, focused, opened_at)
	SELECT session_id, 'intruder', component_key, props, z_order + 1, 1, opened_at
	FROM windows WHERE id = ?`, id)
	require.NoError(t, err)

	_, err = sessions.Load(ctx, "main")
	require.Error(t, err)
	require.True(t, sky.IsInvariant(err), "corruption should surface as an invariant error, got %v", err)
}

func TestAutosaverCoalescesBursts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	saver := NewAutosaver(win, sessions, "auto", 30*time.Millisecond)
	saver.Start()
	defer saver.Stop()

	for i := 0; i < 5; i++ {
		_, err := win.Open("clock", nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		snap, err := sessions.Load(ctx, "auto")
		return err == nil && len(snap.Windows) == 5
	}, 2*time.Second, 10*time.Millisecond, "burst should be saved after the debounce")
}

func TestAutosaverFlushesOnStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	win, sessions := newTestStores(t)

	// Debounce far beyond the test horizon: only the Stop flush can save.
	saver := NewAutosaver(win, sessions, "auto", time.Hour)
	saver.Start()

	_, err := win.Open("clock", nil)
	require.NoError(t, err)
	saver.Stop()

	snap, err := sessions.Load(ctx, "auto")
	require.NoError(t, err)
	require.Len(t, snap.Windows, 1)
}
