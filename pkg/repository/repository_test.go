package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates repositories backed by a temporary sqlite file
func setupTestDB(t *testing.T, maxQueued int) *Repositories {
	t.Helper()
	cfg := Config{
		DSN:             "file:" + filepath.Join(t.TempDir(), "test.db") + "?_txlock=immediate",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
		MaxQueued:       maxQueued,
	}
	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

func TestRepositories_Integration(t *testing.T) {
	cfg := Config{
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	}

	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, repos.Close())
	}()

	require.NoError(t, repos.Ping(context.Background()))
	require.NotNil(t, repos.Drafts)

	// schema is idempotent
	require.NoError(t, initSchema(context.Background(), repos.DB))

	var tables []string
	err = repos.DB.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' AND name IN ('drafts','post_log') ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts", "post_log"}, tables)
}

func TestNewRepositories_InvalidDSN(t *testing.T) {
	cfg := Config{
		DSN: "file:/nonexistent/dir/that/does/not/exist/db.sqlite?mode=ro",
	}

	_, err := NewRepositories(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRepositories_Close(t *testing.T) {
	cfg := Config{
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	}

	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)

	// close should not error
	assert.NoError(t, repos.Close())

	// second close should not error
	assert.NoError(t, repos.Close())
}

func TestNewRepositories_PragmasOnEveryConnection(t *testing.T) {
	cfg := Config{
		DSN:          "file:" + filepath.Join(t.TempDir(), "pool.db") + "?_txlock=immediate",
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}
	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, repos.Close()) }()

	// hold several connections at once so each one comes from a separate pool slot
	ctx := context.Background()
	conns := make([]*sqlx.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := repos.DB.Connx(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var fk, busy int
		require.NoError(t, conn.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
		require.NoError(t, conn.GetContext(ctx, &busy, "PRAGMA busy_timeout"))
		assert.Equal(t, 1, fk, "conn %d", i)
		assert.Equal(t, 5000, busy, "conn %d", i)
		require.NoError(t, conn.Close())
	}
}

func TestWithPragmas(t *testing.T) {
	const all = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=temp_store(MEMORY)"
	tests := []struct {
		dsn, want string
	}{
		{dsn: ":memory:", want: ":memory:?" + all},
		{dsn: "file:a.db?mode=rwc", want: "file:a.db?mode=rwc&" + all},
		{dsn: "file:a.db?_pragma=busy_timeout(100)", want: "file:a.db?_pragma=busy_timeout(100)&" +
			"_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)&_pragma=temp_store(MEMORY)"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, withPragmas(tt.dsn))
		})
	}
}

func TestCriticalError(t *testing.T) {
	base := errors.New("boom")
	err := &criticalError{err: base}

	assert.Equal(t, "boom", err.Error())
	require.ErrorIs(t, err, base)
	assert.ErrorIs(t, err, &criticalError{}, "any critical error matches the terminate marker")
	assert.NotErrorIs(t, base, &criticalError{})

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, &criticalError{})
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "busy", err: errors.New("SQLITE_BUSY: cannot commit"), want: true},
		{name: "locked", err: errors.New("database is locked (5)"), want: true},
		{name: "table locked", err: errors.New("database table is locked"), want: true},
		{name: "other", err: errors.New("no such table: drafts"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLockError(tt.err))
		})
	}
}
