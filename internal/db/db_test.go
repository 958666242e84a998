package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "lostfound.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func TestOpenAppliesMigrations(t *testing.T) {
	d := openTemp(t)

	for _, table := range []string{
		"users", "found_items", "lost_reports", "cases", "student_claims",
		"verification_requests", "verification_decisions", "return_receipts", "notifications",
	} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	v, dirty, err := Version(d)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openTemp(t)
	assert.NoError(t, Migrate(d))
	assert.NoError(t, Migrate(d))
}

func TestMigrateDown(t *testing.T) {
	d := openTemp(t)
	require.NoError(t, MigrateDown(d, 1))

	var n int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cases'").Scan(&n))
	assert.Equal(t, 0, n)

	require.NoError(t, Migrate(d))
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cases'").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	d := openTemp(t)
	_, err := d.Exec(`INSERT INTO cases (found_item_id, campus_id, opened_at) VALUES (999, 1, datetime('now'))`)
	assert.Error(t, err)
}

func TestRunInTx(t *testing.T) {
	d := openTemp(t)
	runner := NewTxRunner(d)
	ctx := context.Background()

	insertUser := func(ctx context.Context, email string) error {
		_, err := Conn(ctx, d).ExecContext(ctx,
			`INSERT INTO users (full_name, email, role) VALUES ('u', ?, 'Student')`, email)
		return err
	}
	countUsers := func() int {
		var n int
		require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			_, ok := TxFrom(ctx)
			assert.True(t, ok)
			return insertUser(ctx, "a@example.edu")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countUsers())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, insertUser(ctx, "b@example.edu"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countUsers())
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			outer, _ := TxFrom(ctx)
			require.NoError(t, runner.RunInTx(ctx, func(ctx context.Context) error {
				inner, _ := TxFrom(ctx)
				assert.Same(t, outer, inner)
				return insertUser(ctx, "c@example.edu")
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countUsers())
	})
}

func TestConnWithoutTx(t *testing.T) {
	d := openTemp(t)
	assert.Same(t, d, Conn(context.Background(), d))
}

func TestConnectLeavesSchemaAlone(t *testing.T) {
	d, err := Connect(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	v, dirty, err := Version(d)
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)
}
