package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func seedUser(t *testing.T, d *sql.DB, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := NewUserStore(d).Create(context.Background(), "Test "+string(role), email, role, 1)
	require.NoError(t, err)
	return u
}

// seedItemWithCase registers a stored item and its open case.
func seedItemWithCase(t *testing.T, d *sql.DB, staffID int64) (*domain.FoundItem, *domain.Case) {
	t.Helper()
	ctx := context.Background()
	item, err := NewFoundItemStore(d).Create(ctx, &domain.FoundItem{CreatedBy: staffID, CampusID: 1, Description: "blue umbrella"})
	require.NoError(t, err)
	c, err := NewCaseStore(d).CreateIfAbsent(ctx, item.ID, item.CampusID, time.Now().UTC())
	require.NoError(t, err)
	return item, c
}
