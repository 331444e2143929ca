package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/store"
	"github.com/nhle/mailcache/tests/testutil"
)

func TestNewSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "email_cache.db")

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, []model.EmailRecord{testutil.Email("1", "a@x.com", "Hi", "d")})
	require.NoError(t, err)
	_, err = s.LogSync(ctx, 1, 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCount)
	assert.NotNil(t, stats.LastSync)
}

func TestNewSQLiteStore_Layout(t *testing.T) {
	s := testutil.NewTestStore(t)

	var tables []string
	err := s.DB().Select(&tables, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"emails", "sync_log"}, tables)

	var indexes []string
	err = s.DB().Select(&indexes, `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"idx_date", "idx_folder", "idx_sender", "idx_subject"}, indexes)
}

func TestNewSQLiteStore_Unavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := store.NewSQLiteStore(filepath.Join(blocker, "email_cache.db"))
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}
