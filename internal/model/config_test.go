package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailcache/internal/model"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, model.DefaultDatabasePath(), cfg.Database.Path)
	assert.Equal(t, model.DefaultPollIntervalSec, cfg.Sync.PollIntervalSec)
	assert.Equal(t, model.DefaultSinceDays, cfg.Sync.SinceDays)
	assert.Equal(t, model.DefaultFetchLimit, cfg.Sync.FetchLimit)
	assert.Empty(t, cfg.Sync.Schedule)
	assert.Empty(t, cfg.Sources)
}

func TestLoadConfigFillsSourceDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  path: /tmp/cache.db
  internal_domain: example.com
sync:
  schedule: "*/10 * * * *"
sources:
  - host: imap.example.com
    username: me@example.com
    tls: true
  - id: archive
    host: imap.example.com
    port: "143"
    username: archive@example.com
    mailbox: Archive
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache.db", cfg.Database.Path)
	assert.Equal(t, "example.com", cfg.Database.InternalDomain)
	assert.Equal(t, "*/10 * * * *", cfg.Sync.Schedule)
	assert.Equal(t, model.DefaultPollIntervalSec, cfg.Sync.PollIntervalSec)

	require.Len(t, cfg.Sources, 2)

	first := cfg.Sources[0]
	assert.Equal(t, "me@example.com", first.ID)
	assert.Equal(t, "email", first.Type)
	assert.Equal(t, model.DefaultIMAPPort, first.Port)
	assert.Equal(t, model.DefaultMailbox, first.Mailbox)
	assert.True(t, first.TLS)
	assert.True(t, first.Enabled)

	second := cfg.Sources[1]
	assert.Equal(t, "archive", second.ID)
	assert.Equal(t, "143", second.Port)
	assert.Equal(t, "Archive", second.Mailbox)
	assert.False(t, second.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MAILCACHE_DATABASE_INTERNAL_DOMAIN", "corp.example")
	t.Setenv("MAILCACHE_SYNC_FETCH_LIMIT", "25")

	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "corp.example", cfg.Database.InternalDomain)
	assert.Equal(t, 25, cfg.Sync.FetchLimit)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o600))

	_, err := model.LoadConfig(path)
	assert.Error(t, err)
}
