package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://localhost/carshow\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/carshow", cfg.Database.DSN)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Registration.MaxEntries)
	assert.Equal(t, 5, cfg.Registration.MaxPhotos)
	assert.Equal(t, int64(5<<20), cfg.Registration.MaxPhotoBytes)
	assert.Equal(t, int64(10<<20), cfg.Registration.MaxUploadBytes)
	assert.Equal(t, "vehicle-photos", cfg.Storage.Prefix)
	assert.Equal(t, "voter_id", cfg.Voting.CookieName)
	assert.Equal(t, 30*time.Second, cfg.Publication.Interval)
	assert.False(t, cfg.Publication.SweeperEnabled)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
registration:
  max_entries: 75
publication:
  sweeper_enabled: true
  interval_seconds: 5
admin:
  api_key: secret
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 75, cfg.Registration.MaxEntries)
	assert.True(t, cfg.Publication.SweeperEnabled)
	assert.Equal(t, 5*time.Second, cfg.Publication.Interval)
	assert.Equal(t, "secret", cfg.Admin.APIKey)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load("config.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, "carshow-photos", cfg.Storage.Bucket)
	assert.Equal(t, 2, cfg.WorkerPool.Size)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.Error(t, err)
}
