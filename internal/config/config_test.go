package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/database.db", cfg.Database.Path)
	assert.Equal(t, "data/database.db", cfg.DataSource())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.API.ConflictStatus)
	assert.Equal(t, "users-backups", cfg.Backup.KeyPrefix)
	assert.Equal(t, 7, cfg.Backup.Retain)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("USERS_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("USERS_DATABASE_DRIVER", "postgres")
	t.Setenv("USERS_DATABASE_DSN", "postgres://app@localhost/users?sslmode=disable")
	t.Setenv("USERS_API_CONFLICTSTATUS", "true")
	t.Setenv("USERS_BACKUP_RETAIN", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://app@localhost/users?sslmode=disable", cfg.DataSource())
	assert.True(t, cfg.API.ConflictStatus)
	assert.Equal(t, 3, cfg.Backup.Retain)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server:
  addr: ":8123"
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8123", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`
# local settings
export USERS_LOG_LEVEL="warn"
USERS_BACKUP_BUCKET='snapshots'
`), 0o644))
	t.Setenv("USERS_LOG_LEVEL", "error")
	// registered so the value loaded from .env is removed after the test
	t.Setenv("USERS_BACKUP_BUCKET", "")
	require.NoError(t, os.Unsetenv("USERS_BACKUP_BUCKET"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "snapshots", cfg.Backup.Bucket)
}

func TestValidate(t *testing.T) {
	var cfg Config

	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
	cfg.Database.Path = "users.db"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
	cfg.Database.DSN = "app:secret@tcp(localhost:3306)/users"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, cfg.Database.DSN, cfg.DataSource())

	cfg.Database.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
