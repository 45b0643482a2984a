package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/introspect"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/cms", cfg.Database.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, introspect.DefaultPrefix, cfg.Provisioning.Prefix)
	assert.False(t, cfg.Provisioning.Strict)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custompost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  url: "file:cms.db"
server:
  port: "7000"
  shutdown_timeout: 3s
storage:
  max_upload_mb: 5
provisioning:
  strict: true
auth:
  tokens:
    - "abc:alice"
    - "def:bob"
`), 0644))
	t.Setenv("CUSTOMPOST_SERVER_PORT", "9999")

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:cms.db", cfg.Database.URL)
	assert.Equal(t, "9999", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.True(t, cfg.Provisioning.Strict)
	assert.Equal(t, []string{"abc:alice", "def:bob"}, cfg.Auth.Tokens)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	err := Init(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
