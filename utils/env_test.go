package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	assert.False(t, LoadEnv())

	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://u:p@localhost/cms\n"), 0644))
	assert.True(t, LoadEnv())
	assert.Equal(t, "postgres://u:p@localhost/cms", GetDatabaseURL())
}
