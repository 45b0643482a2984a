// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/database"
)

// Open returns an executor over a fresh in-memory SQLite database that is
// closed when the test ends.
func Open(t testing.TB) database.Executor {
	t.Helper()

	exec, err := database.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(exec.Close)
	return exec
}
