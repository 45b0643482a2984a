package introspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/database/dbtest"
	"github.com/ridoystarlord/custompost/schema"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	exec := dbtest.Open(t)
	c := NewCatalog(exec, "")
	assert.Equal(t, DefaultPrefix, c.Prefix())

	for _, stmt := range []string{
		`CREATE TABLE "customtable_b" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "title" VARCHAR(255), "is_active" BOOLEAN NOT NULL DEFAULT 1, "published_on" DATE, "created_at" TIMESTAMP)`,
		`CREATE TABLE "customtable_a" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "body" TEXT)`,
		`CREATE TABLE "users" ("id" INTEGER PRIMARY KEY)`,
	} {
		_, err := exec.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	all, err := c.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customtable_a", "customtable_b", "users"}, all)

	dynamic, err := c.ListDynamicTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customtable_a", "customtable_b"}, dynamic)

	ok, err := c.TableExists(ctx, "customtable_a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TableExists(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.AnyTableExists(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TableExists(ctx, "customtable_zzz")
	require.NoError(t, err)
	assert.False(t, ok)

	cols, err := c.Columns(ctx, "customtable_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "is_active", "published_on", "created_at"}, schema.ColumnNames(cols))
	assert.Equal(t, schema.StorageInteger, cols[0].Type)
	assert.Equal(t, schema.StorageString, cols[1].Type)
	assert.True(t, cols[1].Nullable)
	assert.Equal(t, schema.StorageBoolean, cols[2].Type)
	assert.False(t, cols[2].Nullable)
	require.NotNil(t, cols[2].Default)
	assert.Equal(t, "1", *cols[2].Default)
	assert.Equal(t, schema.StorageDate, cols[3].Type)
	assert.Equal(t, schema.StorageTimestamp, cols[4].Type)
	assert.Equal(t, 1, cols[0].Position)

	_, err = c.Columns(ctx, "bad name")
	assert.Error(t, err)
}

func TestIsDynamicName(t *testing.T) {
	c := NewCatalog(nil, "customtable_")
	assert.True(t, c.IsDynamicName("customtable_news"))
	assert.False(t, c.IsDynamicName("customtable_"))
	assert.False(t, c.IsDynamicName("news"))
	assert.False(t, c.IsDynamicName("customtable_News"))
}
