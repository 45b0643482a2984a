package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/schema"
)

func TestParseDialect(t *testing.T) {
	for _, in := range []string{"postgres", "PostgreSQL", "pgx", ""} {
		d, err := ParseDialect(in)
		require.NoError(t, err)
		assert.Equal(t, Postgres, d)
	}
	d, err := ParseDialect("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestDialectRendering(t *testing.T) {
	assert.Equal(t, `"title"`, Postgres.QuoteIdent("title"))
	assert.Equal(t, `"a""b"`, SQLite.QuoteIdent(`a"b`))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(3))

	assert.Equal(t, "BIGSERIAL", Postgres.ColumnType(schema.StorageID))
	assert.Equal(t, "INTEGER", SQLite.ColumnType(schema.StorageID))
	assert.Equal(t, "TEXT", Postgres.ColumnType(schema.StorageLongText))
	assert.Equal(t, "TIMESTAMP(0) WITHOUT TIME ZONE", Postgres.ColumnType(schema.StorageTimestamp))
	assert.Equal(t, "FALSE", Postgres.BoolLiteral(false))
	assert.Equal(t, "1", SQLite.BoolLiteral(true))
}

func TestClassify(t *testing.T) {
	cases := map[string]schema.StorageType{
		"character varying":           schema.StorageString,
		"VARCHAR(255)":                schema.StorageString,
		"integer":                     schema.StorageInteger,
		"bigint":                      schema.StorageInteger,
		"text":                        schema.StorageText,
		"boolean":                     schema.StorageBoolean,
		"date":                        schema.StorageDate,
		"timestamp without time zone": schema.StorageTimestamp,
		"TIMESTAMP":                   schema.StorageTimestamp,
		"jsonb":                       schema.StorageOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, Postgres.Classify(in), "native %q", in)
	}
}

func TestIsDuplicateTable(t *testing.T) {
	assert.False(t, IsDuplicateTable(nil))
	assert.True(t, IsDuplicateTable(&pgconn.PgError{Code: "42P07"}))
	assert.False(t, IsDuplicateTable(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsDuplicateTable(errors.New("SQL logic error: table \"x\" already exists (1)")))
}

func TestSQLiteExecutor(t *testing.T) {
	ctx := context.Background()
	exec, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer exec.Close()

	assert.Equal(t, SQLite, exec.Dialect())
	require.NoError(t, exec.Ping(ctx))

	_, err = exec.Exec(ctx, `CREATE TABLE "t" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" VARCHAR(255))`)
	require.NoError(t, err)

	id, err := exec.InsertReturningID(ctx, `INSERT INTO "t" ("name") VALUES (?) RETURNING "id"`, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	cols, rows, err := exec.Query(ctx, `SELECT * FROM "t"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)
	require.Len(t, rows, 1)
	assert.Equal(t, "first", rows[0]["name"])

	n, err := exec.Exec(ctx, `DELETE FROM "t" WHERE "id" = ?`, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "")
	assert.Error(t, err)
}

func TestValues(t *testing.T) {
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, "abc", AsString([]byte("abc")))
	assert.Equal(t, "12", AsString(12))
	assert.Nil(t, AsStringPtr(nil))
	assert.Equal(t, "x", *AsStringPtr("x"))

	n, ok := AsInt64("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	_, ok = AsInt64(true)
	assert.False(t, ok)
}
