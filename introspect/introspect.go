package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/validator"
)

// DefaultPrefix namespaces dynamic tables away from application tables.
const DefaultPrefix = "customtable_"

// Catalog answers questions about dynamic tables from the database's own
// system catalog. Nothing is cached: every call reflects committed DDL.
type Catalog struct {
	exec   database.Executor
	prefix string
}

// NewCatalog creates a catalog over exec. An empty prefix selects DefaultPrefix.
func NewCatalog(exec database.Executor, prefix string) *Catalog {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Catalog{exec: exec, prefix: prefix}
}

// Prefix returns the namespace prefix of dynamic tables.
func (c *Catalog) Prefix() string {
	return c.prefix
}

// Dialect returns the dialect of the underlying executor.
func (c *Catalog) Dialect() database.Dialect {
	return c.exec.Dialect()
}

// IsDynamicName reports whether name is a well-formed dynamic table name.
// It does not consult the database.
func (c *Catalog) IsDynamicName(name string) bool {
	return strings.HasPrefix(name, c.prefix) &&
		len(name) > len(c.prefix) &&
		validator.IsValidTableName(name)
}

// ListDynamicTables returns the names of all dynamic tables, sorted.
func (c *Catalog) ListDynamicTables(ctx context.Context) ([]string, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var dynamic []string
	for _, t := range tables {
		if strings.HasPrefix(t, c.prefix) {
			dynamic = append(dynamic, t)
		}
	}
	return dynamic, nil
}

// ListTables returns every user table in the database, sorted.
func (c *Catalog) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch c.exec.Dialect() {
	case database.SQLite:
		query = `
	SELECT name AS table_name
	FROM sqlite_master
	WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name;
	`
	default:
		query = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_type='BASE TABLE'
	ORDER BY table_name;
	`
	}

	_, rows, err := c.exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, database.AsString(row["table_name"]))
	}
	sort.Strings(tables)
	return tables, nil
}

// TableExists reports whether a dynamic table called name exists. Names
// outside the dynamic namespace never exist as far as callers are concerned.
func (c *Catalog) TableExists(ctx context.Context, name string) (bool, error) {
	if !c.IsDynamicName(name) {
		return false, nil
	}
	return c.tableExists(ctx, name)
}

// AnyTableExists reports whether any table called name exists, dynamic or not.
func (c *Catalog) AnyTableExists(ctx context.Context, name string) (bool, error) {
	if !validator.IsValidTableName(name) {
		return false, nil
	}
	return c.tableExists(ctx, name)
}

func (c *Catalog) tableExists(ctx context.Context, name string) (bool, error) {
	var query string
	switch c.exec.Dialect() {
	case database.SQLite:
		query = `SELECT COUNT(*) AS n FROM sqlite_master WHERE type = 'table' AND name = ?`
	default:
		query = `SELECT COUNT(*) AS n FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1`
	}

	_, rows, err := c.exec.Query(ctx, query, name)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	n, _ := database.AsInt64(rows[0]["n"])
	return n > 0, nil
}

// Columns returns the live, ordered column list of table.
func (c *Catalog) Columns(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	if err := validator.ValidateTableName(table); err != nil {
		return nil, err
	}

	switch c.exec.Dialect() {
	case database.SQLite:
		return c.sqliteColumns(ctx, table)
	default:
		return c.postgresColumns(ctx, table)
	}
}

func (c *Catalog) postgresColumns(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') AS is_nullable,
		c.column_default,
		c.ordinal_position
	FROM information_schema.columns c
	WHERE c.table_schema = 'public' AND c.table_name = $1
	ORDER BY c.ordinal_position;
	`

	_, rows, err := c.exec.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}

	d := c.exec.Dialect()
	columns := make([]schema.ColumnDescriptor, 0, len(rows))
	for _, row := range rows {
		native := database.AsString(row["data_type"])
		nullable, _ := row["is_nullable"].(bool)
		pos, _ := database.AsInt64(row["ordinal_position"])
		columns = append(columns, schema.ColumnDescriptor{
			Name:       database.AsString(row["column_name"]),
			NativeType: native,
			Type:       d.Classify(native),
			Nullable:   nullable,
			Default:    database.AsStringPtr(row["column_default"]),
			Position:   int(pos),
		})
	}
	return columns, nil
}

// sqliteColumns reads PRAGMA table_info. The table name cannot be bound in a
// PRAGMA statement, so it goes through the table-valued function form where
// it can.
func (c *Catalog) sqliteColumns(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	columnsQuery := `SELECT cid, name, type, "notnull", dflt_value FROM pragma_table_info(?) ORDER BY cid`

	_, rows, err := c.exec.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}

	d := c.exec.Dialect()
	columns := make([]schema.ColumnDescriptor, 0, len(rows))
	for _, row := range rows {
		native := database.AsString(row["type"])
		notNull, _ := database.AsInt64(row["notnull"])
		cid, _ := database.AsInt64(row["cid"])
		columns = append(columns, schema.ColumnDescriptor{
			Name:       database.AsString(row["name"]),
			NativeType: native,
			Type:       d.Classify(native),
			Nullable:   notNull == 0,
			Default:    database.AsStringPtr(row["dflt_value"]),
			Position:   int(cid) + 1,
		})
	}
	return columns, nil
}
