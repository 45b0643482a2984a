package database

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/custompost/schema"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx", "":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (use postgres or sqlite)", driver)
	}
}

// QuoteIdent quotes an identifier. Callers validate identifiers before
// quoting; the doubling of embedded quotes only matters if they did not.
func (d Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// ColumnType renders a storage type as a SQL column type.
func (d Dialect) ColumnType(t schema.StorageType) string {
	switch t {
	case schema.StorageID:
		if d == Postgres {
			return "BIGSERIAL"
		}
		return "INTEGER"
	case schema.StorageString:
		return "VARCHAR(255)"
	case schema.StorageInteger:
		return "INTEGER"
	case schema.StorageText, schema.StorageLongText:
		return "TEXT"
	case schema.StorageBoolean:
		return "BOOLEAN"
	case schema.StorageDate:
		return "DATE"
	case schema.StorageTimestamp:
		if d == Postgres {
			return "TIMESTAMP(0) WITHOUT TIME ZONE"
		}
		return "TIMESTAMP"
	default:
		return "VARCHAR(255)"
	}
}

// PrimaryKeyClause is appended to the id column definition.
func (d Dialect) PrimaryKeyClause() string {
	if d == Postgres {
		return "PRIMARY KEY"
	}
	return "PRIMARY KEY AUTOINCREMENT"
}

// BoolLiteral renders a boolean default.
func (d Dialect) BoolLiteral(v bool) string {
	switch {
	case d == Postgres && v:
		return "TRUE"
	case d == Postgres:
		return "FALSE"
	case v:
		return "1"
	default:
		return "0"
	}
}

// Classify maps a native column type, as reported by the catalog, onto a
// storage type.
func (d Dialect) Classify(native string) schema.StorageType {
	t := strings.ToLower(strings.TrimSpace(native))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case t == "boolean" || t == "bool":
		return schema.StorageBoolean
	case t == "integer" || t == "int" || t == "bigint" || t == "smallint" ||
		t == "tinyint" || t == "int2" || t == "int4" || t == "int8" ||
		t == "serial" || t == "bigserial" || t == "mediumint":
		return schema.StorageInteger
	case t == "text" || t == "longtext" || t == "mediumtext" || t == "clob":
		return schema.StorageText
	case t == "character varying" || t == "varchar" || t == "character" ||
		t == "char" || t == "nvarchar" || t == "string":
		return schema.StorageString
	case t == "date":
		return schema.StorageDate
	case strings.HasPrefix(t, "timestamp") || t == "datetime":
		return schema.StorageTimestamp
	default:
		return schema.StorageOther
	}
}
