package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/validator"
)

// CreateTableSQL renders the CREATE TABLE statement for a dynamic table.
func CreateTableSQL(d database.Dialect, table string, columns []schema.Column) (string, error) {
	if err := validator.ValidateTableName(table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", table)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if err := validator.ValidateColumnName(col.Name); err != nil {
			return "", err
		}

		def := d.QuoteIdent(col.Name) + " " + d.ColumnType(col.Type)
		if col.Primary {
			def += " " + d.PrimaryKeyClause()
		}
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.Default != nil {
			def += " DEFAULT " + *col.Default
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s);", d.QuoteIdent(table), strings.Join(defs, ", ")), nil
}

// InsertSQL renders an INSERT of the given columns that returns the new id.
func InsertSQL(d database.Dialect, table string, columns []string) (string, error) {
	if err := validateNames(table, columns); err != nil {
		return "", err
	}

	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			d.QuoteIdent(table), d.QuoteIdent(schema.ColumnID)), nil
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.QuoteIdent(col)
		marks[i] = d.Placeholder(i + 1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		d.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(marks, ", "),
		d.QuoteIdent(schema.ColumnID),
	), nil
}

// SelectAllSQL renders the newest-first listing query.
func SelectAllSQL(d database.Dialect, table string) (string, error) {
	if err := validator.ValidateTableName(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC",
		d.QuoteIdent(table), d.QuoteIdent(schema.ColumnID)), nil
}

// SelectByIDSQL renders a single-row lookup by id.
func SelectByIDSQL(d database.Dialect, table string) (string, error) {
	if err := validator.ValidateTableName(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		d.QuoteIdent(table), d.QuoteIdent(schema.ColumnID), d.Placeholder(1)), nil
}

// UpdateSQL renders an UPDATE of the given columns; the id is bound last.
func UpdateSQL(d database.Dialect, table string, columns []string) (string, error) {
	if err := validateNames(table, columns); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("no data to update")
	}

	setClause := make([]string, len(columns))
	for i, col := range columns {
		setClause[i] = fmt.Sprintf("%s = %s", d.QuoteIdent(col), d.Placeholder(i+1))
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.QuoteIdent(table),
		strings.Join(setClause, ", "),
		d.QuoteIdent(schema.ColumnID),
		d.Placeholder(len(columns)+1),
	), nil
}

// DeleteSQL renders a hard delete by id.
func DeleteSQL(d database.Dialect, table string) (string, error) {
	if err := validator.ValidateTableName(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		d.QuoteIdent(table), d.QuoteIdent(schema.ColumnID), d.Placeholder(1)), nil
}

func validateNames(table string, columns []string) error {
	if err := validator.ValidateTableName(table); err != nil {
		return err
	}
	for _, col := range columns {
		if err := validator.ValidateColumnName(col); err != nil {
			return err
		}
	}
	return nil
}

// WriteDDLFile saves a CREATE TABLE statement into a timestamped .sql file in dir
func WriteDDLFile(dir, table, stmt string) (string, error) {
	// Ensure output folder exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s folder: %v", dir, err)
	}

	timestamp := time.Now().Format("20060102150405")
	filename := filepath.Join(dir, fmt.Sprintf("%s_create_%s.sql", timestamp, table))

	content := "-- Table: " + table + "\n"
	content += "-- Generated: " + timestamp + "\n\n"
	content += stmt + "\n"

	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing ddl file: %v", err)
	}

	return filename, nil
}
