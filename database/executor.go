package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Executor runs statements against one of the supported databases. Table and
// column names reach it already validated and quoted; values are always bound.
type Executor interface {
	Dialect() Dialect
	Ping(ctx context.Context) error
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) ([]string, []Row, error)
	// InsertReturningID runs an INSERT ... RETURNING "id" statement.
	InsertReturningID(ctx context.Context, query string, args ...any) (int64, error)
	Close()
}

// PgExecutor runs statements on a pgx connection pool.
type PgExecutor struct {
	pool *pgxpool.Pool
}

// NewPgExecutor wraps an existing pool.
func NewPgExecutor(pool *pgxpool.Pool) *PgExecutor {
	return &PgExecutor{pool: pool}
}

func (e *PgExecutor) Dialect() Dialect { return Postgres }

func (e *PgExecutor) Ping(ctx context.Context) error {
	return e.pool.Ping(ctx)
}

func (e *PgExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (e *PgExecutor) Query(ctx context.Context, query string, args ...any) ([]string, []Row, error) {
	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = fd.Name
	}

	var data []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating rows: %w", err)
	}
	return columns, data, nil
}

func (e *PgExecutor) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := e.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *PgExecutor) Close() {
	e.pool.Close()
}

// SQLExecutor runs statements on a database/sql handle. It backs the SQLite
// dialect.
type SQLExecutor struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLExecutor wraps an open database/sql handle.
func NewSQLExecutor(db *sql.DB, dialect Dialect) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect}
}

func (e *SQLExecutor) Dialect() Dialect { return e.dialect }

func (e *SQLExecutor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

func (e *SQLExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (e *SQLExecutor) Query(ctx context.Context, query string, args ...any) ([]string, []Row, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("reading columns: %w", err)
	}

	var data []Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating rows: %w", err)
	}
	return columns, data, nil
}

func (e *SQLExecutor) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *SQLExecutor) Close() {
	e.db.Close()
}

// IsDuplicateTable reports whether err is the database rejecting a CREATE
// TABLE because the relation already exists.
func IsDuplicateTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P07"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "table") && strings.Contains(msg, "already exists")
}
