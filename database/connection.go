package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

var (
	shared     Executor
	sharedOnce sync.Once
	sharedErr  error
)

// Open connects to the database described by driver and url and verifies the
// connection with a ping.
func Open(ctx context.Context, driver, url string) (Executor, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("database url not set (DATABASE_URL or database.url)")
	}

	switch dialect {
	case SQLite:
		return openSQLite(ctx, url)
	default:
		return openPostgres(ctx, url)
	}
}

func openPostgres(ctx context.Context, url string) (Executor, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return NewPgExecutor(pool), nil
}

func openSQLite(ctx context.Context, url string) (Executor, error) {
	db, err := sql.Open("sqlite", url)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	// SQLite has a single writer, and ":memory:" databases exist per
	// connection, so the pool is pinned to one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying pragmas: %w", err)
	}

	return NewSQLExecutor(db, SQLite), nil
}

// GetExecutor returns a process-wide executor, opened on first use. CLI
// commands share it; the HTTP server receives its executor explicitly.
func GetExecutor(ctx context.Context, driver, url string) (Executor, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Open(ctx, driver, url)
	})
	return shared, sharedErr
}

// CloseShared closes the shared executor (should be called on application shutdown)
func CloseShared() {
	if shared != nil {
		shared.Close()
	}
}
