package categories

import (
	"context"
	"fmt"
	"time"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/schema"
)

// TableName is the table holding post categories.
const TableName = "post_categories"

// Category is a post category. A category may point at the dynamic table that
// stores its posts.
type Category struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"category_name"`
	Slug                *string `json:"category_slug,omitempty"`
	Description         *string `json:"category_desc,omitempty"`
	Parent              *int64  `json:"category_parent,omitempty"`
	CustomPostTableName *string `json:"custompost_table_name,omitempty"`
}

// Store reads and writes post_categories.
type Store struct {
	exec database.Executor
}

// NewStore creates a category store.
func NewStore(exec database.Executor) *Store {
	return &Store{exec: exec}
}

// EnsureTable creates post_categories if it does not exist yet.
func (s *Store) EnsureTable(ctx context.Context) error {
	d := s.exec.Dialect()
	stmt := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id %s %s,
		category_name VARCHAR(255) NOT NULL,
		category_slug VARCHAR(255),
		category_desc TEXT,
		category_parent INTEGER,
		custompost_table_name VARCHAR(255),
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);
	`, TableName, d.ColumnType(schema.StorageID), d.PrimaryKeyClause())

	if _, err := s.exec.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create %s table: %w", TableName, err)
	}
	return nil
}

// Create inserts a category and returns its id.
func (s *Store) Create(ctx context.Context, name, slug string) (int64, error) {
	d := s.exec.Dialect()
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (category_name, category_slug, created_at, updated_at)
		VALUES (%s, %s, %s, %s) RETURNING id`,
		TableName, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4))

	id, err := s.exec.InsertReturningID(ctx, query, name, slug, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

// Get returns the category with the given id, or nil if there is none.
func (s *Store) Get(ctx context.Context, id int64) (*Category, error) {
	d := s.exec.Dialect()
	query := fmt.Sprintf(`SELECT id, category_name, category_slug, category_desc, category_parent, custompost_table_name
		FROM %s WHERE id = %s`, TableName, d.Placeholder(1))

	_, rows, err := s.exec.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query category %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	cat := &Category{
		Name:                database.AsString(row["category_name"]),
		Slug:                database.AsStringPtr(row["category_slug"]),
		Description:         database.AsStringPtr(row["category_desc"]),
		CustomPostTableName: database.AsStringPtr(row["custompost_table_name"]),
	}
	cat.ID, _ = database.AsInt64(row["id"])
	if p, ok := database.AsInt64(row["category_parent"]); ok {
		cat.Parent = &p
	}
	return cat, nil
}

// LinkTable records table as the dynamic table storing the category's posts.
// It reports false when no category with that id exists.
func (s *Store) LinkTable(ctx context.Context, id int64, table string) (bool, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	d := s.exec.Dialect()
	query := fmt.Sprintf(`UPDATE %s SET custompost_table_name = %s, updated_at = %s WHERE id = %s`,
		TableName, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3))

	if _, err := s.exec.Exec(ctx, query, table, time.Now().UTC(), id); err != nil {
		return false, fmt.Errorf("update category %d: %w", id, err)
	}
	return true, nil
}
