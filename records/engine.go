package records

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/auth"
	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/generator"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/storage"
	"github.com/ridoystarlord/custompost/validator"
)

// Payload is the request data for a create or update. Values holds plain
// fields; Files holds uploads keyed by column name.
type Payload struct {
	Values map[string]any
	Files  map[string]storage.Upload
}

// Engine performs record CRUD on dynamic tables. Every call re-reads the
// table's column list from the catalog; nothing about a table's structure is
// kept between calls.
type Engine struct {
	exec    database.Executor
	catalog *introspect.Catalog
	sink    storage.Sink
	policy  auth.Policy
	now     func() time.Time
	log     zerolog.Logger
}

// NewEngine creates a record engine. A nil policy allows any authenticated caller.
func NewEngine(exec database.Executor, catalog *introspect.Catalog, sink storage.Sink, policy auth.Policy, log zerolog.Logger) *Engine {
	if policy == nil {
		policy = auth.AnyAuthenticated{}
	}
	return &Engine{
		exec:    exec,
		catalog: catalog,
		sink:    sink,
		policy:  policy,
		now:     time.Now,
		log:     log.With().Str("component", "records").Logger(),
	}
}

// WithClock replaces the time source used for created_at and updated_at.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ParseID parses a record id from a path segment. Anything that is not a
// positive integer cannot name a row, so it is reported as NotFound.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.NotFound, "Post not found")
	}
	return id, nil
}

// Create inserts a record and returns its id.
func (e *Engine) Create(ctx context.Context, caller *auth.Caller, table string, p Payload) (int64, error) {
	columns, err := e.open(ctx, caller, table)
	if err != nil {
		return 0, err
	}

	names, values, err := e.extract(ctx, table, columns, p)
	if err != nil {
		return 0, err
	}

	if schema.HasColumn(columns, schema.ColumnIsActive) && !contains(names, schema.ColumnIsActive) {
		names = append(names, schema.ColumnIsActive)
		values = append(values, true)
	}
	now := e.now().UTC()
	for _, ts := range []string{schema.ColumnCreatedAt, schema.ColumnUpdatedAt} {
		if schema.HasColumn(columns, ts) {
			names = append(names, ts)
			values = append(values, now)
		}
	}

	query, err := generator.InsertSQL(e.exec.Dialect(), table, names)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidInput, err, "build insert")
	}

	id, err := e.exec.InsertReturningID(ctx, query, values...)
	if err != nil {
		e.log.Error().Err(err).Str("table", table).Strs("columns", names).Msg("insert failed")
		return 0, apperr.Storage(err, "insert into %s", table)
	}

	e.log.Debug().Str("table", table).Int64("id", id).Msg("record created")
	return id, nil
}

// List returns every row of table, newest first, without updated_at.
func (e *Engine) List(ctx context.Context, caller *auth.Caller, table string) ([]database.Row, error) {
	columns, err := e.open(ctx, caller, table)
	if err != nil {
		return nil, err
	}

	query, err := generator.SelectAllSQL(e.exec.Dialect(), table)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "build select")
	}

	_, rows, err := e.exec.Query(ctx, query)
	if err != nil {
		e.log.Error().Err(err).Str("table", table).Msg("list failed")
		return nil, apperr.Storage(err, "list %s", table)
	}

	out := make([]database.Row, 0, len(rows))
	for _, row := range rows {
		row = present(columns, row)
		delete(row, schema.ColumnUpdatedAt)
		out = append(out, row)
	}
	return out, nil
}

// Get returns the row with the given id.
func (e *Engine) Get(ctx context.Context, caller *auth.Caller, table string, id int64) (database.Row, error) {
	columns, err := e.open(ctx, caller, table)
	if err != nil {
		return nil, err
	}
	row, err := e.find(ctx, table, id)
	if err != nil {
		return nil, err
	}
	return present(columns, row), nil
}

// Update overwrites the columns present in p on the row with the given id.
// Columns absent from p keep their values. There is no concurrency check.
func (e *Engine) Update(ctx context.Context, caller *auth.Caller, table string, id int64, p Payload) error {
	columns, err := e.open(ctx, caller, table)
	if err != nil {
		return err
	}
	if _, err := e.find(ctx, table, id); err != nil {
		return err
	}

	names, values, err := e.extract(ctx, table, columns, p)
	if err != nil {
		return err
	}
	if schema.HasColumn(columns, schema.ColumnUpdatedAt) {
		names = append(names, schema.ColumnUpdatedAt)
		values = append(values, e.now().UTC())
	}
	if len(names) == 0 {
		return nil
	}

	query, err := generator.UpdateSQL(e.exec.Dialect(), table, names)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "build update")
	}

	if _, err := e.exec.Exec(ctx, query, append(values, id)...); err != nil {
		e.log.Error().Err(err).Str("table", table).Int64("id", id).Msg("update failed")
		return apperr.Storage(err, "update %s", table)
	}
	return nil
}

// Delete permanently removes the row with the given id. is_active is not
// consulted; deletion is always hard.
func (e *Engine) Delete(ctx context.Context, caller *auth.Caller, table string, id int64) error {
	if err := e.authorize(ctx, caller, table); err != nil {
		return err
	}
	if _, err := e.find(ctx, table, id); err != nil {
		return err
	}

	query, err := generator.DeleteSQL(e.exec.Dialect(), table)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "build delete")
	}

	n, err := e.exec.Exec(ctx, query, id)
	if err != nil {
		e.log.Error().Err(err).Str("table", table).Int64("id", id).Msg("delete failed")
		return apperr.Storage(err, "delete from %s", table)
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "Post not found")
	}
	return nil
}

// authorize checks the caller, then the table, then the policy.
func (e *Engine) authorize(ctx context.Context, caller *auth.Caller, table string) error {
	if caller == nil {
		return apperr.New(apperr.Unauthorized, "Unauthorized")
	}

	exists, err := e.catalog.TableExists(ctx, table)
	if err != nil {
		return apperr.Storage(err, "check table %s", table)
	}
	if !exists {
		return apperr.New(apperr.NotFound, "Table not found")
	}

	if !e.policy.CanManage(ctx, caller, table) {
		return apperr.New(apperr.Forbidden, "Forbidden")
	}
	return nil
}

// open authorizes the call and reads the live column list.
func (e *Engine) open(ctx context.Context, caller *auth.Caller, table string) ([]schema.ColumnDescriptor, error) {
	if err := e.authorize(ctx, caller, table); err != nil {
		return nil, err
	}
	columns, err := e.catalog.Columns(ctx, table)
	if err != nil {
		return nil, apperr.Storage(err, "read columns of %s", table)
	}
	return columns, nil
}

func (e *Engine) find(ctx context.Context, table string, id int64) (database.Row, error) {
	query, err := generator.SelectByIDSQL(e.exec.Dialect(), table)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "build select")
	}

	_, rows, err := e.exec.Query(ctx, query, id)
	if err != nil {
		e.log.Error().Err(err).Str("table", table).Int64("id", id).Msg("lookup failed")
		return nil, apperr.Storage(err, "select from %s", table)
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.NotFound, "Post not found")
	}
	return rows[0], nil
}

type entry struct {
	name   string
	value  any
	upload *storage.Upload
}

// extract walks the live column list and picks the matching payload entries.
// Uploaded files win over plain values for the same column. The id and the
// timestamps are never taken from the payload. Files are stored only once all
// plain values have passed coercion.
func (e *Engine) extract(ctx context.Context, table string, columns []schema.ColumnDescriptor, p Payload) ([]string, []any, error) {
	var entries []entry
	result := &validator.ValidationResult{}

	for _, col := range columns {
		switch col.Name {
		case schema.ColumnID, schema.ColumnCreatedAt, schema.ColumnUpdatedAt:
			continue
		}

		if up, ok := p.Files[col.Name]; ok && e.sink != nil {
			entries = append(entries, entry{name: col.Name, upload: &up})
			continue
		}

		raw, ok := p.Values[col.Name]
		if !ok {
			continue
		}
		v, err := Coerce(col, raw)
		if err != nil {
			result.AddError(col.Name, "%s", err.Error())
			continue
		}
		entries = append(entries, entry{name: col.Name, value: v})
	}

	if !result.Valid() {
		return nil, nil, apperr.New(apperr.ValidationFailed, "The given data was invalid.").
			WithFields(result.FieldMap())
	}

	names := make([]string, 0, len(entries))
	values := make([]any, 0, len(entries))
	for _, en := range entries {
		if en.upload != nil {
			rel, err := e.sink.Save(ctx, table, en.name, *en.upload)
			if err != nil {
				e.log.Error().Err(err).Str("table", table).Str("column", en.name).Msg("file upload failed")
				return nil, nil, apperr.Storage(err, "store upload for %s", en.name)
			}
			en.value = rel
		}
		names = append(names, en.name)
		values = append(values, en.value)
	}
	return names, values, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
