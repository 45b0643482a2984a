package provisioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/generator"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/validator"
)

// Policy decides what happens to field descriptors that cannot be used.
type Policy int

const (
	// Lenient logs unusable descriptors and provisions the rest.
	Lenient Policy = iota
	// Strict rejects the whole request if any descriptor is unusable.
	Strict
)

// ParsePolicy maps the provisioning.strict setting onto a Policy.
func ParsePolicy(strict bool) Policy {
	if strict {
		return Strict
	}
	return Lenient
}

// CategoryLinker records which dynamic table stores a category's posts.
type CategoryLinker interface {
	LinkTable(ctx context.Context, categoryID int64, table string) (bool, error)
}

// Request asks for a new dynamic table.
type Request struct {
	TableName string
	Fields    []schema.FieldDescriptor
	// Malformed holds entries the payload decoder could not turn into
	// descriptors. They are subject to the same policy as unusable names.
	Malformed  []schema.SkippedField
	CategoryID *int64
}

// Result describes a provisioned table.
type Result struct {
	TableName      string                `json:"table_name"`
	Columns        []string              `json:"columns"`
	Skipped        []schema.SkippedField `json:"skipped,omitempty"`
	CategoryLinked bool                  `json:"category_linked"`
	Statement      string                `json:"-"`
	Definition     []schema.Column       `json:"-"`
}

// Provisioner creates dynamic tables.
type Provisioner struct {
	exec       database.Executor
	catalog    *introspect.Catalog
	categories CategoryLinker
	dialect    database.Dialect
	prefix     string
	policy     Policy
	log        zerolog.Logger
}

// New creates a provisioner. categories may be nil, in which case category
// linkage is not attempted.
func New(exec database.Executor, catalog *introspect.Catalog, categories CategoryLinker, policy Policy, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		exec:       exec,
		catalog:    catalog,
		categories: categories,
		dialect:    exec.Dialect(),
		prefix:     catalog.Prefix(),
		policy:     policy,
		log:        log.With().Str("component", "provisioner").Logger(),
	}
}

// NewPlanner creates a provisioner that can only Preview. It needs no
// database connection.
func NewPlanner(dialect database.Dialect, prefix string, policy Policy, log zerolog.Logger) *Provisioner {
	if prefix == "" {
		prefix = introspect.DefaultPrefix
	}
	return &Provisioner{
		dialect: dialect,
		prefix:  prefix,
		policy:  policy,
		log:     log.With().Str("component", "provisioner").Logger(),
	}
}

// PhysicalName derives the physical table name from a logical name.
func PhysicalName(prefix, logical string) (string, error) {
	normalized := validator.NormalizeIdentifier(logical)
	if normalized == "" {
		return "", apperr.New(apperr.InvalidInput, "table_name %q has no usable characters", logical).
			WithFields(map[string]string{"table_name": "must contain letters or digits"})
	}

	name := prefix + normalized
	if err := validator.ValidateTableName(name); err != nil {
		return "", apperr.New(apperr.InvalidInput, "invalid table_name: %v", err).
			WithFields(map[string]string{"table_name": err.Error()})
	}
	return name, nil
}

// Preview returns the CREATE TABLE statement a request would run, without
// touching the database.
func (p *Provisioner) Preview(req Request) (*Result, error) {
	table, plan, err := p.prepare(req)
	if err != nil {
		return nil, err
	}

	stmt, err := generator.CreateTableSQL(p.dialect, table, plan.Columns)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "generate CREATE TABLE")
	}
	return &Result{
		TableName:  table,
		Columns:    plan.ColumnNames(),
		Skipped:    append(append([]schema.SkippedField{}, plan.Skipped...), plan.Reserved...),
		Statement:  stmt,
		Definition: plan.Columns,
	}, nil
}

// CreateTable provisions a new dynamic table. It fails with Conflict if the
// physical table already exists; nothing about the existing table changes.
func (p *Provisioner) CreateTable(ctx context.Context, req Request) (*Result, error) {
	if p.exec == nil {
		return nil, fmt.Errorf("provisioner has no database connection")
	}
	res, err := p.Preview(req)
	if err != nil {
		return nil, err
	}

	exists, err := p.catalog.AnyTableExists(ctx, res.TableName)
	if err != nil {
		return nil, apperr.Storage(err, "check table %s", res.TableName)
	}
	if exists {
		return nil, apperr.New(apperr.Conflict, "Table '%s' already exists", res.TableName)
	}

	if _, err := p.exec.Exec(ctx, res.Statement); err != nil {
		// Two concurrent requests for the same name both pass the check
		// above; the database rejects the second CREATE TABLE.
		if database.IsDuplicateTable(err) {
			return nil, apperr.Wrap(apperr.Conflict, err, "Table '%s' already exists", res.TableName)
		}
		p.log.Error().Err(err).Str("table", res.TableName).Msg("create table failed")
		return nil, apperr.Storage(err, "create table %s", res.TableName)
	}

	p.log.Info().
		Str("table", res.TableName).
		Strs("columns", res.Columns).
		Int("skipped", len(res.Skipped)).
		Msg("table created")

	if req.CategoryID != nil && p.categories != nil {
		res.CategoryLinked = p.linkCategory(ctx, *req.CategoryID, res.TableName)
	}

	return res, nil
}

// linkCategory is a best-effort secondary write: failures are logged and
// never fail the provisioning request.
func (p *Provisioner) linkCategory(ctx context.Context, categoryID int64, table string) bool {
	linked, err := p.categories.LinkTable(ctx, categoryID, table)
	if err != nil {
		p.log.Warn().Err(err).
			Int64("category_id", categoryID).
			Str("table", table).
			Msg("failed to update post_categories.custompost_table_name")
		return false
	}
	if !linked {
		p.log.Debug().Int64("category_id", categoryID).Msg("category not found, table not linked")
	}
	return linked
}

func (p *Provisioner) prepare(req Request) (string, *Plan, error) {
	if strings.TrimSpace(req.TableName) == "" {
		return "", nil, apperr.New(apperr.InvalidInput, "Invalid input").
			WithFields(map[string]string{"table_name": "is required"})
	}
	if len(req.Fields) == 0 && len(req.Malformed) == 0 {
		return "", nil, apperr.New(apperr.InvalidInput, "Invalid input").
			WithFields(map[string]string{"fields": "must be a non-empty list"})
	}

	table, err := PhysicalName(p.prefix, req.TableName)
	if err != nil {
		return "", nil, err
	}

	plan := BuildPlan(p.dialect, req.Fields)
	plan.Skipped = append(append([]schema.SkippedField{}, req.Malformed...), plan.Skipped...)

	if len(plan.Duplicates) > 0 {
		fields := make(map[string]string, len(plan.Duplicates))
		for _, name := range plan.Duplicates {
			fields["fields."+name] = "declared more than once"
		}
		return "", nil, apperr.New(apperr.InvalidInput, "duplicate field names: %s", strings.Join(plan.Duplicates, ", ")).
			WithFields(fields)
	}

	for _, r := range plan.Reserved {
		p.log.Warn().Str("table", table).Str("key", r.Key).Msg("skipping reserved field")
	}

	if len(plan.Skipped) > 0 {
		if p.policy == Strict {
			result := &validator.ValidationResult{}
			for _, s := range plan.Skipped {
				result.AddError("fields."+s.Key, "%s", s.Reason)
			}
			return "", nil, apperr.New(apperr.ValidationFailed, "invalid field descriptors: %s", result.Summary()).
				WithFields(result.FieldMap())
		}
		for _, s := range plan.Skipped {
			p.log.Warn().
				Str("table", table).
				Str("key", s.Key).
				Str("raw", s.Raw).
				Str("reason", s.Reason).
				Msg("skipping field descriptor")
		}
	}

	return table, plan, nil
}

// Describe renders a one-line summary of a result for CLI output.
func (r *Result) Describe() string {
	return fmt.Sprintf("%s (%s)", r.TableName, strings.Join(r.Columns, ", "))
}
