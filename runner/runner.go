package runner

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/diff"
	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/schema"
)

// Status of one table after a run.
type Status string

const (
	Created Status = "created"
	Planned Status = "planned"
	Exists  Status = "exists"
	Failed  Status = "failed"
)

// Provisioner is the part of provisioner.Provisioner a run needs.
type Provisioner interface {
	Preview(req provisioner.Request) (*provisioner.Result, error)
	CreateTable(ctx context.Context, req provisioner.Request) (*provisioner.Result, error)
}

// Catalog is the part of introspect.Catalog a status check needs.
type Catalog interface {
	TableExists(ctx context.Context, name string) (bool, error)
	Columns(ctx context.Context, table string) ([]schema.ColumnDescriptor, error)
}

// Options controls a run.
type Options struct {
	// DryRun previews every table instead of creating it.
	DryRun bool
	// StopOnError aborts the run at the first failed table.
	StopOnError bool
}

// Outcome is what happened to one declared table.
type Outcome struct {
	Name   string
	Status Status
	Result *provisioner.Result
	Err    error
}

// Request converts a YAML table definition into a provisioning request.
func Request(def loader.TableDefinition) provisioner.Request {
	return provisioner.Request{
		TableName:  def.Name,
		Fields:     def.Fields,
		CategoryID: def.CategoryID,
	}
}

// Run provisions the declared tables in order. A table that already exists
// is reported as Exists and is not an error for the run.
func Run(ctx context.Context, p Provisioner, defs []loader.TableDefinition, opts Options) []Outcome {
	outcomes := make([]Outcome, 0, len(defs))
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{Name: def.Name, Status: Failed, Err: err})
			break
		}

		out := Outcome{Name: def.Name}
		var err error
		if opts.DryRun {
			out.Result, err = p.Preview(Request(def))
			out.Status = Planned
		} else {
			out.Result, err = p.CreateTable(ctx, Request(def))
			out.Status = Created
		}

		switch {
		case err == nil:
		case apperr.Is(err, apperr.Conflict):
			out.Status, out.Err = Exists, err
		default:
			out.Status, out.Err = Failed, err
		}
		outcomes = append(outcomes, out)

		if out.Status == Failed && opts.StopOnError {
			break
		}
	}
	return outcomes
}

// Failures counts failed outcomes.
func Failures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == Failed {
			n++
		}
	}
	return n
}

// Drift compares the declared tables with the live catalog.
func Drift(ctx context.Context, p Provisioner, c Catalog, defs []loader.TableDefinition) ([]diff.Operation, error) {
	declared := make([]diff.DeclaredTable, 0, len(defs))
	live := make(map[string][]schema.ColumnDescriptor, len(defs))

	for _, def := range defs {
		res, err := p.Preview(Request(def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		declared = append(declared, diff.DeclaredTable{Name: res.TableName, Columns: res.Definition})

		exists, err := c.TableExists(ctx, res.TableName)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", res.TableName, err)
		}
		if !exists {
			continue
		}
		cols, err := c.Columns(ctx, res.TableName)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", res.TableName, err)
		}
		live[res.TableName] = cols
	}

	return diff.DiffTables(declared, live), nil
}
