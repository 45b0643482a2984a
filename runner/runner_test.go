package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/custompost/database/dbtest"
	"github.com/ridoystarlord/custompost/diff"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/logger"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/schema"
)

func defs() []loader.TableDefinition {
	return []loader.TableDefinition{
		{Name: "news", Fields: []schema.FieldDescriptor{{Name: "title", Type: schema.FieldString}}},
		{Name: "***", Fields: []schema.FieldDescriptor{{Name: "title", Type: schema.FieldString}}},
		{Name: "events", Fields: []schema.FieldDescriptor{{Name: "starts_on", Type: schema.FieldDate}}},
	}
}

func setup(t *testing.T) (*provisioner.Provisioner, *introspect.Catalog) {
	t.Helper()
	exec := dbtest.Open(t)
	catalog := introspect.NewCatalog(exec, "")
	return provisioner.New(exec, catalog, nil, provisioner.Lenient, logger.Nop()), catalog
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	p, catalog := setup(t)

	outcomes := Run(ctx, p, defs(), Options{})
	require.Len(t, outcomes, 3)
	assert.Equal(t, Created, outcomes[0].Status)
	assert.Equal(t, Failed, outcomes[1].Status)
	assert.Equal(t, Created, outcomes[2].Status)
	assert.Equal(t, 1, Failures(outcomes))

	tables, err := catalog.ListDynamicTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customtable_events", "customtable_news"}, tables)

	again := Run(ctx, p, defs()[:1], Options{})
	require.Len(t, again, 1)
	assert.Equal(t, Exists, again[0].Status)
	assert.Equal(t, 0, Failures(again))
}

func TestRun_StopOnErrorAndDryRun(t *testing.T) {
	ctx := context.Background()
	p, catalog := setup(t)

	outcomes := Run(ctx, p, defs(), Options{StopOnError: true})
	assert.Len(t, outcomes, 2)

	planned := Run(ctx, p, defs()[2:], Options{DryRun: true})
	require.Len(t, planned, 1)
	assert.Equal(t, Planned, planned[0].Status)
	assert.Contains(t, planned[0].Result.Statement, `CREATE TABLE "customtable_events"`)

	ok, err := catalog.TableExists(ctx, "customtable_events")
	require.NoError(t, err)
	assert.False(t, ok, "dry run creates nothing")
}

func TestDrift(t *testing.T) {
	ctx := context.Background()
	p, catalog := setup(t)
	declared := []loader.TableDefinition{defs()[0], defs()[2]}

	Run(ctx, p, declared[:1], Options{})

	ops, err := Drift(ctx, p, catalog, declared)
	require.NoError(t, err)
	assert.Equal(t, []diff.Operation{{Type: diff.CreateTable, TableName: "customtable_events"}}, ops)

	Run(ctx, p, declared[1:], Options{})
	ops, err = Drift(ctx, p, catalog, declared)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
