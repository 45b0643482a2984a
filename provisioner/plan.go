package provisioner

import (
	"strconv"
	"strings"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/validator"
)

// Plan is the column layout derived from a list of field descriptors.
type Plan struct {
	Columns []schema.Column
	// Skipped lists descriptors that could not become a column name.
	Skipped []schema.SkippedField
	// Reserved lists descriptors that named a system column. They are always
	// dropped, whatever the policy.
	Reserved []schema.SkippedField
	// Duplicates lists normalized names declared more than once.
	Duplicates []string
}

// ColumnNames returns the planned column names in DDL order.
func (p *Plan) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// BuildPlan turns admin-declared fields into the full column list: the id
// column, the admin fields in input order, the category columns if the admin
// did not declare them, then is_active and the timestamps.
func BuildPlan(d database.Dialect, fields []schema.FieldDescriptor) *Plan {
	plan := &Plan{}
	plan.Columns = append(plan.Columns, schema.Column{
		Name:    schema.ColumnID,
		Type:    schema.StorageID,
		Primary: true,
	})

	seen := map[string]bool{}
	dupSeen := map[string]bool{}
	for i, f := range fields {
		key := f.Name
		if key == "" {
			key = strconv.Itoa(i)
		}

		name := validator.NormalizeIdentifier(f.Name)
		if err := validator.ValidateColumnName(name); err != nil {
			plan.Skipped = append(plan.Skipped, schema.SkippedField{
				Key:    key,
				Raw:    f.Name,
				Reason: err.Error(),
			})
			continue
		}

		if schema.IsSystemColumn(name) {
			plan.Reserved = append(plan.Reserved, schema.SkippedField{
				Key:    key,
				Raw:    f.Name,
				Reason: "reserved field " + name,
			})
			continue
		}

		if seen[name] {
			if !dupSeen[name] {
				plan.Duplicates = append(plan.Duplicates, name)
				dupSeen[name] = true
			}
			continue
		}
		seen[name] = true

		plan.Columns = append(plan.Columns, fieldColumn(d, name, f.Type))
	}

	if !seen[schema.ColumnCategoryID] {
		plan.Columns = append(plan.Columns, fieldColumn(d, schema.ColumnCategoryID, schema.FieldInteger))
	}
	if !seen[schema.ColumnCategoryName] {
		plan.Columns = append(plan.Columns, fieldColumn(d, schema.ColumnCategoryName, schema.FieldString))
	}

	activeDefault := d.BoolLiteral(true)
	plan.Columns = append(plan.Columns,
		schema.Column{Name: schema.ColumnIsActive, Type: schema.StorageBoolean, NotNull: true, Default: &activeDefault},
		schema.Column{Name: schema.ColumnCreatedAt, Type: schema.StorageTimestamp},
		schema.Column{Name: schema.ColumnUpdatedAt, Type: schema.StorageTimestamp},
	)

	return plan
}

func fieldColumn(d database.Dialect, name string, declared schema.FieldType) schema.Column {
	declared = schema.FieldType(strings.ToLower(strings.TrimSpace(string(declared))))
	col := schema.Column{
		Name:     name,
		Type:     schema.StorageFor(declared),
		Declared: declared,
	}
	if col.Type == schema.StorageBoolean {
		def := d.BoolLiteral(false)
		col.NotNull = true
		col.Default = &def
	}
	return col
}
