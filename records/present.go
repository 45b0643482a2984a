package records

import (
	"time"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/schema"
)

const dateLayout = "2006-01-02"

// present rewrites driver values into the shape the API returns for each
// storage type. Dates come back as YYYY-MM-DD and booleans as true/false on
// every dialect.
func present(columns []schema.ColumnDescriptor, row database.Row) database.Row {
	for _, col := range columns {
		v, ok := row[col.Name]
		if !ok || v == nil {
			continue
		}
		switch col.Type {
		case schema.StorageDate:
			row[col.Name] = presentDate(v)
		case schema.StorageBoolean:
			row[col.Name] = presentBool(v)
		}
	}
	return row
}

func presentDate(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(dateLayout)
	case string:
		if len(x) >= len(dateLayout) {
			if _, err := time.Parse(dateLayout, x[:len(dateLayout)]); err == nil {
				return x[:len(dateLayout)]
			}
		}
	}
	return v
}

func presentBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int:
		return x != 0
	case string:
		switch x {
		case "1", "t", "true", "TRUE":
			return true
		case "0", "f", "false", "FALSE":
			return false
		}
	}
	return v
}
