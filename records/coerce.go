package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ridoystarlord/custompost/schema"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Coerce converts a raw payload value into a value the column's storage type
// accepts. Form submissions arrive as strings, JSON bodies as float64, bool and
// string; both end up as the same Go type per column. A value that ends up
// NULL is rejected for a NOT NULL column.
func Coerce(col schema.ColumnDescriptor, v any) (any, error) {
	out, err := coerce(col, v)
	if err != nil {
		return nil, err
	}
	if out == nil && !col.Nullable {
		return nil, fmt.Errorf("must not be empty")
	}
	return out, nil
}

func coerce(col schema.ColumnDescriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch col.Type {
	case schema.StorageInteger, schema.StorageID:
		return coerceInteger(v)
	case schema.StorageBoolean:
		return coerceBool(v)
	case schema.StorageDate:
		return coerceTime(v, dateLayouts, true)
	case schema.StorageTimestamp:
		return coerceTime(v, timestampLayouts, false)
	default:
		return coerceString(v)
	}
}

func coerceInteger(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("expects an integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("expects an integer, got %q", x.String())
		}
		return n, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expects an integer, got %q", x)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expects an integer, got %T", v)
	}
}

func coerceBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case json.Number:
		return x.String() != "0", nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "on", "yes":
			return true, nil
		case "0", "false", "off", "no", "":
			return false, nil
		}
		return nil, fmt.Errorf("expects a boolean, got %q", x)
	default:
		return nil, fmt.Errorf("expects a boolean, got %T", v)
	}
}

func coerceTime(v any, layouts []string, dateOnly bool) (any, error) {
	switch x := v.(type) {
	case time.Time:
		if dateOnly {
			return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		return x.UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		for _, layout := range layouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			if dateOnly {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
			}
			return t.UTC(), nil
		}
		if dateOnly {
			return nil, fmt.Errorf("expects a date (YYYY-MM-DD), got %q", x)
		}
		return nil, fmt.Errorf("expects a timestamp, got %q", x)
	default:
		return nil, fmt.Errorf("expects a date string, got %T", v)
	}
}

func coerceString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool, float64, int, int64, json.Number:
		return fmt.Sprint(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("cannot be stored as text: %v", err)
		}
		return string(b), nil
	}
}
