package database

import (
	"fmt"
	"strconv"
)

// AsString converts a scanned catalog value to a string. NULL becomes "".
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// AsStringPtr is AsString that keeps NULL distinct from "".
func AsStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := AsString(v)
	return &s
}

// AsInt64 converts a scanned numeric value to int64.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float64:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
