package validator

import (
	"fmt"
	"sort"
	"strings"
)

// MaxIdentifierLength is the PostgreSQL identifier limit; SQLite has none but
// both dialects share the same rules so a table is portable between them.
const MaxIdentifierLength = 63

// ValidationError represents a validation error with details
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning"
}

// ValidationResult collects errors and warnings for one request
type ValidationResult struct {
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// Valid reports whether no errors were recorded.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// AddError records an error against field.
func (r *ValidationResult) AddError(field, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: "error",
	})
}

// AddWarning records a warning against field.
func (r *ValidationResult) AddWarning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: "warning",
	})
}

// FieldMap flattens the errors into field -> message. When a field has more
// than one error the messages are joined with "; ".
func (r *ValidationResult) FieldMap() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if prev, ok := out[e.Field]; ok {
			out[e.Field] = prev + "; " + e.Message
			continue
		}
		out[e.Field] = e.Message
	}
	return out
}

// Summary returns a one-line description of all errors, sorted by field.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// NormalizeIdentifier lower-cases s and converts it to snake_case. Every run
// of characters outside [a-z0-9] collapses to a single underscore and leading
// or trailing underscores are trimmed. The result may still be invalid (empty,
// or starting with a digit); check it with ValidateIdentifier.
func NormalizeIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(char)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ValidateIdentifier checks that name is safe to interpolate, quoted, into a
// statement as a table or column name.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%s name '%s' is too long (max %d characters)", kind, name, MaxIdentifierLength)
	}

	for i, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
		if i == 0 && char >= '0' && char <= '9' {
			return fmt.Errorf("%s name '%s' cannot start with a digit", kind, name)
		}
	}

	return nil
}

// ValidateTableName validates a physical table name.
func ValidateTableName(name string) error {
	return ValidateIdentifier("table", name)
}

// ValidateColumnName validates a column name.
func ValidateColumnName(name string) error {
	return ValidateIdentifier("column", name)
}

// IsValidTableName validates that the table name is safe for SQL queries
func IsValidTableName(name string) bool {
	return ValidateTableName(name) == nil
}
