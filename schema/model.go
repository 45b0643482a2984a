package schema

import (
	"encoding/json"
	"strings"
)

// FieldType is the logical type an admin declares for a field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInteger  FieldType = "integer"
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldRichtext FieldType = "richtext"
	FieldCKEditor FieldType = "ckeditor"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
)

// StorageType is the dialect-independent column type. Dialects render it to
// a concrete SQL type and classify introspected native types back into it.
type StorageType string

const (
	StorageID        StorageType = "id"
	StorageString    StorageType = "string"
	StorageInteger   StorageType = "integer"
	StorageText      StorageType = "text"
	StorageLongText  StorageType = "longtext"
	StorageBoolean   StorageType = "boolean"
	StorageDate      StorageType = "date"
	StorageTimestamp StorageType = "timestamp"
	StorageOther     StorageType = "other"
)

// System column names. They are always present on a dynamic table and are
// never admin-editable.
const (
	ColumnID        = "id"
	ColumnIsActive  = "is_active"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"

	ColumnCategoryID   = "category_id"
	ColumnCategoryName = "category_name"
)

// SystemColumns lists the reserved columns in DDL order.
var SystemColumns = []string{ColumnID, ColumnIsActive, ColumnCreatedAt, ColumnUpdatedAt}

// IsSystemColumn reports whether name is one of the reserved columns.
func IsSystemColumn(name string) bool {
	for _, c := range SystemColumns {
		if c == name {
			return true
		}
	}
	return false
}

// FieldDescriptor is the admin's declaration of one column.
type FieldDescriptor struct {
	Name    string          `json:"name" yaml:"name"`
	Type    FieldType       `json:"type" yaml:"type"`
	Options json.RawMessage `json:"options,omitempty" yaml:"-"`
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	switch FieldType(strings.ToLower(strings.TrimSpace(string(t)))) {
	case FieldString, FieldInteger, FieldText, FieldTextarea, FieldRichtext,
		FieldCKEditor, FieldBoolean, FieldDate, FieldFile:
		return true
	}
	return false
}

// StorageFor maps a declared field type onto its storage type. Unknown types
// fall back to a variable-length string.
func StorageFor(t FieldType) StorageType {
	switch FieldType(strings.ToLower(strings.TrimSpace(string(t)))) {
	case FieldString:
		return StorageString
	case FieldInteger:
		return StorageInteger
	case FieldText, FieldTextarea:
		return StorageText
	case FieldCKEditor, FieldRichtext:
		return StorageLongText
	case FieldBoolean:
		return StorageBoolean
	case FieldDate:
		return StorageDate
	case FieldFile:
		return StorageString
	default:
		return StorageString
	}
}

// Column is a column to be created.
type Column struct {
	Name     string
	Type     StorageType
	Primary  bool
	NotNull  bool
	Default  *string // raw SQL literal
	Declared FieldType
}

// ColumnDescriptor is a column as read back from the live catalog.
type ColumnDescriptor struct {
	Name       string      `json:"name"`
	NativeType string      `json:"native_type"`
	Type       StorageType `json:"type"`
	Nullable   bool        `json:"nullable"`
	Default    *string     `json:"default,omitempty"`
	Position   int         `json:"position"`
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []ColumnDescriptor) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether cols contains a column called name.
func HasColumn(cols []ColumnDescriptor, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
