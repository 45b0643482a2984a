package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields_Array(t *testing.T) {
	raw := json.RawMessage(`[
		{"name": "title", "type": "string"},
		{"name": "body", "type": "ckeditor", "options": {"rows": 10}},
		"oops",
		{"name": "views"},
		{"name": 5, "type": "integer"}
	]`)

	fields, skipped, err := ParseFields(raw)
	require.NoError(t, err)

	require.Len(t, fields, 2)
	assert.Equal(t, "title", fields[0].Name)
	assert.Equal(t, FieldString, fields[0].Type)
	assert.Equal(t, FieldCKEditor, fields[1].Type)
	assert.JSONEq(t, `{"rows": 10}`, string(fields[1].Options))

	require.Len(t, skipped, 3)
	assert.Equal(t, "2", skipped[0].Key)
	assert.Equal(t, "entry is not an object", skipped[0].Reason)
	assert.Equal(t, "3", skipped[1].Key)
	assert.Equal(t, "entry needs both name and type", skipped[1].Reason)
	assert.Equal(t, "4", skipped[2].Key)
	assert.Equal(t, "name and type must be strings", skipped[2].Reason)
}

func TestParseFields_ObjectKeepsOrder(t *testing.T) {
	raw := json.RawMessage(`{"zeta": "string", "alpha": "integer", "bad": 3, "mid": "boolean"}`)

	fields, skipped, err := ParseFields(raw)
	require.NoError(t, err)

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	assert.Equal(t, FieldBoolean, fields[2].Type)

	require.Len(t, skipped, 1)
	assert.Equal(t, "bad", skipped[0].Key)
	assert.Equal(t, "3", skipped[0].Raw)
}

func TestParseFields_BadShape(t *testing.T) {
	for _, raw := range []string{``, `"title"`, `42`, `null`} {
		_, _, err := ParseFields(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrFieldsShape, "input %q", raw)
	}

	_, _, err := ParseFields(json.RawMessage(`[{"name": "a"`))
	assert.Error(t, err)
}

func TestStorageFor(t *testing.T) {
	cases := map[FieldType]StorageType{
		FieldString:   StorageString,
		FieldInteger:  StorageInteger,
		FieldText:     StorageText,
		FieldTextarea: StorageText,
		FieldRichtext: StorageLongText,
		FieldCKEditor: StorageLongText,
		FieldBoolean:  StorageBoolean,
		FieldDate:     StorageDate,
		FieldFile:     StorageString,
		"Boolean":     StorageBoolean,
		"geo_point":   StorageString,
	}
	for in, want := range cases {
		assert.Equal(t, want, StorageFor(in), "type %q", in)
	}

	assert.True(t, FieldType(" Date ").Known())
	assert.False(t, FieldType("geo_point").Known())
}

func TestColumnHelpers(t *testing.T) {
	cols := []ColumnDescriptor{{Name: "id"}, {Name: "title"}}
	assert.Equal(t, []string{"id", "title"}, ColumnNames(cols))
	assert.True(t, HasColumn(cols, "title"))
	assert.False(t, HasColumn(cols, "body"))

	assert.True(t, IsSystemColumn("created_at"))
	assert.False(t, IsSystemColumn("category_id"))
}
