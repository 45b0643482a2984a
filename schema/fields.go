package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrFieldsShape is returned when the fields payload is neither a JSON array
// nor a JSON object.
var ErrFieldsShape = errors.New("fields must be an array of {name, type} objects or an object of name: type pairs")

// SkippedField records an entry of the fields payload that could not be used.
type SkippedField struct {
	// Key is the array index or the object key of the entry.
	Key    string `json:"key"`
	Raw    string `json:"raw,omitempty"`
	Reason string `json:"reason"`
}

type structuredField struct {
	Name    *string         `json:"name"`
	Type    *string         `json:"type"`
	Options json.RawMessage `json:"options"`
}

// ParseFields decodes the fields payload of a table-creation request. Two
// shapes are accepted, preserving input order:
//
//	[{"name": "title", "type": "string"}, ...]
//	{"title": "string", ...}
//
// Entries of any other shape are returned in the skipped list rather than
// failing the whole payload.
func ParseFields(raw json.RawMessage) ([]FieldDescriptor, []SkippedField, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, ErrFieldsShape
	}

	switch trimmed[0] {
	case '[':
		return parseFieldList(trimmed)
	case '{':
		return parseFieldPairs(trimmed)
	default:
		return nil, nil, ErrFieldsShape
	}
}

func parseFieldList(raw []byte) ([]FieldDescriptor, []SkippedField, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("decoding fields array: %w", err)
	}

	var fields []FieldDescriptor
	var skipped []SkippedField
	for i, item := range items {
		key := strconv.Itoa(i)
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			skipped = append(skipped, SkippedField{Key: key, Raw: string(item), Reason: "entry is not an object"})
			continue
		}

		var sf structuredField
		if err := json.Unmarshal(item, &sf); err != nil {
			skipped = append(skipped, SkippedField{Key: key, Raw: string(item), Reason: "name and type must be strings"})
			continue
		}
		if sf.Name == nil || sf.Type == nil {
			skipped = append(skipped, SkippedField{Key: key, Raw: string(item), Reason: "entry needs both name and type"})
			continue
		}

		fields = append(fields, FieldDescriptor{
			Name:    *sf.Name,
			Type:    FieldType(*sf.Type),
			Options: sf.Options,
		})
	}
	return fields, skipped, nil
}

// parseFieldPairs walks the object token by token because map decoding would
// lose the key order, and the key order is the column order.
func parseFieldPairs(raw []byte) ([]FieldDescriptor, []SkippedField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decoding fields object: %w", err)
	}

	var fields []FieldDescriptor
	var skipped []SkippedField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decoding fields object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("decoding fields object: unexpected key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("decoding fields object value for %q: %w", key, err)
		}

		var fieldType string
		if err := json.Unmarshal(value, &fieldType); err != nil {
			skipped = append(skipped, SkippedField{Key: key, Raw: string(value), Reason: "type must be a string"})
			continue
		}
		fields = append(fields, FieldDescriptor{Name: key, Type: FieldType(fieldType)})
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("decoding fields object: %w", err)
	}
	return fields, skipped, nil
}
