package forms

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/schema"
)

// Kind is the input widget the admin UI renders for a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindCheckbox Kind = "checkbox"
	KindRichtext Kind = "richtext"
	KindFile     Kind = "file"
)

// FormField describes one editable field of a dynamic table.
type FormField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        Kind   `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
}

var (
	// Name fragments that turn a column into a rich-text editor.
	richtextHints = []string{"content", "description", "body"}
	// Name fragments that turn a column into a file upload. Checked after
	// richtextHints, so "content_file" is a file.
	fileHints = []string{"image", "photo", "avatar", "thumbnail", "document", "file"}
)

// Infer derives the form fields for a column list. System columns are
// omitted; every other column is required.
func Infer(columns []schema.ColumnDescriptor) []FormField {
	fields := make([]FormField, 0, len(columns))
	for _, col := range columns {
		if schema.IsSystemColumn(col.Name) {
			continue
		}

		label := Label(col.Name)
		fields = append(fields, FormField{
			Name:        col.Name,
			Label:       label,
			Type:        KindFor(col),
			Required:    true,
			Placeholder: "Enter " + label,
		})
	}
	return fields
}

// KindFor picks the widget for a single column.
func KindFor(col schema.ColumnDescriptor) Kind {
	kind := baseKind(col.Type)

	name := strings.ToLower(col.Name)
	for _, hint := range richtextHints {
		if strings.Contains(name, hint) {
			kind = KindRichtext
			break
		}
	}
	for _, hint := range fileHints {
		if strings.Contains(name, hint) {
			kind = KindFile
			break
		}
	}
	return kind
}

func baseKind(t schema.StorageType) Kind {
	switch t {
	case schema.StorageText, schema.StorageLongText:
		return KindTextarea
	case schema.StorageInteger, schema.StorageID:
		return KindNumber
	case schema.StorageBoolean:
		return KindCheckbox
	default:
		return KindText
	}
}

// Label turns a column name into a human label: "act_content" -> "Act Content".
func Label(column string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}

// Inferencer reads the live column list of a dynamic table and infers its form.
type Inferencer struct {
	catalog *introspect.Catalog
}

// NewInferencer creates an inferencer backed by catalog.
func NewInferencer(catalog *introspect.Catalog) *Inferencer {
	return &Inferencer{catalog: catalog}
}

// FormFields returns the inferred form for table. It fails with NotFound if
// table is not a dynamic table.
func (i *Inferencer) FormFields(ctx context.Context, table string) ([]FormField, error) {
	exists, err := i.catalog.TableExists(ctx, table)
	if err != nil {
		return nil, apperr.Storage(err, "check table %s", table)
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "Table not found")
	}

	columns, err := i.catalog.Columns(ctx, table)
	if err != nil {
		return nil, apperr.Storage(err, "read columns of %s", table)
	}
	return Infer(columns), nil
}
