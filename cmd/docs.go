package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/forms"
	"github.com/ridoystarlord/custompost/schema"
)

var (
	docsFormat string
	docsOutput string
)

// tableDoc is what the renderers need to know about one dynamic table.
type tableDoc struct {
	Name    string
	Columns []schema.ColumnDescriptor
	Fields  []forms.FormField
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate documentation for the live dynamic tables",
	Long: `Generate an ERD or REST API documentation from the dynamic tables that
currently exist in the database.

Supported formats:
  - mermaid: Mermaid ERD diagram
  - api: REST API documentation

Examples:
  custompost docs --format mermaid --output erd.md
  custompost docs --format api --output api.md
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.catalog.ListDynamicTables(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("no dynamic tables found")
		}

		tables := make([]tableDoc, 0, len(names))
		for _, name := range names {
			cols, err := a.catalog.Columns(ctx, name)
			if err != nil {
				return err
			}
			tables = append(tables, tableDoc{Name: name, Columns: cols, Fields: forms.Infer(cols)})
		}

		var content, output string
		switch docsFormat {
		case "mermaid":
			content, output = renderMermaid(tables), "erd.md"
		case "api":
			content, output = renderAPIDocs(tables), "api.md"
		default:
			return fmt.Errorf("unsupported format %q (supported: mermaid, api)", docsFormat)
		}
		if docsOutput != "" {
			output = docsOutput
		}

		if err := os.WriteFile(output, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("✅ Documentation saved to: %s\n", output)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsFormat, "format", "api", "Output format (mermaid, api)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file")
}

func renderMermaid(tables []tableDoc) string {
	var b strings.Builder
	b.WriteString("# Custom Post Tables\n\n")
	b.WriteString("```mermaid\nerDiagram\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "    %s {\n", t.Name)
		for _, c := range t.Columns {
			line := fmt.Sprintf("        %s %s", c.Type, c.Name)
			if c.Name == schema.ColumnID {
				line += " PK"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("    }\n")
	}
	for _, t := range tables {
		if schema.HasColumn(t.Columns, schema.ColumnCategoryID) {
			fmt.Fprintf(&b, "    post_categories ||--o{ %s : \"category_id\"\n", t.Name)
		}
	}
	b.WriteString("```\n")
	return b.String()
}

func renderAPIDocs(tables []tableDoc) string {
	var b strings.Builder
	b.WriteString("# Custom Post API\n\n")
	b.WriteString("All endpoints require `Authorization: Bearer <token>`.\n")

	for _, t := range tables {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Name)
		fmt.Fprintf(&b, "| Method | Path |\n|---|---|\n")
		fmt.Fprintf(&b, "| GET | /custom-post-form-fields/%s |\n", t.Name)
		fmt.Fprintf(&b, "| POST | /custom-post/create/%s |\n", t.Name)
		fmt.Fprintf(&b, "| GET | /custom-post/list/%s |\n", t.Name)
		fmt.Fprintf(&b, "| GET | /custom-post/details/%s/{id} |\n", t.Name)
		fmt.Fprintf(&b, "| POST | /custom-post/update/%s/{id} |\n", t.Name)
		fmt.Fprintf(&b, "| DELETE | /custom-post/delete/%s/{id} |\n", t.Name)

		b.WriteString("\n### Fields\n\n")
		b.WriteString("| Name | Label | Input | Required |\n|---|---|---|---|\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "| %s | %s | %s | %v |\n", f.Name, f.Label, f.Type, f.Required)
		}
	}
	return b.String()
}
