package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/custompost/schema"
)

// TableDefinition is one dynamic table declared in a YAML file.
type TableDefinition struct {
	Name       string
	CategoryID *int64
	Fields     []schema.FieldDescriptor
}

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name       string      `yaml:"name"`
	CategoryID *int64      `yaml:"category_id"`
	Fields     []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadTablesFromYAML reads table definitions for the provision command.
func LoadTablesFromYAML(filename string) ([]TableDefinition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading tables file: %w", err)
	}
	return ParseTablesYAML(data)
}

// ParseTablesYAML decodes table definitions from YAML.
func ParseTablesYAML(data []byte) ([]TableDefinition, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	var tables []TableDefinition
	for i, t := range yf.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table #%d has no name", i+1)
		}
		def := TableDefinition{
			Name:       t.Name,
			CategoryID: t.CategoryID,
		}
		for _, f := range t.Fields {
			def.Fields = append(def.Fields, schema.FieldDescriptor{
				Name: f.Name,
				Type: schema.FieldType(f.Type),
			})
		}
		tables = append(tables, def)
	}

	return tables, nil
}
