package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/logger"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/runner"
	"github.com/ridoystarlord/custompost/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a tables file without touching the database",
	Long: `Validate a tables file offline.

Checks every declared table the same way provisioning would:
- Table names normalize to a valid identifier within the length limit
- Field names normalize to valid, distinct column names
- Reserved columns (id, is_active, created_at, updated_at) are reported
- Unknown field types are reported (they are stored as strings)

Examples:
  custompost validate                     # Validate tables.yaml
  custompost validate --tables content.yaml
  custompost validate --format json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := validateTables()
		if err != nil {
			return err
		}
		if validateFormat == "json" {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			outputText(result)
		}
		if !result.Valid() {
			return fmt.Errorf("%d validation errors", len(result.Errors))
		}
		return nil
	},
}

var (
	validateTablesFile string
	validateFormat     string
)

func init() {
	validateCmd.Flags().StringVarP(&validateTablesFile, "tables", "t", "tables.yaml", "Tables file to validate")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateTables() (*validator.ValidationResult, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dialect, err := database.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	defs, err := loader.LoadTablesFromYAML(validateTablesFile)
	if err != nil {
		return nil, err
	}

	// Strict, so unusable descriptors surface as errors instead of log lines.
	planner := provisioner.NewPlanner(dialect, cfg.Provisioning.Prefix, provisioner.Strict, logger.Nop())

	result := &validator.ValidationResult{}
	seen := map[string]string{}
	for _, def := range defs {
		res, err := planner.Preview(runner.Request(def))
		if err != nil {
			fields := apperr.FieldsOf(err)
			if len(fields) == 0 {
				result.AddError(def.Name, "%s", apperr.PublicMessage(err))
				continue
			}
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				result.AddError(def.Name+"."+k, "%s", fields[k])
			}
			continue
		}

		if prev, ok := seen[res.TableName]; ok {
			result.AddError(def.Name, "maps to %s, already declared by %q", res.TableName, prev)
			continue
		}
		seen[res.TableName] = def.Name

		for _, s := range res.Skipped {
			result.AddWarning(def.Name+".fields."+s.Key, "%s", s.Reason)
		}
		for _, f := range def.Fields {
			if !f.Type.Known() {
				result.AddWarning(def.Name+"."+f.Name, "unknown type %q, stored as string", f.Type)
			}
		}
	}
	return result, nil
}

func outputJSON(result *validator.ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *validator.ValidationResult) {
	if result.Valid() {
		color.Green("✅ Tables file is valid!")
	} else {
		color.Red("❌ Tables file validation failed!")
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n🔴 Errors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			fmt.Printf("  %d. [%s]: %s\n", i+1, e.Field, e.Message)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n🟡 Warnings (%d):\n", len(result.Warnings))
		for i, w := range result.Warnings {
			fmt.Printf("  %d. [%s]: %s\n", i+1, w.Field, w.Message)
		}
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
}
