package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/generator"
	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/runner"
)

var (
	generateFile string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write CREATE TABLE files for the declared tables",
	Long: `Write one SQL file per table declared in the tables file, for review
or for applying with other tooling. No database connection is needed; the
dialect comes from database.driver.

Examples:
  custompost generate                      # tables.yaml -> ddl/
  custompost generate -f content.yaml -o sql/
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		dialect, err := database.ParseDialect(cfg.Database.Driver)
		if err != nil {
			return err
		}

		defs, err := loader.LoadTablesFromYAML(generateFile)
		if err != nil {
			return err
		}

		planner := provisioner.NewPlanner(dialect, cfg.Provisioning.Prefix,
			provisioner.ParsePolicy(cfg.Provisioning.Strict), log)

		for _, def := range defs {
			res, err := planner.Preview(runner.Request(def))
			if err != nil {
				return fmt.Errorf("%s: %w", def.Name, err)
			}
			path, err := generator.WriteDDLFile(generateOut, res.TableName, res.Statement)
			if err != nil {
				return err
			}
			fmt.Println("✅ Generated", path)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "tables.yaml", "Tables YAML file to load")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "ddl", "Directory to write SQL files into")
}
