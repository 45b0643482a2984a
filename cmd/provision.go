package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/runner"
)

var (
	tablesFile      string
	dryRunProvision bool
	stopOnError     bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the dynamic tables declared in a YAML file",
	Long: `Create every table declared in a tables file.

Each table is provisioned exactly like a POST /custom-post/create-table
request. Tables that already exist are reported and left untouched.

Examples:
  custompost provision                    # Provision from tables.yaml
  custompost provision -f content.yaml    # Provision from a custom file
  custompost provision --dry-run          # Print the DDL without running it
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loader.LoadTablesFromYAML(tablesFile)
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Println("✅ No tables declared.")
			return nil
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		outcomes := runner.Run(ctx, a.provisioner(), defs, runner.Options{
			DryRun:      dryRunProvision,
			StopOnError: stopOnError,
		})
		printOutcomes(outcomes)

		if n := runner.Failures(outcomes); n > 0 {
			return fmt.Errorf("%d of %d tables failed", n, len(defs))
		}
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVarP(&tablesFile, "file", "f", "tables.yaml", "Tables YAML file to load")
	provisionCmd.Flags().BoolVar(&dryRunProvision, "dry-run", false, "Print the CREATE TABLE statements without running them")
	provisionCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first table that fails")
}

func printOutcomes(outcomes []runner.Outcome) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	for _, o := range outcomes {
		switch o.Status {
		case runner.Planned:
			fmt.Printf("-- %s\n%s\n\n", o.Result.TableName, o.Result.Statement)
		case runner.Created:
			green.Printf("✅ Created %s\n", o.Result.Describe())
			for _, s := range o.Result.Skipped {
				yellow.Printf("   ⚠️  skipped %s: %s\n", s.Key, s.Reason)
			}
		case runner.Exists:
			yellow.Printf("⏭️  %s: %v\n", o.Name, o.Err)
		case runner.Failed:
			red.Printf("❌ %s: %v\n", o.Name, o.Err)
		}
	}
}
