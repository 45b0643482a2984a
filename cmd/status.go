package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/diff"
	"github.com/ridoystarlord/custompost/loader"
	"github.com/ridoystarlord/custompost/runner"
)

var statusFile string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare declared tables with the database",
	Long: `Report which declared tables are still to be provisioned and where a
live table has drifted from its declaration. Nothing is changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loader.LoadTablesFromYAML(statusFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		ops, err := runner.Drift(ctx, a.provisioner(), a.catalog, defs)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			color.Green("✅ All %d declared tables match the database", len(defs))
			return nil
		}

		pending := color.New(color.FgBlue)
		drift := color.New(color.FgYellow)
		for _, op := range ops {
			if op.Type == diff.CreateTable {
				pending.Printf("🕒 %s\n", op)
				continue
			}
			drift.Printf("⚠️  %s\n", op)
		}
		fmt.Printf("\n📊 %d differences\n", len(ops))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusFile, "file", "f", "tables.yaml", "Tables YAML file to compare")
}
