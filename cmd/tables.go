package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List dynamic tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.catalog.ListDynamicTables(ctx)
		if err != nil {
			return fmt.Errorf("listing tables: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("🕒 No dynamic tables yet.")
			return nil
		}
		fmt.Printf("✅ Dynamic tables (%d):\n", len(names))
		for _, n := range names {
			fmt.Println("   -", n)
		}
		return nil
	},
}
