package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/categories"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and responsive.

Examples:
  custompost health                    # Check default database connection
  custompost health --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.exec.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	exists, err := a.catalog.AnyTableExists(ctx, categories.TableName)
	if err != nil {
		return fmt.Errorf("failed to check %s table: %v", categories.TableName, err)
	}
	if !exists {
		fmt.Printf("⚠️  Database is accessible but %s table not found\n", categories.TableName)
		fmt.Println("   Run 'custompost init --db' to create it")
	}

	tables, err := a.catalog.ListDynamicTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dynamic tables: %v", err)
	}
	fmt.Printf("📊 Found %d dynamic tables\n", len(tables))
	return nil
}
