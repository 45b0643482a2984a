package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/custompost/categories"
	"github.com/ridoystarlord/custompost/validator"
)

var categorySlug string

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage post categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a post category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		slug := categorySlug
		if slug == "" {
			slug = strings.ReplaceAll(validator.NormalizeIdentifier(args[0]), "_", "-")
		}
		store := categories.NewStore(a.exec)
		if err := store.EnsureTable(ctx); err != nil {
			return err
		}
		id, err := store.Create(ctx, args[0], slug)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created category %d (%s)\n", id, slug)
		return nil
	},
}

var categoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post category and its linked table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		c, err := categories.NewStore(a.exec).Get(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("category %d not found", id)
		}

		table := "(none)"
		if c.CustomPostTableName != nil {
			table = *c.CustomPostTableName
		}
		slug := ""
		if c.Slug != nil {
			slug = *c.Slug
		}
		fmt.Printf("📁 %d  %s  (%s)\n", c.ID, c.Name, slug)
		fmt.Printf("   table: %s\n", table)
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&categorySlug, "slug", "", "Slug (default: derived from the name)")
	categoryCmd.AddCommand(categoryAddCmd, categoryShowCmd)
}
