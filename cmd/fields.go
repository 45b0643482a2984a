package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <table>",
	Short: "Show the form fields inferred for a dynamic table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		fields, err := a.forms().FormFields(ctx, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLABEL\tTYPE\tREQUIRED")
		for _, f := range fields {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", f.Name, f.Label, f.Type, f.Required)
		}
		return tw.Flush()
	},
}
