package cli

import (
	"fmt"

	"github.com/alexanderramin/plansheet/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRowsCmd(app *App) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "List the sheet rows that pass the filters",
		Example: `  plansheet rows --project work --status scheduled
  plansheet rows --day 1 --day 3 --collapse p:home`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(app.Sheet); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRows(app.Sheet.Visible(), app.Sheet.TotalDays()))
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
