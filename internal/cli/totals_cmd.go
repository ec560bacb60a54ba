package cli

import (
	"fmt"

	"github.com/alexanderramin/plansheet/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTotalsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show scheduled time per day against the daily bounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := formatter.DayLabels(app.Sheet.Derived(), app.Sheet.TotalDays())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTotals(app.Sheet.DailyTotals(), labels, app.Plan.Daily))
			return nil
		},
	}
}
