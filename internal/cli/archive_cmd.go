package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/spf13/cobra"
)

func newArchiveCmd(app *App) *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "archive <row>...",
		Short: "Move project tasks under an archive week",
		Long: `Move project tasks under an archive week.

The week section and the per-project block inside it are created when
missing. Inbox items and rows that are already archived are skipped.`,
		Example: `  plansheet archive p:work#1 p:work#2
  plansheet archive p:home#3 --week 2026-W42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if week == "" {
				week = plan.WeekKey(app.now())
			}
			if _, _, err := plan.ParseWeekKey(week); err != nil {
				return err
			}
			ids, err := app.Sheet.Archive(args, week)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("nothing to archive: none of %v is a project task", args)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d row(s) to %s\n", len(ids), week)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Archive week key, e.g. 2026-W42 (default: current week)")

	return cmd
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
