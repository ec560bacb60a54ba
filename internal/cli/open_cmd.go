package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/alexanderramin/plansheet/internal/tui"
	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the sheet in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("open needs an interactive terminal; use rows or totals instead")
			}
			if err := restoreCollapsed(cmd, app); err != nil {
				return err
			}
			if err := flags.apply(app.Sheet); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), app.Sheet, tui.Options{
				Title:  fmt.Sprintf("%s · %d days", app.Plan.Start, app.Plan.Days),
				Bounds: app.Plan.Daily,
				State:  app.State,
				Save:   app.Saver,
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

// restoreCollapsed applies the groups collapsed in the last session.
func restoreCollapsed(cmd *cobra.Command, app *App) error {
	if app.State == nil {
		return nil
	}
	groups, err := app.State.GetList(cmd.Context(), repository.StateCollapsed)
	if err != nil {
		return fmt.Errorf("loading view state: %w", err)
	}
	app.Sheet.SetCollapsed(groups...)
	return nil
}
