package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/plansheet/internal/grid"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/spf13/cobra"
)

// Saver writes pending row snapshots. persist.Saver satisfies it.
type Saver interface {
	Flush(ctx context.Context) error
	Pending() bool
	Err() error
}

// App holds the wired sheet every command works on.
type App struct {
	Sheet *grid.Controller
	Plan  *plan.Plan
	State repository.SheetStateRepo
	Saver Saver

	// IsInteractive reports whether stdin and stdout are a terminal. Nil
	// means they are not.
	IsInteractive func() bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// flush writes whatever the command changed before the process exits.
func (a *App) flush(ctx context.Context) error {
	if a.Saver == nil {
		return nil
	}
	if err := a.Saver.Flush(ctx); err != nil {
		return fmt.Errorf("saving sheet: %w", err)
	}
	return nil
}

// NewRootCmd creates the top-level "plansheet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "plansheet",
		Short:         "Weekly planning sheet with drag-and-drop rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.flush(cmd.Context())
		},
	}

	root.AddCommand(
		newOpenCmd(app),
		newRowsCmd(app),
		newSetCmd(app),
		newAddCmd(app),
		newArchiveCmd(app),
		newTotalsCmd(app),
	)

	return root
}
