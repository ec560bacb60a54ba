package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/selection"
	"github.com/spf13/cobra"
)

func newSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <row> <column> <value>",
		Short: "Set one cell of a task row",
		Long: `Set one cell of a task row.

The column is one of project, status, task, recurring, estimate, a day
number counted from 1, or a plan date (YYYY-MM-DD). Day cells take
durations such as 1.30 (hours.minutes), 1:30 or 1.5 (hours), or the
placeholder x.`,
		Example: `  plansheet set p:work#1 task "Write report"
  plansheet set p:work#1 status done
  plansheet set p:work#1 2 1.30`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowID, value := args[0], args[2]
			col, err := resolveColumn(args[1], app.Plan)
			if err != nil {
				return err
			}
			ref := selection.CellRef{RowID: rowID, ColumnKey: col}
			if err := app.Sheet.EditCell(ref, value); err != nil {
				return fmt.Errorf("setting %s %s: %w", rowID, args[1], err)
			}

			r, _ := app.Sheet.Row(rowID)
			got, _ := r.CellValue(col)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", rowID, args[1], got)
			if t, ok := r.CellValue(domain.ColumnTimeValue); ok && t != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Time: %s\n", t)
			}
			return nil
		},
	}
}

// resolveColumn maps a column argument to a column key.
func resolveColumn(arg string, p *plan.Plan) (string, error) {
	name := strings.ToLower(strings.TrimSpace(arg))
	if name == "name" {
		name = domain.ColumnTaskName
	}
	for _, c := range domain.FixedColumns {
		if c == name {
			return c, nil
		}
	}
	if i, ok := domain.DayIndex(name); ok {
		if i >= p.Days {
			return "", fmt.Errorf("column %q is outside the plan", arg)
		}
		return name, nil
	}

	if n, err := strconv.Atoi(name); err == nil {
		if n < 1 || n > p.Days {
			return "", fmt.Errorf("day %d is outside 1..%d", n, p.Days)
		}
		return domain.DayColumnKey(n - 1), nil
	}

	if d, err := time.Parse(plan.DateLayout, name); err == nil {
		i := int(d.Sub(p.StartDate()).Hours() / 24)
		if i < 0 || i >= p.Days {
			return "", fmt.Errorf("date %s is outside the plan (%s, %d days)", name, p.Start, p.Days)
		}
		return domain.DayColumnKey(i), nil
	}
	return "", fmt.Errorf("unknown column %q", arg)
}
