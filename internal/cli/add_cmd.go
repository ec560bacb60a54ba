package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/plansheet/internal/cli/formatter"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/rowid"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var project, sub, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task slot to a project, subproject or the inbox",
		Example: `  plansheet add --project work --name "Review PRs"
  plansheet add --project work --sub infra
  plansheet add --project inbox --name "Call the bank"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				if !app.interactive() {
					return errors.New("--project is required")
				}
				if err := addTaskForm(app.Plan, &project, &name).Run(); err != nil {
					return err
				}
			}

			group, err := slotGroupFor(app.Plan, project, sub)
			if err != nil {
				return err
			}
			after, ok := insertionPoint(app, group)
			if !ok {
				return fmt.Errorf("group %s has no row to add after", group)
			}
			id, ok := app.Sheet.InsertTask(after)
			if !ok {
				return fmt.Errorf("cannot add a task to %s", group)
			}
			if name = strings.TrimSpace(name); name != "" {
				if err := app.Sheet.SetTaskName(id, name); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", `Project key, or "inbox"`)
	cmd.Flags().StringVar(&sub, "sub", "", "Subproject key")
	cmd.Flags().StringVar(&name, "name", "", "Task name")

	return cmd
}

// slotGroupFor resolves project and subproject keys against the plan.
func slotGroupFor(p *plan.Plan, project, sub string) (string, error) {
	for _, pr := range p.Projects {
		if pr.Key != project {
			continue
		}
		if sub == "" {
			return rowid.Project(pr.Key), nil
		}
		for _, s := range pr.Subprojects {
			if s.Key == sub {
				return rowid.Subproject(pr.Key, s.Key), nil
			}
		}
		return "", fmt.Errorf("project %s has no subproject %q", project, sub)
	}
	if project == rowid.InboxGroup && sub == "" {
		return rowid.InboxGroup, nil
	}
	return "", fmt.Errorf("unknown project %q", project)
}

// insertionPoint returns the last slot of group, or its general row when
// the group has no slots yet, so new slots land at the end of the section.
func insertionPoint(app *App, group string) (string, bool) {
	var after string
	for _, r := range app.Sheet.StoreRows() {
		if g, ok := rowid.SlotGroup(r.ID); ok && g == group && r.IsTaskLike() {
			after = r.ID
		}
	}
	if after != "" {
		return after, true
	}
	general := rowid.General(group)
	if _, ok := app.Sheet.Row(general); ok {
		return general, true
	}
	return "", false
}

func addTaskForm(p *plan.Plan, project, name *string) *huh.Form {
	opts := make([]huh.Option[string], 0, len(p.Projects)+1)
	for _, pr := range p.Projects {
		label := pr.Name
		if label == "" {
			label = pr.Key
		}
		opts = append(opts, huh.NewOption(label, pr.Key))
	}
	opts = append(opts, huh.NewOption("Inbox", rowid.InboxGroup))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project").
				Options(opts...).
				Value(project),
			huh.NewInput().
				Title("Task").
				Placeholder("blank for an empty slot").
				Value(name),
		),
	).WithTheme(sheetHuhTheme()).WithShowHelp(false)
}

func sheetHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
