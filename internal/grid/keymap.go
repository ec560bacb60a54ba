package grid

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keyboard intents to controller actions.
type KeyMap struct {
	Undo           key.Binding
	Redo           key.Binding
	Cancel         key.Binding
	Up             key.Binding
	Down           key.Binding
	Left           key.Binding
	Right          key.Binding
	ExtendUp       key.Binding
	ExtendDown     key.Binding
	ExtendLeft     key.Binding
	ExtendRight    key.Binding
	Edit           key.Binding
	Clear          key.Binding
	Duplicate      key.Binding
	Insert         key.Binding
	Delete         key.Binding
	SelectAll      key.Binding
	ToggleCollapse key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Undo:           key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:           key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z"), key.WithHelp("ctrl+y", "redo")),
		Cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:             key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:           key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:           key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:          key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		ExtendUp:       key.NewBinding(key.WithKeys("shift+up")),
		ExtendDown:     key.NewBinding(key.WithKeys("shift+down")),
		ExtendLeft:     key.NewBinding(key.WithKeys("shift+left")),
		ExtendRight:    key.NewBinding(key.WithKeys("shift+right")),
		Edit:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Clear:          key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear")),
		Duplicate:      key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "duplicate")),
		Insert:         key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new task")),
		Delete:         key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete rows")),
		SelectAll:      key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		ToggleCollapse: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "collapse")),
	}
}

// ShortHelp returns the bindings worth showing in a one-line footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.ToggleCollapse, k.Undo, k.Redo, k.Insert, k.Duplicate, k.Delete}
}

// FullHelp groups every documented binding for an expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Edit, k.Cancel},
		{k.Undo, k.Redo, k.Clear, k.Insert, k.Duplicate, k.Delete},
		{k.SelectAll, k.ToggleCollapse},
	}
}

func (k KeyMap) isZero() bool {
	return len(k.Undo.Keys()) == 0 && len(k.Edit.Keys()) == 0
}
