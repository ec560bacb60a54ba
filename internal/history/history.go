// Package history keeps reversible commands on two bounded stacks.
package history

// DefaultCap is the number of commands kept on each stack.
const DefaultCap = 100

// Command is one reversible mutation. Execute must be repeatable after Undo
// so that redo can replay it.
type Command interface {
	Execute()
	Undo()
}

// Func adapts a pair of closures to Command.
type Func struct {
	ID     string
	Label  string
	Apply  func()
	Revert func()
}

// Execute runs Apply.
func (f Func) Execute() {
	if f.Apply != nil {
		f.Apply()
	}
}

// Undo runs Revert.
func (f Func) Undo() {
	if f.Revert != nil {
		f.Revert()
	}
}

// History is an undo stack and a redo stack with a shared cap. It is owned
// by whoever issues commands; there is no package-level instance.
type History struct {
	cap  int
	undo []Command
	redo []Command
}

// New returns an empty history. A non-positive cap uses DefaultCap.
func New(cap int) *History {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &History{cap: cap}
}

// Execute runs c, pushes it onto the undo stack and clears the redo stack.
// The oldest command is evicted once the cap is exceeded.
func (h *History) Execute(c Command) {
	c.Execute()
	h.undo = h.push(h.undo, c)
	h.redo = nil
}

// Undo reverts the most recent command. It returns the command, or false
// when there is nothing to undo.
func (h *History) Undo() (Command, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	c.Undo()
	h.redo = h.push(h.redo, c)
	return c, true
}

// Redo re-executes the most recently undone command. It returns the
// command, or false when there is nothing to redo.
func (h *History) Redo() (Command, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	c.Execute()
	h.undo = h.push(h.undo, c)
	return c, true
}

// UndoDepth returns the number of commands that can be undone.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of commands that can be redone.
func (h *History) RedoDepth() int { return len(h.redo) }

// Cap returns the stack cap.
func (h *History) Cap() int { return h.cap }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func (h *History) push(stack []Command, c Command) []Command {
	stack = append(stack, c)
	if len(stack) > h.cap {
		stack = append([]Command(nil), stack[len(stack)-h.cap:]...)
	}
	return stack
}
