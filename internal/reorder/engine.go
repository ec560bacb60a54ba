// Package reorder turns raw pointer motion into a live insertion preview and,
// on release, a stable multi-row move.
//
// An Engine runs one drag session at a time:
//
//	Idle --press--> Armed --move past threshold--> Dragging
//	Armed --release--> Idle (click)
//	Dragging --release--> Idle (move)
//	any --Cancel--> Idle
package reorder

import (
	"math"
	"slices"
)

// Phase is the state of the drag session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseArmed
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseDragging:
		return "dragging"
	}
	return "unknown"
}

// DefaultThreshold is the pointer distance a press must travel to become a drag.
const DefaultThreshold = 5

// Point is a pointer position in presentation coordinates.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// RowBounds is the vertical extent of one rendered row.
type RowBounds struct {
	ID     string
	Top    float64
	Bottom float64
}

// Mid returns the vertical midpoint of the row.
func (b RowBounds) Mid() float64 { return (b.Top + b.Bottom) / 2 }

// Capture is acquired when a press arms the engine and released on every
// return to Idle. Presentation layers use it to grab pointer events outside
// the grid for the duration of a drag.
type Capture interface {
	Acquire()
	Release()
}

type noCapture struct{}

func (noCapture) Acquire() {}
func (noCapture) Release() {}

// OutcomeKind classifies what a release produced.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeClick
	OutcomeMove
)

// Outcome is the result of releasing the pointer.
type Outcome struct {
	Kind   OutcomeKind
	RowID  string   // pressed row, for clicks
	Moving []string // dragged row ids, for moves
	Target int      // insertion index into the order passed to PointerMove
}

// Engine is the drag state machine. The zero value is not usable; call
// NewEngine.
type Engine struct {
	threshold float64
	capture   Capture

	phase      Phase
	start      Point
	pressed    string
	dragIDs    []string
	startIndex int
	target     int
	targetID   string
}

// NewEngine creates an idle engine. A non-positive threshold uses
// DefaultThreshold; a nil capture is a no-op.
func NewEngine(threshold float64, capture Capture) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if capture == nil {
		capture = noCapture{}
	}
	return &Engine{threshold: threshold, capture: capture, startIndex: -1, target: -1}
}

// Phase returns the current state.
func (e *Engine) Phase() Phase { return e.phase }

// PointerDown arms the engine over rowID. When rowID is part of selected the
// whole selection is dragged, otherwise just rowID. The selection is only
// snapshotted here, never changed. It reports false, and does nothing, when
// a session is already active or rowID is empty.
func (e *Engine) PointerDown(rowID string, p Point, selected []string) bool {
	if e.phase != PhaseIdle || rowID == "" {
		return false
	}
	if slices.Contains(selected, rowID) {
		e.dragIDs = slices.Clone(selected)
	} else {
		e.dragIDs = []string{rowID}
	}
	e.pressed = rowID
	e.start = p
	e.phase = PhaseArmed
	e.capture.Acquire()
	return true
}

// PointerMove advances the session. order is the live row order; rendered
// holds the on-screen rows used for the hover scan.
func (e *Engine) PointerMove(p Point, order []string, rendered []RowBounds) {
	switch e.phase {
	case PhaseIdle:
		return
	case PhaseArmed:
		if e.start.Distance(p) < e.threshold {
			return
		}
		live := make([]string, 0, len(e.dragIDs))
		for _, id := range e.dragIDs {
			if slices.Contains(order, id) {
				live = append(live, id)
			}
		}
		if len(live) == 0 {
			e.Cancel()
			return
		}
		e.dragIDs = live
		e.startIndex = firstIndex(order, live)
		e.phase = PhaseDragging
	case PhaseDragging:
	}
	e.target, e.targetID = HoverIndex(p.Y, order, rendered)
}

// PointerUp ends the session. An armed release is a click on the pressed
// row; a dragging release is a move of the dragged rows to the last hover
// target.
func (e *Engine) PointerUp() Outcome {
	var out Outcome
	switch e.phase {
	case PhaseIdle:
		return Outcome{}
	case PhaseArmed:
		out = Outcome{Kind: OutcomeClick, RowID: e.pressed}
	case PhaseDragging:
		out = Outcome{Kind: OutcomeMove, RowID: e.pressed, Moving: slices.Clone(e.dragIDs), Target: e.target}
	}
	e.reset()
	return out
}

// Cancel abandons the session without producing an outcome.
func (e *Engine) Cancel() {
	if e.phase == PhaseIdle {
		return
	}
	e.reset()
}

func (e *Engine) reset() {
	e.phase = PhaseIdle
	e.pressed = ""
	e.dragIDs = nil
	e.startIndex = -1
	e.target = -1
	e.targetID = ""
	e.capture.Release()
}

// IsDragged reports whether id is part of an active drag.
func (e *Engine) IsDragged(id string) bool {
	return e.phase == PhaseDragging && slices.Contains(e.dragIDs, id)
}

// DraggedIDs returns the frozen drag snapshot, or nil when not dragging.
func (e *Engine) DraggedIDs() []string {
	if e.phase != PhaseDragging {
		return nil
	}
	return slices.Clone(e.dragIDs)
}

// StartIndex returns the order index of the first dragged row at the moment
// the drag began, or -1.
func (e *Engine) StartIndex() int { return e.startIndex }

// Target returns the current insertion index and the id of the row it sits
// before ("" when inserting at the end). Index is -1 when not dragging.
func (e *Engine) Target() (int, string) {
	if e.phase != PhaseDragging {
		return -1, ""
	}
	return e.target, e.targetID
}

// IsDropTarget reports whether the insertion marker sits before row id.
func (e *Engine) IsDropTarget(id string) bool {
	return e.phase == PhaseDragging && id != "" && e.targetID == id
}

// HoverIndex scans rendered rows top to bottom and returns the order index
// of the first row whose midpoint lies below y, plus that row's id. When no
// midpoint lies below y the insertion point is just after the last rendered
// row; the id is "" when that is the end of order. Rendered rows missing from
// order are skipped.
func HoverIndex(y float64, order []string, rendered []RowBounds) (int, string) {
	after := len(order)
	last := -1
	for _, b := range rendered {
		i := slices.Index(order, b.ID)
		if i < 0 {
			continue
		}
		if y < b.Mid() {
			return i, b.ID
		}
		last = i
	}
	if last >= 0 {
		after = last + 1
	}
	if after < len(order) {
		return after, order[after]
	}
	return len(order), ""
}

func firstIndex(order, ids []string) int {
	for i, id := range order {
		if slices.Contains(ids, id) {
			return i
		}
	}
	return -1
}
