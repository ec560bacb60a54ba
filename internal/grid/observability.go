package grid

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNoConvergence is reported on a reconcile event whose write-back pass
// still found rows to update.
var ErrNoConvergence = errors.New("reconcile did not converge")

// Event describes one controller operation on the sheet. Command and
// CommandID are set for history operations so a command can be followed
// through undo and redo. The depths are the history sizes after the
// operation.
type Event struct {
	Name      string
	Command   string
	CommandID string
	UndoDepth int
	RedoDepth int
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

// Observer receives controller events.
type Observer interface {
	Observe(event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) Observe(Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver logs sheet events through logger. A nil logger yields a
// NoopObserver.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger.With("component", "sheet")}
}

func (o *logObserver) Observe(e Event) {
	attrs := []slog.Attr{
		slog.String("event", e.Name),
		slog.Int64("duration_us", e.Duration.Microseconds()),
		slog.Int("undo_depth", e.UndoDepth),
		slog.Int("redo_depth", e.RedoDepth),
	}
	if e.Command != "" {
		attrs = append(attrs, slog.String("command", e.Command), slog.String("command_id", e.CommandID))
	}
	if len(e.Fields) > 0 {
		detail := make([]any, 0, len(e.Fields)*2)
		for k, v := range e.Fields {
			detail = append(detail, k, v)
		}
		attrs = append(attrs, slog.Group("detail", detail...))
	}
	level := slog.LevelInfo
	if e.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	o.logger.LogAttrs(context.Background(), level, "sheet_event", attrs...)
}

// observe stamps e with its duration and the current history depths, then
// hands it to the observer.
func (c *Controller) observe(startedAt time.Time, e Event) {
	e.StartedAt = startedAt
	e.Duration = time.Since(startedAt)
	e.UndoDepth = c.history.UndoDepth()
	e.RedoDepth = c.history.RedoDepth()
	c.observer.Observe(e)
}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
