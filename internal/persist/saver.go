// Package persist keeps the row store and durable storage in step: a
// debounced saver that writes the latest snapshot of task-like rows, and the
// merge that overlays a saved snapshot onto rows rebuilt from the plan.
package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/repository"
)

// DefaultDebounce is the quiet period before a scheduled snapshot is written.
const DefaultDebounce = 500 * time.Millisecond

// Sink stores a full snapshot of task-like rows.
type Sink interface {
	Save(ctx context.Context, rows []domain.Row) error
}

// SQLiteSink writes snapshots through a task row repository inside one
// transaction, so a failed write leaves the previous snapshot intact.
type SQLiteSink struct {
	uow db.UnitOfWork
}

// NewSQLiteSink creates a SQLiteSink.
func NewSQLiteSink(uow db.UnitOfWork) *SQLiteSink {
	return &SQLiteSink{uow: uow}
}

func (s *SQLiteSink) Save(ctx context.Context, rows []domain.Row) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteTaskRowRepo(tx).ReplaceAll(ctx, rows)
	})
}

// Options tunes a Saver.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Saver debounces snapshot writes. Schedule is cheap and never blocks on
// storage; the write happens on a timer goroutine once the debounce window
// passes without another Schedule. It satisfies grid.Persister.
type Saver struct {
	sink     Sink
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending []domain.Row
	dirty   bool
	lastErr error
	writes  int

	// writeMu serializes sink writes between the timer and Flush.
	writeMu sync.Mutex
}

// NewSaver creates a Saver writing to sink.
func NewSaver(sink Sink, opts Options) *Saver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saver{sink: sink, debounce: debounce, logger: logger}
}

// Schedule records rows as the latest snapshot and restarts the debounce
// window. Only task-like rows are kept, as deep copies.
func (s *Saver) Schedule(rows []domain.Row) {
	if s == nil {
		return
	}
	snap := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if r.IsTaskLike() {
			snap = append(snap, r.Clone())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = snap
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Saver) onTimer() {
	_ = s.write(context.Background(), "debounce")
}

// Flush writes the pending snapshot now, if there is one.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.write(ctx, "flush")
}

// Pending reports whether a scheduled snapshot has not been written yet.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Err returns the error of the latest write, or nil.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Writes returns how many snapshots reached the sink successfully.
func (s *Saver) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Saver) write(ctx context.Context, trigger string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	rows := s.pending
	s.pending, s.dirty = nil, false
	s.mu.Unlock()

	startedAt := time.Now()
	err := s.sink.Save(ctx, rows)
	attrs := []any{
		"trigger", trigger,
		"rows", len(rows),
		"duration_ms", time.Since(startedAt).Milliseconds(),
		"success", err == nil,
	}

	s.mu.Lock()
	s.lastErr = err
	if err != nil {
		// Keep the snapshot for the next attempt unless a newer one arrived.
		if !s.dirty {
			s.pending, s.dirty = rows, true
		}
	} else {
		s.writes++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("persist_flush", append(attrs, "error", err.Error())...)
		return err
	}
	s.logger.Info("persist_flush", attrs...)
	return nil
}
