package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alexanderramin/plansheet/internal/cli"
	"github.com/alexanderramin/plansheet/internal/config"
	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/alexanderramin/plansheet/internal/grid"
	"github.com/alexanderramin/plansheet/internal/persist"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/alexanderramin/plansheet/internal/rowstore"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)

	p, err := loadPlan(cfg.PlanPath)
	if err != nil {
		return err
	}

	// Rebuild the sheet from the plan and overlay the last saved snapshot.
	saved, err := persist.LoadSnapshot(ctx, database)
	if err != nil {
		return err
	}
	rows := persist.Merge(plan.Build(p, persist.SavedIDs(saved)), saved, p.Days)

	logger := slog.New(slog.DiscardHandler)
	var observer grid.Observer = grid.NoopObserver{}
	if cfg.Log {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		observer = grid.NewLogObserver(logger)
	}

	saver := persist.NewSaver(persist.NewSQLiteSink(uow), persist.Options{
		Debounce: cfg.PersistDebounce,
		Logger:   logger,
	})
	sheet := grid.New(rowstore.New(p.Days, rows), grid.Config{
		HistoryCap:    cfg.HistoryCap,
		DragThreshold: cfg.DragThreshold,
		Persister:     saver,
		Observer:      observer,
	})

	app := &cli.App{
		Sheet: sheet,
		Plan:  p,
		State: repository.NewSQLiteSheetStateRepo(database),
		Saver: saver,
	}

	// Detect interactive terminal for the full-screen sheet.
	app.IsInteractive = func() bool {
		in, out := os.Stdin.Fd(), os.Stdout.Fd()
		return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
			(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	execErr := rootCmd.ExecuteContext(ctx)

	// A failed command may still have scheduled a write.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := saver.Flush(flushCtx); err != nil && execErr == nil {
		return fmt.Errorf("saving sheet: %w", err)
	}
	return execErr
}

// loadPlan reads the plan document, falling back to a one-project plan
// starting today when there is none yet.
func loadPlan(path string) (*plan.Plan, error) {
	p, err := plan.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return plan.Default(time.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading plan %s: %w", path, err)
	}
	return p, nil
}
