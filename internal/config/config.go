// Package config reads plansheet settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds every setting the binary wires from.
type Config struct {
	DBPath          string
	PlanPath        string
	HistoryCap      int
	DragThreshold   float64
	PersistDebounce time.Duration
	Log             bool
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		DBPath:          filepath.Join(homeDir(), ".plansheet", "plansheet.db"),
		PlanPath:        defaultPlanPath(),
		HistoryCap:      100,
		DragThreshold:   5,
		PersistDebounce: 500 * time.Millisecond,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for unset or malformed values.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("PLANSHEET_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANSHEET_PLAN"); v != "" {
		cfg.PlanPath = v
	}
	if v := os.Getenv("PLANSHEET_HISTORY_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryCap = n
		}
	}
	if v := os.Getenv("PLANSHEET_DRAG_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.DragThreshold = f
		}
	}
	if v := os.Getenv("PLANSHEET_PERSIST_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PersistDebounce = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("PLANSHEET_LOG"); v != "" {
		cfg.Log, _ = strconv.ParseBool(v)
	}

	return cfg
}

// defaultPlanPath prefers ./plan.yaml in the working directory, then the
// per-user plan.
func defaultPlanPath() string {
	if stat, err := os.Stat("plan.yaml"); err == nil && !stat.IsDir() {
		return "plan.yaml"
	}
	return filepath.Join(homeDir(), ".plansheet", "plan.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
