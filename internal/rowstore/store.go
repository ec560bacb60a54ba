// Package rowstore holds the canonical ordered row list. It is the single
// source of truth for the grid: every other component reads snapshots from
// it and writes back through SetRows or Replace only.
package rowstore

import (
	"github.com/alexanderramin/plansheet/internal/domain"
)

// Store is the canonical ordered list of rows. It is not safe for concurrent
// use; the grid runs on a single event loop.
type Store struct {
	rows      []domain.Row
	index     map[string]int
	totalDays int
	version   uint64
}

// New creates a store for a grid with totalDays day columns and loads rows.
func New(totalDays int, rows []domain.Row) *Store {
	s := &Store{totalDays: max(totalDays, 0)}
	s.SetRows(rows)
	return s
}

// TotalDays returns the number of day columns every task-like row carries.
func (s *Store) TotalDays() int { return s.totalDays }

// Rows returns the current snapshot. Callers must treat it as read-only; a
// new slice is installed on every change, so holding a snapshot is safe.
func (s *Store) Rows() []domain.Row { return s.rows }

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Version increases on every accepted change.
func (s *Store) Version() uint64 { return s.version }

// Get returns the row with the given id.
func (s *Store) Get(id string) (domain.Row, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Row{}, false
	}
	return s.rows[i], true
}

// IndexOf returns the position of id, or -1.
func (s *Store) IndexOf(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// SetRows replaces the whole list. Rows with an empty or repeated id are
// dropped (the first occurrence wins) and task-like rows get their day
// entries normalized to TotalDays.
func (s *Store) SetRows(next []domain.Row) {
	rows := make([]domain.Row, 0, len(next))
	index := make(map[string]int, len(next))
	for _, r := range next {
		if r.ID == "" {
			continue
		}
		if _, dup := index[r.ID]; dup {
			continue
		}
		if r.Task != nil && len(r.Task.DayEntries) != s.totalDays {
			r = r.Clone()
			r.Task.DayEntries = domain.NormalizeDayEntries(r.Task.DayEntries, s.totalDays)
		}
		index[r.ID] = len(rows)
		rows = append(rows, r)
	}
	s.rows = rows
	s.index = index
	s.version++
}

// Replace swaps in the row with the same id. It reports false when no row
// has that id.
func (s *Store) Replace(row domain.Row) bool {
	i, ok := s.index[row.ID]
	if !ok {
		return false
	}
	if row.Task != nil && len(row.Task.DayEntries) != s.totalDays {
		row = row.Clone()
		row.Task.DayEntries = domain.NormalizeDayEntries(row.Task.DayEntries, s.totalDays)
	}
	next := make([]domain.Row, len(s.rows))
	copy(next, s.rows)
	next[i] = row
	s.rows = next
	s.version++
	return true
}

// IDs returns the row ids in order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.rows))
	for i, r := range s.rows {
		ids[i] = r.ID
	}
	return ids
}
