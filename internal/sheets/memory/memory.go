package memory

import (
	"context"
	"fmt"
	"sync"

	ports "pfdash/internal/sheets"
)

// Store is an in-memory history sink for local runs and tests.
type Store struct {
	mu   sync.Mutex
	rows []ports.HistoryRow
}

func New() *Store {
	return &Store{}
}

// AppendHistoryRow stores the row and returns a synthetic row reference.
func (s *Store) AppendHistoryRow(_ context.Context, row ports.HistoryRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the appended rows.
func (s *Store) Rows() []ports.HistoryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.HistoryRow(nil), s.rows...)
}

var _ ports.HistoryWriter = (*Store)(nil)
