// Package store provides Table implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/parade-state/generic"
)

// =============================================================================
// MEMORY TABLE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	name string
	rows [][]any
}

// NewMemory creates a table pre-filled with data rows (header excluded).
func NewMemory(name string, rows ...[]any) *Memory {
	m := &Memory{name: name}
	for _, r := range rows {
		m.rows = append(m.rows, append([]any(nil), r...))
	}
	return m
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) ReadAll(_ context.Context) ([]generic.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Row, len(m.rows))
	for i, cells := range m.rows {
		result[i] = generic.Row{
			Number: i + 1 + generic.HeaderRows,
			Cells:  append([]any(nil), cells...),
		}
	}
	return result, nil
}

// Append adds a row at the end.
func (m *Memory) Append(_ context.Context, cells []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append([]any(nil), cells...))
	return nil
}

// UpdateCell overwrites one cell, growing the row if needed.
func (m *Memory) UpdateCell(_ context.Context, row, col int, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexLocked(row)
	if err != nil {
		return err
	}
	if col < 1 {
		return &generic.StoreError{Table: m.name, Op: "update", Row: row, Err: fmt.Errorf("column %d out of range", col)}
	}
	for len(m.rows[i]) < col {
		m.rows[i] = append(m.rows[i], nil)
	}
	m.rows[i][col-1] = value
	return nil
}

// DeleteRow removes a row; later rows shift up like a spreadsheet.
func (m *Memory) DeleteRow(_ context.Context, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexLocked(row)
	if err != nil {
		return err
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return nil
}

// Len returns the number of data rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

func (m *Memory) indexLocked(row int) (int, error) {
	i := row - 1 - generic.HeaderRows
	if i < 0 || i >= len(m.rows) {
		return 0, &generic.StoreError{Table: m.name, Op: "locate", Row: row, Err: fmt.Errorf("row %d out of range", row)}
	}
	return i, nil
}

var _ generic.Table = (*Memory)(nil)
