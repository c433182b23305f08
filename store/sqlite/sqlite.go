/*
Package sqlite provides a SQLite-backed implementation of generic.Table.

PURPOSE:
  Persists spreadsheet-shaped tables in a single SQLite file. Each logical
  table (roster, status, conduct) is a "sheet": a set of rows keyed by
  sheet name and 1-based row position, cells stored as a JSON array. This
  keeps the positional contract of the remote spreadsheet while running
  locally.

KEY TABLE:
  sheet_rows: (sheet, position) -> cells_json

POSITIONAL SEMANTICS:
  - position is the sheet row number; row 1 is the (implicit) header, so
    the first data row is 2
  - DeleteRow removes a row and shifts every later row up by one, inside
    a single SQL transaction

CELL TYPES:
  Cells round-trip through encoding/json: strings stay strings, numbers
  come back as float64. The factory normalizes both.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection so that
  ":memory:" databases are shared by every caller.

USAGE:
  store, err := sqlite.New("./data/parade.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  roster := store.Table("roster")

SEE ALSO:
  - generic/store.go: Table interface
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/parade-state/generic"
)

// Store holds every sheet in one database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet TEXT NOT NULL,
		position INTEGER NOT NULL,
		cells_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (sheet, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Table returns the sheet with the given name. Sheets exist implicitly.
func (s *Store) Table(name string) *Table {
	return &Table{store: s, name: name}
}

// =============================================================================
// TABLE (generic.Table interface)
// =============================================================================

// Table is one sheet inside a Store.
type Table struct {
	store *Store
	name  string
}

var _ generic.Table = (*Table)(nil)

func (t *Table) Name() string { return t.name }

// ReadAll returns all rows ordered by position.
func (t *Table) ReadAll(ctx context.Context) ([]generic.Row, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	rows, err := t.store.db.QueryContext(ctx,
		"SELECT position, cells_json FROM sheet_rows WHERE sheet = ? ORDER BY position",
		t.name,
	)
	if err != nil {
		return nil, t.fail("read", 0, err)
	}
	defer rows.Close()

	var result []generic.Row
	for rows.Next() {
		var position int
		var cellsJSON string
		if err := rows.Scan(&position, &cellsJSON); err != nil {
			return nil, t.fail("read", 0, err)
		}
		cells, err := decodeCells(cellsJSON)
		if err != nil {
			return nil, t.fail("read", position, err)
		}
		result = append(result, generic.Row{Number: position, Cells: cells})
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("read", 0, err)
	}
	return result, nil
}

// Append writes a row after the current last row.
func (t *Table) Append(ctx context.Context, cells []any) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	cellsJSON, err := json.Marshal(cells)
	if err != nil {
		return t.fail("append", 0, err)
	}

	query := `
		INSERT INTO sheet_rows (sheet, position, cells_json, updated_at)
		SELECT ?, COALESCE(MAX(position), ?) + 1, ?, ?
		FROM sheet_rows WHERE sheet = ?
	`
	_, err = t.store.db.ExecContext(ctx, query,
		t.name, generic.HeaderRows, string(cellsJSON), now(), t.name,
	)
	if err != nil {
		return t.fail("append", 0, err)
	}
	return nil
}

// UpdateCell overwrites one cell, padding the row with blanks if needed.
func (t *Table) UpdateCell(ctx context.Context, row, col int, value any) error {
	if col < 1 {
		return t.fail("update", row, fmt.Errorf("column %d out of range", col))
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return t.fail("update", row, err)
	}
	defer tx.Rollback()

	var cellsJSON string
	err = tx.QueryRowContext(ctx,
		"SELECT cells_json FROM sheet_rows WHERE sheet = ? AND position = ?",
		t.name, row,
	).Scan(&cellsJSON)
	if err == sql.ErrNoRows {
		return t.fail("update", row, fmt.Errorf("row %d out of range", row))
	}
	if err != nil {
		return t.fail("update", row, err)
	}

	cells, err := decodeCells(cellsJSON)
	if err != nil {
		return t.fail("update", row, err)
	}
	for len(cells) < col {
		cells = append(cells, nil)
	}
	cells[col-1] = value

	updated, err := json.Marshal(cells)
	if err != nil {
		return t.fail("update", row, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE sheet_rows SET cells_json = ?, updated_at = ? WHERE sheet = ? AND position = ?",
		string(updated), now(), t.name, row,
	); err != nil {
		return t.fail("update", row, err)
	}
	if err := tx.Commit(); err != nil {
		return t.fail("update", row, err)
	}
	return nil
}

// DeleteRow removes a row and shifts later rows up.
func (t *Table) DeleteRow(ctx context.Context, row int) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return t.fail("delete", row, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM sheet_rows WHERE sheet = ? AND position = ?", t.name, row)
	if err != nil {
		return t.fail("delete", row, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return t.fail("delete", row, fmt.Errorf("row %d out of range", row))
	}

	// Two passes through negative positions so the primary key never
	// collides while rows move up.
	if _, err := tx.ExecContext(ctx,
		"UPDATE sheet_rows SET position = -(position - 1) WHERE sheet = ? AND position > ?",
		t.name, row,
	); err != nil {
		return t.fail("delete", row, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE sheet_rows SET position = -position WHERE sheet = ? AND position < 0",
		t.name,
	); err != nil {
		return t.fail("delete", row, err)
	}

	if err := tx.Commit(); err != nil {
		return t.fail("delete", row, err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears every sheet (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM sheet_rows")
	return err
}

func (t *Table) fail(op string, row int, err error) error {
	return &generic.StoreError{Table: t.name, Op: op, Row: row, Err: err}
}

func decodeCells(cellsJSON string) ([]any, error) {
	var cells []any
	if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
