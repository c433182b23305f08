/*
Package xlsx stores tables as sheets of an .xlsx workbook.

PURPOSE:
  A local stand-in for the remote spreadsheet. One workbook file holds the
  roster, status and conduct sheets; row 1 of each sheet is the header and
  data starts at row 2, so storage row numbers match what a person sees
  when they open the file.

WRITES:
  Every Append, UpdateCell and DeleteRow saves the workbook before
  returning. There is no batching and no cross-call atomicity.

CELL TYPES:
  excelize returns every cell as a string. Numbers written by Append are
  stored as numbers and read back as their text form.

SEE ALSO:
  - generic/store.go: Table interface
  - store/sqlite/sqlite.go: SQLite equivalent
*/
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/warp/parade-state/generic"
)

const defaultSheet = "Sheet1"

// Workbook is an open .xlsx file shared by its tables.
type Workbook struct {
	mu      sync.Mutex
	path    string
	file    *excelize.File
	created bool
}

// Open loads path, or starts a new workbook that will be saved to path on
// the first write. An empty path keeps the workbook in memory.
func Open(path string) (*Workbook, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			f, err := excelize.OpenFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open workbook: %w", err)
			}
			return &Workbook{path: path, file: f}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat workbook: %w", err)
		}
	}
	return &Workbook{path: path, file: excelize.NewFile(), created: true}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Table returns the named sheet, creating it with header when missing.
func (w *Workbook) Table(sheet string, header []string) (*Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx == -1 {
		if _, err := w.file.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		if len(header) > 0 {
			if err := w.file.SetSheetRow(sheet, "A1", &header); err != nil {
				return nil, fmt.Errorf("failed to write header of %q: %w", sheet, err)
			}
		}
		if w.created && sheet != defaultSheet {
			if i, _ := w.file.GetSheetIndex(defaultSheet); i != -1 {
				if err := w.file.DeleteSheet(defaultSheet); err != nil {
					return nil, fmt.Errorf("failed to drop default sheet: %w", err)
				}
			}
		}
		if err := w.saveLocked(); err != nil {
			return nil, err
		}
	}
	return &Table{book: w, sheet: sheet}, nil
}

// WriteTo streams the workbook in .xlsx format.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.WriteTo(out)
}

func (w *Workbook) saveLocked() error {
	if w.path == "" {
		return nil
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// TABLE (generic.Table interface)
// =============================================================================

// Table is one sheet of a Workbook.
type Table struct {
	book  *Workbook
	sheet string
}

var _ generic.Table = (*Table)(nil)

func (t *Table) Name() string { return t.sheet }

// ReadAll returns every row below the header.
func (t *Table) ReadAll(_ context.Context) ([]generic.Row, error) {
	t.book.mu.Lock()
	defer t.book.mu.Unlock()

	rows, err := t.book.file.GetRows(t.sheet)
	if err != nil {
		return nil, t.fail("read", 0, err)
	}
	var result []generic.Row
	for i := generic.HeaderRows; i < len(rows); i++ {
		cells := make([]any, len(rows[i]))
		for j, v := range rows[i] {
			cells[j] = v
		}
		result = append(result, generic.Row{Number: i + 1, Cells: cells})
	}
	return result, nil
}

// Append writes a row below the last non-empty row.
func (t *Table) Append(_ context.Context, cells []any) error {
	t.book.mu.Lock()
	defer t.book.mu.Unlock()

	rows, err := t.book.file.GetRows(t.sheet)
	if err != nil {
		return t.fail("append", 0, err)
	}
	next := len(rows) + 1
	if next <= generic.HeaderRows {
		next = generic.HeaderRows + 1
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return t.fail("append", next, err)
	}
	if err := t.book.file.SetSheetRow(t.sheet, cell, &cells); err != nil {
		return t.fail("append", next, err)
	}
	if err := t.book.saveLocked(); err != nil {
		return t.fail("append", next, err)
	}
	return nil
}

// UpdateCell overwrites one cell.
func (t *Table) UpdateCell(_ context.Context, row, col int, value any) error {
	if row <= generic.HeaderRows {
		return t.fail("update", row, fmt.Errorf("row %d is not a data row", row))
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return t.fail("update", row, err)
	}

	t.book.mu.Lock()
	defer t.book.mu.Unlock()

	if err := t.book.file.SetCellValue(t.sheet, cell, value); err != nil {
		return t.fail("update", row, err)
	}
	if err := t.book.saveLocked(); err != nil {
		return t.fail("update", row, err)
	}
	return nil
}

// DeleteRow removes a row; excelize shifts later rows up.
func (t *Table) DeleteRow(_ context.Context, row int) error {
	if row <= generic.HeaderRows {
		return t.fail("delete", row, fmt.Errorf("row %d is not a data row", row))
	}

	t.book.mu.Lock()
	defer t.book.mu.Unlock()

	if err := t.book.file.RemoveRow(t.sheet, row); err != nil {
		return t.fail("delete", row, err)
	}
	if err := t.book.saveLocked(); err != nil {
		return t.fail("delete", row, err)
	}
	return nil
}

func (t *Table) fail(op string, row int, err error) error {
	return &generic.StoreError{Table: t.sheet, Op: op, Row: row, Err: err}
}
