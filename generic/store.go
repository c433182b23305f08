/*
store.go - Tabular store contract

PURPOSE:
  Defines the interface between the domain logic and whatever holds the
  rows: an in-memory slice, a SQLite file, an .xlsx workbook, or a remote
  spreadsheet. The contract mirrors a spreadsheet: rows and columns are
  addressed by 1-based index and row 1 is the header.

KEY INTERFACES:
  Table: ReadAll, Append, UpdateCell, DeleteRow

POSITIONAL SEMANTICS:
  - Row.Number is the sheet row number of a data row (first data row = 2).
  - DeleteRow shifts every later row up by one. Callers deleting several
    rows must go from the bottom up.
  - No transactions: a multi-call update can partially apply.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go:  SQLite file or :memory:
  - store/xlsx/xlsx.go:      excelize workbook
  - store/cache/cache.go:    TTL read-through decorator

SEE ALSO:
  - factory/rows.go: Decodes rows into typed records
*/
package generic

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HeaderRows is the number of rows above the first data row.
const HeaderRows = 1

// Row is one data row with its storage position.
type Row struct {
	Number int
	Cells  []any
}

// Cell returns the 1-based column value, or nil when the row is short.
func (r Row) Cell(col int) any {
	if col < 1 || col > len(r.Cells) {
		return nil
	}
	return r.Cells[col-1]
}

// Table handles positional persistence of rows.
type Table interface {
	// Name identifies the table (sheet name) in logs and errors.
	Name() string

	// ReadAll returns all data rows in sheet order.
	ReadAll(ctx context.Context) ([]Row, error)

	// Append writes a new row after the last one.
	Append(ctx context.Context, cells []any) error

	// UpdateCell overwrites one cell. row and col are 1-based.
	UpdateCell(ctx context.Context, row, col int, value any) error

	// DeleteRow removes a row; later rows shift up.
	DeleteRow(ctx context.Context, row int) error
}

// =============================================================================
// CELL COERCION - Spreadsheet cells arrive as strings, numbers or nothing
// =============================================================================

// CellString renders a raw cell as trimmed text. Whole floats lose their
// fractional part so 5052025.0 reads as "5052025".
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return CellString(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// CellInt reads a cell as an integer. ok is false for blanks and non-numbers.
func CellInt(v any) (n int, ok bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		return int(x), true
	case float32:
		return int(x), true
	}
	s := CellString(v)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
