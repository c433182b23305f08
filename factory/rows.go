/*
Package factory converts raw table rows into typed records and back.

PURPOSE:
  The store hands back loosely typed cells: strings, numbers, blanks. The
  factory is the boundary where those become paradestate.Person,
  paradestate.StatusEntry and conduct.Record values. Malformed rows are
  rejected here with an error naming the problem, never passed inward as
  maps.

COLUMN LAYOUT (1-based, order matters):
  Roster:  identifier | name | group | leaves remaining | leave dates
  Status:  group | identifier | kind | start | end | submitter
  Conduct: date | group | conduct | total | participating | outliers |
           remarks | submitter

DEFAULTS:
  - Missing or unparseable leave balance: the configured default (14)
  - Dates are normalized to 8 digits but NOT validated; reconciler and
    ledger parse them strictly when they need to compare

USAGE:
  f := factory.NewRowFactory(14)
  people, skipped := f.People(rows)

SEE ALSO:
  - generic/store.go: Row and Table
  - paradestate/normalize.go: Identifier and date normalization
*/
package factory

import (
	"fmt"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// COLUMN LAYOUT
// =============================================================================

const (
	RosterColID = iota + 1
	RosterColName
	RosterColGroup
	RosterColBalance
	RosterColLedger
)

const (
	StatusColGroup = iota + 1
	StatusColID
	StatusColKind
	StatusColStart
	StatusColEnd
	StatusColSubmitter
)

const (
	ConductColDate = iota + 1
	ConductColGroup
	ConductColName
	ConductColTotal
	ConductColParticipating
	ConductColOutliers
	ConductColRemarks
	ConductColSubmitter
)

// Header rows written when a backend creates a fresh sheet.
var (
	RosterHeader  = []string{"Identifier", "Name", "Group", "Leaves Remaining", "Leave Dates"}
	StatusHeader  = []string{"Group", "Identifier", "Status", "Start", "End", "Submitted By"}
	ConductHeader = []string{"Date", "Group", "Conduct", "Total", "Participating", "Outliers", "Remarks", "Submitted By"}
)

// =============================================================================
// ROW FACTORY
// =============================================================================

// RowIssue is a row dropped during decoding.
type RowIssue struct {
	Table string
	Row   int
	Err   error
}

func (i RowIssue) Error() string {
	return fmt.Sprintf("%s row %d: %v", i.Table, i.Row, i.Err)
}

func (i RowIssue) Unwrap() error { return i.Err }

// RowFactory decodes and encodes table rows.
type RowFactory struct {
	defaultBalance int
}

// NewRowFactory creates a factory. A non-positive defaultBalance falls back
// to paradestate.DefaultLeaveBalance.
func NewRowFactory(defaultBalance int) *RowFactory {
	if defaultBalance <= 0 {
		defaultBalance = paradestate.DefaultLeaveBalance
	}
	return &RowFactory{defaultBalance: defaultBalance}
}

// Person decodes a roster row.
func (f *RowFactory) Person(row generic.Row) (paradestate.Person, error) {
	id, err := paradestate.NormalizeIdentifier(row.Cell(RosterColID))
	if err != nil {
		return paradestate.Person{}, err
	}
	balance, ok := generic.CellInt(row.Cell(RosterColBalance))
	if !ok {
		balance = f.defaultBalance
	}
	return paradestate.Person{
		ID:           id,
		Name:         paradestate.DisplayLabel(row.Cell(RosterColName)),
		Group:        paradestate.DisplayLabel(row.Cell(RosterColGroup)),
		LeaveBalance: balance,
		LeaveLedger:  generic.CellString(row.Cell(RosterColLedger)),
		Row:          row.Number,
	}, nil
}

// PersonCells encodes a person for Append.
func (f *RowFactory) PersonCells(p paradestate.Person) []any {
	return []any{string(p.ID), p.Name, p.Group, p.LeaveBalance, p.LeaveLedger}
}

// People decodes a roster table, dropping malformed rows.
func (f *RowFactory) People(rows []generic.Row) ([]paradestate.Person, []RowIssue) {
	var people []paradestate.Person
	var issues []RowIssue
	for _, row := range rows {
		p, err := f.Person(row)
		if err != nil {
			issues = append(issues, RowIssue{Table: "roster", Row: row.Number, Err: err})
			continue
		}
		people = append(people, p)
	}
	return people, issues
}

// StatusEntry decodes a status row. Dates are normalized, not validated.
func (f *RowFactory) StatusEntry(row generic.Row) (paradestate.StatusEntry, error) {
	id, err := paradestate.NormalizeIdentifier(row.Cell(StatusColID))
	if err != nil {
		return paradestate.StatusEntry{}, err
	}
	return paradestate.StatusEntry{
		Group:     paradestate.DisplayLabel(row.Cell(StatusColGroup)),
		ID:        id,
		Kind:      paradestate.DisplayLabel(row.Cell(StatusColKind)),
		Start:     paradestate.NormalizeDate(row.Cell(StatusColStart)),
		End:       paradestate.NormalizeDate(row.Cell(StatusColEnd)),
		Submitter: paradestate.DisplayLabel(row.Cell(StatusColSubmitter)),
		Row:       row.Number,
	}, nil
}

// StatusCells encodes a status entry for Append.
func (f *RowFactory) StatusCells(s paradestate.StatusEntry) []any {
	return []any{s.Group, string(s.ID), s.Kind, s.Start, s.End, s.Submitter}
}

// Statuses decodes a status table, dropping rows without a valid identifier.
func (f *RowFactory) Statuses(rows []generic.Row) ([]paradestate.StatusEntry, []RowIssue) {
	var entries []paradestate.StatusEntry
	var issues []RowIssue
	for _, row := range rows {
		st, err := f.StatusEntry(row)
		if err != nil {
			issues = append(issues, RowIssue{Table: "status", Row: row.Number, Err: err})
			continue
		}
		entries = append(entries, st)
	}
	return entries, issues
}

// Conduct decodes a conduct row.
func (f *RowFactory) Conduct(row generic.Row) (conduct.Record, error) {
	date := paradestate.NormalizeDate(row.Cell(ConductColDate))
	if date == "" {
		return conduct.Record{}, &generic.MissingFieldError{Field: "date"}
	}
	total, _ := generic.CellInt(row.Cell(ConductColTotal))
	participating, _ := generic.CellInt(row.Cell(ConductColParticipating))
	return conduct.Record{
		Date:          date,
		Group:         paradestate.DisplayLabel(row.Cell(ConductColGroup)),
		Name:          paradestate.DisplayLabel(row.Cell(ConductColName)),
		Total:         total,
		Participating: participating,
		Outliers:      generic.CellString(row.Cell(ConductColOutliers)),
		Remarks:       generic.CellString(row.Cell(ConductColRemarks)),
		Submitter:     generic.CellString(row.Cell(ConductColSubmitter)),
		Row:           row.Number,
	}, nil
}

// ConductCells encodes a conduct record for Append.
func (f *RowFactory) ConductCells(r conduct.Record) []any {
	return []any{r.Date, r.Group, r.Name, r.Total, r.Participating, r.Outliers, r.Remarks, r.Submitter}
}

// Conducts decodes a conduct table, dropping rows without a date.
func (f *RowFactory) Conducts(rows []generic.Row) ([]conduct.Record, []RowIssue) {
	var records []conduct.Record
	var issues []RowIssue
	for _, row := range rows {
		rec, err := f.Conduct(row)
		if err != nil {
			issues = append(issues, RowIssue{Table: "conduct", Row: row.Number, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, issues
}
