package app

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/warp/parade-state/factory"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// Outcome actions for a submitted row.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionUnchanged = "unchanged"
	ActionRejected  = "rejected"
)

// StatusInput is one row of an edited status view. Row is the storage row
// of an existing entry, 0 for a new one. Blanking status, start and end on
// an existing row deletes it.
type StatusInput struct {
	Row    int    `json:"row"`
	ID     string `json:"id"`
	Group  string `json:"group"`
	Status string `json:"status"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (in StatusInput) blank() bool {
	return strings.TrimSpace(in.Status) == "" &&
		strings.TrimSpace(in.Start) == "" &&
		strings.TrimSpace(in.End) == ""
}

// RowOutcome reports what happened to one submitted row.
type RowOutcome struct {
	Index   int    `json:"index"`
	Row     int    `json:"row,omitempty"`
	ID      string `json:"id,omitempty"`
	Action  string `json:"action"`
	Balance *int   `json:"balance,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// BatchResult is the outcome of a status submission, one entry per row that
// was acted on. Untouched blank rows produce no outcome.
type BatchResult struct {
	Outcomes []RowOutcome `json:"outcomes"`
}

// Count returns how many outcomes have action.
func (r BatchResult) Count(action string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// batch holds the snapshot a submission validates against. It is updated as
// rows are written so later rows in the same batch see earlier ones.
type batch struct {
	submitter string
	roster    []paradestate.Person
	statuses  []paradestate.StatusEntry
	deletions []RowOutcome
}

// SubmitStatuses validates and writes each row independently. A rejected
// row or a failed write never aborts the rest of the batch. Deletions are
// applied last, highest row first, so updates keep valid row references.
func (s *Service) SubmitStatuses(ctx context.Context, submitter string, rows []StatusInput) (BatchResult, error) {
	roster, statuses, err := s.loadRosterAndStatuses(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	b := &batch{
		submitter: paradestate.DisplayLabel(submitter),
		roster:    roster,
		statuses:  statuses,
	}

	result := BatchResult{Outcomes: []RowOutcome{}}
	for i, in := range rows {
		out, ok := s.submitRow(ctx, b, i, in)
		if !ok {
			continue
		}
		if out.Err != nil {
			out.Action = ActionRejected
			out.Error = out.Err.Error()
			s.log.Warn("Rejected status row",
				zap.Int("index", i),
				zap.String("id", out.ID),
				zap.Int("row", out.Row),
				zap.Error(out.Err))
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	sort.SliceStable(b.deletions, func(i, j int) bool { return b.deletions[i].Row > b.deletions[j].Row })
	for _, out := range b.deletions {
		if err := s.tables.Status.DeleteRow(ctx, out.Row); err != nil {
			out.Err = storeErr(s.tables.Status, "delete", out.Row, err)
			out.Action = ActionRejected
			out.Error = out.Err.Error()
			s.log.Error("Failed to delete status row", zap.Int("row", out.Row), zap.Error(out.Err))
		} else {
			out.Action = ActionDeleted
		}
		result.Outcomes = append(result.Outcomes, out)
	}
	sort.SliceStable(result.Outcomes, func(i, j int) bool { return result.Outcomes[i].Index < result.Outcomes[j].Index })

	s.log.Info("Processed status submission",
		zap.String("submitter", b.submitter),
		zap.Int("rows", len(rows)),
		zap.Int("created", result.Count(ActionCreated)),
		zap.Int("updated", result.Count(ActionUpdated)),
		zap.Int("deleted", result.Count(ActionDeleted)),
		zap.Int("rejected", result.Count(ActionRejected)))
	return result, nil
}

// submitRow handles one row. ok is false for blank rows that need no outcome.
func (s *Service) submitRow(ctx context.Context, b *batch, index int, in StatusInput) (out RowOutcome, ok bool) {
	out = RowOutcome{Index: index, Row: in.Row, ID: strings.TrimSpace(in.ID)}
	if in.Row <= 0 && in.blank() {
		return out, false
	}

	id, err := paradestate.NormalizeIdentifier(in.ID)
	if err != nil {
		out.Err = err
		return out, true
	}
	out.ID = string(id)

	var existing *paradestate.StatusEntry
	if in.Row > 0 {
		existing = b.entryAt(in.Row)
		if existing == nil || existing.ID != id {
			out.Err = &generic.MissingFieldError{Field: "row"}
			return out, true
		}
	}

	if existing != nil && in.blank() {
		b.deletions = append(b.deletions, out)
		b.drop(in.Row)
		return out, false
	}

	entry, err := s.entryFromInput(b, id, in)
	if err != nil {
		out.Err = err
		return out, true
	}
	if existing != nil && sameEntry(*existing, entry) {
		out.Action = ActionUnchanged
		return out, true
	}

	if paradestate.IsLeave(entry.Kind) {
		balance, err := s.chargeLeave(ctx, b, entry)
		if err != nil {
			out.Err = err
			return out, true
		}
		out.Balance = &balance
	}

	if existing != nil {
		if err := s.updateStatusRow(ctx, in.Row, entry); err != nil {
			out.Err = err
			return out, true
		}
		*existing = entry
		out.Action = ActionUpdated
		return out, true
	}

	if err := s.tables.Status.Append(ctx, s.rows.StatusCells(entry)); err != nil {
		out.Err = storeErr(s.tables.Status, "append", 0, err)
		return out, true
	}
	b.statuses = append(b.statuses, entry)
	out.Action = ActionCreated
	return out, true
}

// entryFromInput validates the required fields and builds the entry to write.
func (s *Service) entryFromInput(b *batch, id paradestate.PersonID, in StatusInput) (paradestate.StatusEntry, error) {
	kind := paradestate.DisplayLabel(in.Status)
	if kind == "" {
		return paradestate.StatusEntry{}, &generic.MissingFieldError{Field: "status"}
	}
	start, err := requiredDate("start", in.Start)
	if err != nil {
		return paradestate.StatusEntry{}, err
	}
	end, err := requiredDate("end", in.End)
	if err != nil {
		return paradestate.StatusEntry{}, err
	}
	if _, err := generic.NewRange(start, end); err != nil {
		return paradestate.StatusEntry{}, err
	}

	group := paradestate.DisplayLabel(in.Group)
	if p, found := paradestate.FindPerson(id, b.roster); found {
		group = p.Group
	}
	return paradestate.StatusEntry{
		Group:     group,
		ID:        id,
		Kind:      kind,
		Start:     start,
		End:       end,
		Submitter: b.submitter,
		Row:       in.Row,
	}, nil
}

func requiredDate(field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &generic.MissingFieldError{Field: field}
	}
	date := paradestate.NormalizeDate(raw)
	if date == "" {
		return "", &generic.MalformedDateError{Value: raw, Reason: "not a DDMMYYYY date"}
	}
	return date, nil
}

// chargeLeave authorizes a leave entry and writes the new balance and ledger
// to the roster. A person missing from the roster is charged against the
// default balance and nothing is written.
func (s *Service) chargeLeave(ctx context.Context, b *batch, entry paradestate.StatusEntry) (int, error) {
	var person *paradestate.Person
	for i := range b.roster {
		if b.roster[i].ID == entry.ID {
			person = &b.roster[i]
			break
		}
	}

	grant, err := s.ledger.Authorize(paradestate.LeaveRequest{
		ID:    entry.ID,
		Start: entry.Start,
		End:   entry.End,
		Row:   entry.Row,
	}, person, b.statuses)
	if err != nil {
		return 0, err
	}

	if person == nil || person.Row <= 0 {
		s.log.Warn("Leave granted for identifier not on roster, balance not recorded",
			zap.String("id", string(entry.ID)), zap.Int("days", grant.Days))
		return grant.Balance, nil
	}

	if err := s.tables.Roster.UpdateCell(ctx, person.Row, factory.RosterColBalance, grant.Balance); err != nil {
		return 0, storeErr(s.tables.Roster, "update", person.Row, err)
	}
	if err := s.tables.Roster.UpdateCell(ctx, person.Row, factory.RosterColLedger, grant.Ledger); err != nil {
		return 0, storeErr(s.tables.Roster, "update", person.Row, err)
	}
	person.LeaveBalance = grant.Balance
	person.LeaveLedger = grant.Ledger

	s.log.Info("Granted leave",
		zap.String("id", string(entry.ID)),
		zap.String("range", grant.Range.String()),
		zap.Int("days", grant.Days),
		zap.Int("previous_balance", grant.PreviousBalance),
		zap.Int("balance", grant.Balance))
	return grant.Balance, nil
}

func (s *Service) updateStatusRow(ctx context.Context, row int, entry paradestate.StatusEntry) error {
	cells := map[int]any{
		factory.StatusColKind:      entry.Kind,
		factory.StatusColStart:     entry.Start,
		factory.StatusColEnd:       entry.End,
		factory.StatusColSubmitter: entry.Submitter,
	}
	for _, col := range []int{factory.StatusColKind, factory.StatusColStart, factory.StatusColEnd, factory.StatusColSubmitter} {
		if err := s.tables.Status.UpdateCell(ctx, row, col, cells[col]); err != nil {
			return storeErr(s.tables.Status, "update", row, err)
		}
	}
	return nil
}

func (b *batch) entryAt(row int) *paradestate.StatusEntry {
	for i := range b.statuses {
		if b.statuses[i].Row == row {
			return &b.statuses[i]
		}
	}
	return nil
}

// drop removes the entry at row from the snapshot so later rows in the batch
// no longer overlap with it.
func (b *batch) drop(row int) {
	for i := range b.statuses {
		if b.statuses[i].Row == row {
			b.statuses = append(b.statuses[:i], b.statuses[i+1:]...)
			return
		}
	}
}

func sameEntry(a, b paradestate.StatusEntry) bool {
	return strings.EqualFold(a.Kind, b.Kind) && a.Start == b.Start && a.End == b.End
}
