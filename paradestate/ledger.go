/*
ledger.go - Leave balance rules

PURPOSE:
  Counts leave days from ledger tokens, detects overlapping statuses, and
  decides whether a leave submission may be written.

TOKENS:
  A ledger is a comma-joined list of tokens. Each token is a single day
  "DDMMYYYY" or an inclusive range "DDMMYYYY-DDMMYYYY". Reversed ranges
  count as zero days; unparseable tokens are logged and skipped.

SUBMISSION PROTOCOL (Authorize):
  1. days := DaysUsed(token for the submitted range); reject if <= 0
  2. reject if the range overlaps another entry for the same person
  3. balance := person's balance, DefaultBalance when unknown
  4. reject if days > balance
  5. grant: balance - days, ledger + token

  Authorize never writes. A rejection leaves balance and ledger untouched;
  the caller persists a grant.

SEE ALSO:
  - app/status_service.go: Applies grants to the roster and status tables
*/
package paradestate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/warp/parade-state/generic"
)

// LeaveLedger applies leave-balance rules.
type LeaveLedger struct {
	log            *zap.Logger
	defaultBalance int
}

// NewLeaveLedger creates a ledger. A non-positive defaultBalance falls back
// to DefaultLeaveBalance.
func NewLeaveLedger(log *zap.Logger, defaultBalance int) *LeaveLedger {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultBalance <= 0 {
		defaultBalance = DefaultLeaveBalance
	}
	return &LeaveLedger{log: log, defaultBalance: defaultBalance}
}

// DefaultBalance is the balance assumed for people without one.
func (l *LeaveLedger) DefaultBalance() int { return l.defaultBalance }

// DaysUsed sums the inclusive day counts of a comma-separated token list.
func (l *LeaveLedger) DaysUsed(tokens string) int {
	total := 0
	for _, tok := range strings.Split(tokens, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		rng, err := generic.ParseRangeToken(tok)
		if err != nil {
			l.log.Warn("Skipping invalid leave token", zap.String("token", tok), zap.Error(err))
			continue
		}
		total += rng.Days()
	}
	return total
}

// DetectOverlap reports whether requested intersects any entry for id.
// skipRow excludes the entry being edited in place; 0 excludes nothing.
func (l *LeaveLedger) DetectOverlap(id PersonID, requested generic.Range, existing []StatusEntry, skipRow int) bool {
	_, found := l.FindOverlap(id, requested, existing, skipRow)
	return found
}

// FindOverlap returns the first entry for id that intersects requested.
func (l *LeaveLedger) FindOverlap(id PersonID, requested generic.Range, existing []StatusEntry, skipRow int) (StatusEntry, bool) {
	for _, st := range existing {
		if skipRow > 0 && st.Row == skipRow {
			continue
		}
		stID, err := NormalizeIdentifier(string(st.ID))
		if err != nil || stID != id {
			continue
		}
		rng, err := st.Range()
		if err != nil {
			l.log.Warn("Skipping status entry with unparseable dates in overlap check",
				zap.String("id", string(st.ID)), zap.Int("row", st.Row), zap.Error(err))
			continue
		}
		if requested.Overlaps(rng) {
			return st, true
		}
	}
	return StatusEntry{}, false
}

// LeaveRequest is a leave submission for one person.
type LeaveRequest struct {
	ID    PersonID
	Start string
	End   string
	Row   int // row being edited, 0 for a new entry
}

// Token is the ledger token for the request.
func (r LeaveRequest) Token() string {
	if r.Start == r.End {
		return r.Start
	}
	return r.Start + "-" + r.End
}

// LeaveGrant is an accepted request: what to write back.
type LeaveGrant struct {
	ID              PersonID
	Range           generic.Range
	Days            int
	PreviousBalance int
	Balance         int
	Ledger          string
}

// Authorize runs the submission protocol. person may be nil when the
// identifier is not on the roster; the default balance then applies.
func (l *LeaveLedger) Authorize(req LeaveRequest, person *Person, statuses []StatusEntry) (LeaveGrant, error) {
	token := req.Token()
	days := l.DaysUsed(token)
	if days <= 0 {
		return LeaveGrant{}, &generic.MalformedDateError{Value: token, Reason: "leave range covers no days"}
	}
	rng, err := generic.ParseRangeToken(token)
	if err != nil {
		return LeaveGrant{}, err
	}

	if existing, found := l.FindOverlap(req.ID, rng, statuses, req.Row); found {
		existingRange, _ := existing.Range()
		return LeaveGrant{}, &generic.OverlapError{
			ID:          string(req.ID),
			Requested:   rng,
			Existing:    existingRange,
			ExistingRow: existing.Row,
		}
	}

	balance := l.defaultBalance
	ledger := ""
	if person != nil {
		balance = person.LeaveBalance
		ledger = person.LeaveLedger
	}
	if days > balance {
		return LeaveGrant{}, &generic.InsufficientBalanceError{
			ID:        string(req.ID),
			Available: balance,
			Requested: days,
		}
	}

	return LeaveGrant{
		ID:              req.ID,
		Range:           rng,
		Days:            days,
		PreviousBalance: balance,
		Balance:         balance - days,
		Ledger:          AppendLedgerToken(ledger, token),
	}, nil
}

// AppendLedgerToken joins token onto an existing ledger string.
func AppendLedgerToken(ledger, token string) string {
	ledger = strings.TrimSpace(ledger)
	if ledger == "" {
		return token
	}
	return ledger + "," + token
}
