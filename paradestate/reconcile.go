/*
reconcile.go - Point-in-time views over the roster and status tables

PURPOSE:
  Joins roster entries against time-ranged status entries. Every view is a
  pure function of its inputs: nothing is cached between calls.

VIEWS:
  ActiveStatusView:   who is away on a date, one row per person, the
                      winning status picked by kind priority
  FullRosterView:     everyone in the group once, away flag + first match
  EditableRosterView: every existing entry per person (with storage row)
                      followed by one blank row per person for new entries

PRIORITY:
  When several entries cover the same day, leave > fever > mc > anything
  else. Ties keep the earlier entry; recency is never considered.

SKIPPED DATA:
  - Roster rows with malformed identifiers are dropped from every view.
  - Duplicate identifiers keep the first roster row.
  - Status entries whose dates do not parse are logged and never match.

SEE ALSO:
  - ledger.go: Overlap detection uses the same range parsing
  - normalize.go: Group and identifier comparison keys
*/
package paradestate

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/warp/parade-state/generic"
)

// AwayRow is one person who is away on the queried date.
type AwayRow struct {
	ID     PersonID `json:"id"`
	Name   string   `json:"name"`
	Group  string   `json:"group"`
	Status string   `json:"status"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
}

// Description is the human-readable status, e.g. "Leave (05052025-07052025)".
func (a AwayRow) Description() string {
	if a.Start == a.End {
		return fmt.Sprintf("%s (%s)", a.Status, a.Start)
	}
	return fmt.Sprintf("%s (%s-%s)", a.Status, a.Start, a.End)
}

// RosterRow is one person in the full roster view.
type RosterRow struct {
	ID     PersonID `json:"id"`
	Name   string   `json:"name"`
	Group  string   `json:"group"`
	Away   bool     `json:"away"`
	Status string   `json:"status"`
}

// EditableRow is one line of the update-status table. Row is the storage
// back-reference of an existing entry, or 0 for a blank line.
type EditableRow struct {
	Row    int      `json:"row"`
	ID     PersonID `json:"id"`
	Name   string   `json:"name"`
	Group  string   `json:"group"`
	Status string   `json:"status"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
}

// Reconciler builds the views.
type Reconciler struct {
	log *zap.Logger
	loc *time.Location
}

// NewReconciler creates a reconciler. loc decides what "today" means when a
// view is requested without a date; nil means UTC.
func NewReconciler(log *zap.Logger, loc *time.Location) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{log: log, loc: loc}
}

// Today is the current date in the reconciler's location.
func (r *Reconciler) Today() generic.Date {
	return generic.Today(r.loc)
}

// ActiveStatusView lists every person in group with a status covering date.
// An empty group selects everyone; a zero date means today.
func (r *Reconciler) ActiveStatusView(roster []Person, statuses []StatusEntry, group string, date generic.Date) []AwayRow {
	date = r.dateOrToday(date)
	byID := r.statusesByID(statuses)

	var rows []AwayRow
	for _, p := range r.members(roster, group) {
		var best *StatusEntry
		for _, st := range byID[p.ID] {
			if !r.covers(st, date) {
				continue
			}
			if best == nil || KindPriority(st.Kind) < KindPriority(best.Kind) {
				best = st
			}
		}
		if best == nil {
			continue
		}
		rows = append(rows, AwayRow{
			ID:     p.ID,
			Name:   p.Name,
			Group:  p.Group,
			Status: best.Kind,
			Start:  best.Start,
			End:    best.End,
		})
	}
	return rows
}

// FullRosterView lists every person in group exactly once. Away persons carry
// the kind of the first covering entry in table order.
func (r *Reconciler) FullRosterView(roster []Person, statuses []StatusEntry, group string, date generic.Date) []RosterRow {
	date = r.dateOrToday(date)
	byID := r.statusesByID(statuses)

	members := r.members(roster, group)
	rows := make([]RosterRow, 0, len(members))
	for _, p := range members {
		row := RosterRow{ID: p.ID, Name: p.Name, Group: p.Group}
		for _, st := range byID[p.ID] {
			if r.covers(st, date) {
				row.Away = true
				row.Status = st.Kind
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// EditableRosterView lists existing entries (with their storage row) for every
// person in group, then one blank row per person.
func (r *Reconciler) EditableRosterView(roster []Person, statuses []StatusEntry, group string) []EditableRow {
	byID := r.statusesByID(statuses)
	members := r.members(roster, group)

	var existing []EditableRow
	blank := make([]EditableRow, 0, len(members))
	for _, p := range members {
		for _, st := range byID[p.ID] {
			existing = append(existing, EditableRow{
				Row:    st.Row,
				ID:     p.ID,
				Name:   p.Name,
				Group:  p.Group,
				Status: st.Kind,
				Start:  st.Start,
				End:    st.End,
			})
		}
		blank = append(blank, EditableRow{ID: p.ID, Name: p.Name, Group: p.Group})
	}
	return append(existing, blank...)
}

// FindNameByID returns the name of the first roster row with a matching
// identifier, or "" when there is none.
func FindNameByID(id string, roster []Person) string {
	want, err := NormalizeIdentifier(id)
	if err != nil {
		return ""
	}
	for _, p := range roster {
		if got, err := NormalizeIdentifier(string(p.ID)); err == nil && got == want {
			return p.Name
		}
	}
	return ""
}

// FindPerson returns the first roster row for id.
func FindPerson(id PersonID, roster []Person) (Person, bool) {
	for _, p := range roster {
		if got, err := NormalizeIdentifier(string(p.ID)); err == nil && got == id {
			return p, true
		}
	}
	return Person{}, false
}

// =============================================================================
// HELPERS
// =============================================================================

func (r *Reconciler) dateOrToday(date generic.Date) generic.Date {
	if date.IsZero() {
		return r.Today()
	}
	return date
}

// members filters the roster by group and drops malformed or duplicate IDs.
func (r *Reconciler) members(roster []Person, group string) []Person {
	key := NormalizeGroupLabel(group)
	seen := make(map[PersonID]bool, len(roster))
	out := make([]Person, 0, len(roster))
	for _, p := range roster {
		id, err := NormalizeIdentifier(string(p.ID))
		if err != nil {
			r.log.Warn("Dropping roster row with malformed identifier",
				zap.String("id", string(p.ID)), zap.Int("row", p.Row))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if key != "" && NormalizeGroupLabel(p.Group) != key {
			continue
		}
		p.ID = id
		out = append(out, p)
	}
	return out
}

func (r *Reconciler) statusesByID(statuses []StatusEntry) map[PersonID][]*StatusEntry {
	byID := make(map[PersonID][]*StatusEntry)
	for i := range statuses {
		id, err := NormalizeIdentifier(string(statuses[i].ID))
		if err != nil {
			continue
		}
		byID[id] = append(byID[id], &statuses[i])
	}
	return byID
}

func (r *Reconciler) covers(st *StatusEntry, date generic.Date) bool {
	rng, err := st.Range()
	if err != nil {
		r.log.Warn("Skipping status entry with unparseable dates",
			zap.String("id", string(st.ID)),
			zap.Int("row", st.Row),
			zap.Error(err))
		return false
	}
	return rng.Contains(date)
}
