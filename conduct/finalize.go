package conduct

import (
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// DefaultOutlierKind labels an away row submitted without a status.
const DefaultOutlierKind = "Absent"

// Draft is a conduct being recorded: everything except the attendance.
type Draft struct {
	Date      string
	Group     string
	Name      string
	Submitter string
	Remarks   string
}

// RowIssue is a submitted attendance row that was left out.
type RowIssue struct {
	Index int
	ID    string
	Err   error
}

// Finalized is the outcome of Finalize.
type Finalized struct {
	Record    Record
	NewPeople []paradestate.Person
	Skipped   []RowIssue
}

// Finalize turns an edited roster view into a conduct record. Total and
// Participating are fixed here and never re-derived. Identifiers that are
// not on roster are returned in NewPeople with defaultBalance leave.
func Finalize(draft Draft, rows []paradestate.RosterRow, roster []paradestate.Person, defaultBalance int) (Finalized, error) {
	date := paradestate.NormalizeDate(draft.Date)
	if date == "" {
		return Finalized{}, &generic.MissingFieldError{Field: "date"}
	}
	if _, err := generic.ParseDate(date); err != nil {
		return Finalized{}, err
	}
	if paradestate.NormalizeGroupLabel(draft.Group) == "" {
		return Finalized{}, &generic.MissingFieldError{Field: "group"}
	}
	if paradestate.DisplayLabel(draft.Name) == "" {
		return Finalized{}, &generic.MissingFieldError{Field: "conduct"}
	}
	if defaultBalance <= 0 {
		defaultBalance = paradestate.DefaultLeaveBalance
	}

	var out Finalized
	var outliers []Outlier
	seen := make(map[paradestate.PersonID]bool, len(rows))
	total := 0
	for i, row := range rows {
		id, err := paradestate.NormalizeIdentifier(string(row.ID))
		if err != nil {
			out.Skipped = append(out.Skipped, RowIssue{Index: i, ID: string(row.ID), Err: err})
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		total++

		if row.Away {
			kind := paradestate.DisplayLabel(row.Status)
			if kind == "" {
				kind = DefaultOutlierKind
			}
			outliers = append(outliers, Outlier{ID: id, Kind: kind})
		}

		if _, known := paradestate.FindPerson(id, roster); !known {
			group := paradestate.DisplayLabel(row.Group)
			if group == "" {
				group = paradestate.DisplayLabel(draft.Group)
			}
			out.NewPeople = append(out.NewPeople, paradestate.Person{
				ID:           id,
				Name:         paradestate.DisplayLabel(row.Name),
				Group:        group,
				LeaveBalance: defaultBalance,
			})
		}
	}

	out.Record = Record{
		Date:          date,
		Group:         paradestate.DisplayLabel(draft.Group),
		Name:          paradestate.DisplayLabel(draft.Name),
		Total:         total,
		Participating: total - len(outliers),
		Outliers:      FormatOutliers(outliers),
		Remarks:       paradestate.DisplayLabel(draft.Remarks),
		Submitter:     paradestate.DisplayLabel(draft.Submitter),
	}
	return out, nil
}
