package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// ConductResult is a finalized conduct as written to the tables.
type ConductResult struct {
	Record  conduct.Record       `json:"record"`
	Created []paradestate.Person `json:"created"`
	Skipped []RowOutcome         `json:"skipped,omitempty"`
	Failed  []RowOutcome         `json:"failed,omitempty"`
}

// OutlierReport is the outlier frequency for one conduct.
type OutlierReport struct {
	Group   string          `json:"group"`
	Conduct string          `json:"conduct"`
	Match   conduct.Match   `json:"match"`
	Tallies []conduct.Tally `json:"tallies"`
}

// ConductRoster is the starting point of a conduct: the group roster with
// everyone away on date already flagged.
func (s *Service) ConductRoster(ctx context.Context, draft conduct.Draft) ([]paradestate.RosterRow, error) {
	date, err := generic.ParseDate(paradestate.NormalizeDate(draft.Date))
	if err != nil {
		return nil, err
	}
	if paradestate.NormalizeGroupLabel(draft.Group) == "" {
		return nil, &generic.MissingFieldError{Field: "group"}
	}
	return s.RosterView(ctx, draft.Group, date)
}

// FinalizeConduct records a conduct. Identifiers not yet on the roster are
// appended to it with the default leave balance; a failed append is reported
// but does not stop the conduct record being written.
func (s *Service) FinalizeConduct(ctx context.Context, draft conduct.Draft, rows []paradestate.RosterRow) (ConductResult, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return ConductResult{}, err
	}
	fin, err := conduct.Finalize(draft, rows, roster, s.ledger.DefaultBalance())
	if err != nil {
		return ConductResult{}, err
	}

	result := ConductResult{Record: fin.Record, Created: []paradestate.Person{}}
	for _, issue := range fin.Skipped {
		result.Skipped = append(result.Skipped, RowOutcome{
			Index: issue.Index, ID: issue.ID, Action: ActionRejected, Error: issue.Err.Error(), Err: issue.Err,
		})
	}

	for i, p := range fin.NewPeople {
		if err := s.tables.Roster.Append(ctx, s.rows.PersonCells(p)); err != nil {
			err = storeErr(s.tables.Roster, "append", 0, err)
			s.log.Error("Failed to add person to roster", zap.String("id", string(p.ID)), zap.Error(err))
			result.Failed = append(result.Failed, RowOutcome{
				Index: i, ID: string(p.ID), Action: ActionRejected, Error: err.Error(), Err: err,
			})
			continue
		}
		result.Created = append(result.Created, p)
	}

	if err := s.tables.Conduct.Append(ctx, s.rows.ConductCells(fin.Record)); err != nil {
		return result, storeErr(s.tables.Conduct, "append", 0, err)
	}

	s.log.Info("Recorded conduct",
		zap.String("date", fin.Record.Date),
		zap.String("group", fin.Record.Group),
		zap.String("conduct", fin.Record.Name),
		zap.Int("total", fin.Record.Total),
		zap.Int("participating", fin.Record.Participating),
		zap.Int("new_people", len(result.Created)))
	return result, nil
}

// Conducts lists recorded conducts for group, or all when group is blank.
func (s *Service) Conducts(ctx context.Context, group string) ([]conduct.Record, error) {
	records, err := s.loadConducts(ctx)
	if err != nil {
		return nil, err
	}
	if paradestate.NormalizeGroupLabel(group) == "" {
		return records, nil
	}
	out := make([]conduct.Record, 0, len(records))
	for _, r := range records {
		if paradestate.SameGroup(r.Group, group) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Outliers tallies how often each person sat out the named conduct. No
// match yields an empty report, not an error.
func (s *Service) Outliers(ctx context.Context, group, name string) (OutlierReport, error) {
	if paradestate.NormalizeGroupLabel(group) == "" {
		return OutlierReport{}, &generic.MissingFieldError{Field: "group"}
	}
	if paradestate.DisplayLabel(name) == "" {
		return OutlierReport{}, &generic.MissingFieldError{Field: "conduct"}
	}
	records, err := s.loadConducts(ctx)
	if err != nil {
		return OutlierReport{}, err
	}
	match := s.aggregator.CollectOutlierTokens(records, group, name)
	return OutlierReport{
		Group:   paradestate.DisplayLabel(group),
		Conduct: paradestate.DisplayLabel(name),
		Match:   match,
		Tallies: conduct.TallyFrequency(match.Tokens),
	}, nil
}
