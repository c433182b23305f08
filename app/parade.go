package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// READ VIEWS
// =============================================================================

// Roster returns the members of group, or everyone when group is blank.
func (s *Service) Roster(ctx context.Context, group string) ([]paradestate.Person, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	if paradestate.NormalizeGroupLabel(group) == "" {
		return roster, nil
	}
	out := make([]paradestate.Person, 0, len(roster))
	for _, p := range roster {
		if paradestate.SameGroup(p.Group, group) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ParadeState lists who in group is away on date. A zero date means today.
func (s *Service) ParadeState(ctx context.Context, group string, date generic.Date) ([]paradestate.AwayRow, error) {
	roster, statuses, err := s.loadRosterAndStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconciler.ActiveStatusView(roster, statuses, group, date), nil
}

// RosterView is every member of group with an away flag for date.
func (s *Service) RosterView(ctx context.Context, group string, date generic.Date) ([]paradestate.RosterRow, error) {
	roster, statuses, err := s.loadRosterAndStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconciler.FullRosterView(roster, statuses, group, date), nil
}

// EditableView lists existing status rows for group followed by one blank
// row per member.
func (s *Service) EditableView(ctx context.Context, group string) ([]paradestate.EditableRow, error) {
	roster, statuses, err := s.loadRosterAndStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconciler.EditableRosterView(roster, statuses, group), nil
}

// PersonName looks up the roster name for id. A malformed id or an id not on
// the roster returns an error matching generic.ErrNoMatchFound.
func (s *Service) PersonName(ctx context.Context, id string) (string, error) {
	if _, err := paradestate.NormalizeIdentifier(id); err != nil {
		return "", err
	}
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return "", err
	}
	name := paradestate.FindNameByID(id, roster)
	if name == "" {
		return "", generic.ErrNoMatchFound
	}
	return name, nil
}

func (s *Service) loadRosterAndStatuses(ctx context.Context) ([]paradestate.Person, []paradestate.StatusEntry, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, nil, err
	}
	statuses, err := s.loadStatuses(ctx)
	if err != nil {
		return nil, nil, err
	}
	return roster, statuses, nil
}

// =============================================================================
// SWEEP
// =============================================================================

// SweepResult reports which status rows were removed.
type SweepResult struct {
	Today   string       `json:"today"`
	Removed []int        `json:"removed"`
	Failed  []RowOutcome `json:"failed,omitempty"`
}

// Sweep deletes every status row that ended before today. Rows are deleted
// from the bottom up; a failed delete is reported and the sweep continues.
func (s *Service) Sweep(ctx context.Context, today generic.Date) (SweepResult, error) {
	if today.IsZero() {
		today = s.Today()
	}
	statuses, err := s.loadStatuses(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Today: today.String(), Removed: []int{}}
	for _, row := range s.reconciler.ExpiredRows(statuses, today) {
		if err := s.tables.Status.DeleteRow(ctx, row); err != nil {
			err = storeErr(s.tables.Status, "delete", row, err)
			s.log.Error("Failed to delete expired status row", zap.Int("row", row), zap.Error(err))
			result.Failed = append(result.Failed, RowOutcome{Row: row, Action: ActionRejected, Error: err.Error(), Err: err})
			continue
		}
		result.Removed = append(result.Removed, row)
	}

	s.log.Info("Swept expired statuses",
		zap.String("today", result.Today),
		zap.Int("removed", len(result.Removed)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
