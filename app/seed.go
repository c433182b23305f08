package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// Dataset is a full set of rows to load into the three tables.
type Dataset struct {
	People   []paradestate.Person
	Statuses []paradestate.StatusEntry
	Conducts []conduct.Record
}

// Reset deletes every data row from the three tables, bottom-up.
func (s *Service) Reset(ctx context.Context) error {
	for _, t := range []generic.Table{s.tables.Roster, s.tables.Status, s.tables.Conduct} {
		if err := clearTable(ctx, t); err != nil {
			return err
		}
	}
	s.log.Info("Reset tables")
	return nil
}

// Seed resets the tables and appends the dataset.
func (s *Service) Seed(ctx context.Context, data Dataset) error {
	if err := s.Reset(ctx); err != nil {
		return err
	}
	for _, p := range data.People {
		if err := s.tables.Roster.Append(ctx, s.rows.PersonCells(p)); err != nil {
			return storeErr(s.tables.Roster, "append", 0, err)
		}
	}
	for _, st := range data.Statuses {
		if err := s.tables.Status.Append(ctx, s.rows.StatusCells(st)); err != nil {
			return storeErr(s.tables.Status, "append", 0, err)
		}
	}
	for _, rec := range data.Conducts {
		if err := s.tables.Conduct.Append(ctx, s.rows.ConductCells(rec)); err != nil {
			return storeErr(s.tables.Conduct, "append", 0, err)
		}
	}
	s.log.Info("Seeded tables",
		zap.Int("people", len(data.People)),
		zap.Int("statuses", len(data.Statuses)),
		zap.Int("conducts", len(data.Conducts)))
	return nil
}

func clearTable(ctx context.Context, t generic.Table) error {
	rows, err := t.ReadAll(ctx)
	if err != nil {
		return storeErr(t, "read", 0, err)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if err := t.DeleteRow(ctx, rows[i].Number); err != nil {
			return storeErr(t, "delete", rows[i].Number, err)
		}
	}
	return nil
}
