// Package app wires the parade-state domain to the tables: it loads rows,
// runs the reconciler, ledger and aggregator, and writes results back one
// row at a time.
package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/factory"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// Options tune the domain components.
type Options struct {
	DefaultLeaveBalance int
	SimilarityThreshold float64
	Location            *time.Location
}

// Service is the entry point for every user action.
type Service struct {
	tables     Tables
	rows       *factory.RowFactory
	reconciler *paradestate.Reconciler
	ledger     *paradestate.LeaveLedger
	aggregator *conduct.Aggregator
	log        *zap.Logger
}

// NewService creates a service over tables.
func NewService(tables Tables, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tables:     tables,
		rows:       factory.NewRowFactory(opts.DefaultLeaveBalance),
		reconciler: paradestate.NewReconciler(log, opts.Location),
		ledger:     paradestate.NewLeaveLedger(log, opts.DefaultLeaveBalance),
		aggregator: conduct.NewAggregator(log, opts.SimilarityThreshold),
		log:        log,
	}
}

// Tables exposes the underlying tables (export, demo loading).
func (s *Service) Tables() Tables { return s.tables }

// Today is the current date in the configured location.
func (s *Service) Today() generic.Date { return s.reconciler.Today() }

// Aggregator exposes the outlier aggregator so callers can swap similarity.
func (s *Service) Aggregator() *conduct.Aggregator { return s.aggregator }

// =============================================================================
// LOADERS
// =============================================================================

func (s *Service) loadRoster(ctx context.Context) ([]paradestate.Person, error) {
	rows, err := s.tables.Roster.ReadAll(ctx)
	if err != nil {
		return nil, storeErr(s.tables.Roster, "read", 0, err)
	}
	people, issues := s.rows.People(rows)
	s.logIssues(issues)
	return people, nil
}

func (s *Service) loadStatuses(ctx context.Context) ([]paradestate.StatusEntry, error) {
	rows, err := s.tables.Status.ReadAll(ctx)
	if err != nil {
		return nil, storeErr(s.tables.Status, "read", 0, err)
	}
	entries, issues := s.rows.Statuses(rows)
	s.logIssues(issues)
	return entries, nil
}

func (s *Service) loadConducts(ctx context.Context) ([]conduct.Record, error) {
	rows, err := s.tables.Conduct.ReadAll(ctx)
	if err != nil {
		return nil, storeErr(s.tables.Conduct, "read", 0, err)
	}
	records, issues := s.rows.Conducts(rows)
	s.logIssues(issues)
	return records, nil
}

func (s *Service) logIssues(issues []factory.RowIssue) {
	for _, issue := range issues {
		s.log.Warn("Dropping malformed row",
			zap.String("table", issue.Table),
			zap.Int("row", issue.Row),
			zap.Error(issue.Err))
	}
}

// storeErr makes sure a backend failure classifies as ErrStoreOperation.
func storeErr(t generic.Table, op string, row int, err error) error {
	if errors.Is(err, generic.ErrStoreOperation) {
		return err
	}
	return &generic.StoreError{Table: t.Name(), Op: op, Row: row, Err: err}
}
