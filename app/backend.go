package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/parade-state/config"
	"github.com/warp/parade-state/factory"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/generic/store"
	"github.com/warp/parade-state/store/cache"
	"github.com/warp/parade-state/store/sqlite"
	"github.com/warp/parade-state/store/xlsx"
)

// Sheet names of the three tables.
const (
	SheetRoster  = "roster"
	SheetStatus  = "status"
	SheetConduct = "conduct"
)

// Tables are the three tables the service reads and writes.
type Tables struct {
	Roster  generic.Table
	Status  generic.Table
	Conduct generic.Table
}

// Backend is an opened set of tables plus the means to close them.
type Backend struct {
	Tables
	close func() error
}

// Close releases the underlying store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewMemoryTables creates empty in-memory tables.
func NewMemoryTables() Tables {
	return Tables{
		Roster:  store.NewMemory(SheetRoster),
		Status:  store.NewMemory(SheetStatus),
		Conduct: store.NewMemory(SheetConduct),
	}
}

// OpenBackend opens the configured store and wraps it in the read cache.
func OpenBackend(cfg *config.Config, log *zap.Logger) (*Backend, error) {
	var b Backend
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		b.Tables = Tables{
			Roster:  s.Table(SheetRoster),
			Status:  s.Table(SheetStatus),
			Conduct: s.Table(SheetConduct),
		}
		b.close = s.Close

	case config.BackendXLSX:
		wb, err := xlsx.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		roster, err := wb.Table(SheetRoster, factory.RosterHeader)
		if err != nil {
			wb.Close()
			return nil, err
		}
		status, err := wb.Table(SheetStatus, factory.StatusHeader)
		if err != nil {
			wb.Close()
			return nil, err
		}
		conducts, err := wb.Table(SheetConduct, factory.ConductHeader)
		if err != nil {
			wb.Close()
			return nil, err
		}
		b.Tables = Tables{Roster: roster, Status: status, Conduct: conducts}
		b.close = wb.Close

	case config.BackendMemory:
		b.Tables = NewMemoryTables()

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	ttl, err := cfg.CacheTTL()
	if err != nil {
		b.Close()
		return nil, err
	}
	if ttl > 0 {
		b.Tables = Tables{
			Roster:  cache.New(b.Roster, ttl, log),
			Status:  cache.New(b.Status, ttl, log),
			Conduct: cache.New(b.Conduct, ttl, log),
		}
	}

	log.Info("Opened table store",
		zap.String("backend", cfg.Store.Backend),
		zap.String("path", cfg.Store.Path),
		zap.Duration("cache_ttl", ttl))
	return &b, nil
}
