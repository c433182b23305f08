// Package cache wraps a generic.Table with a short-lived read-through cache.
//
// Full-table reads are served from memory for TTL after a load. Every write
// made through the wrapper drops the cached rows before returning, whether
// or not the write succeeded. Concurrent misses share one load.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/warp/parade-state/generic"
)

// DefaultTTL keeps rows for the length of a typical form session.
const DefaultTTL = 3 * time.Minute

// Table is a caching generic.Table decorator.
type Table struct {
	inner generic.Table
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time

	loads singleflight.Group

	mu         sync.Mutex
	rows       []generic.Row
	loadedAt   time.Time
	valid      bool
	generation uint64
}

var _ generic.Table = (*Table)(nil)

// New wraps inner. A non-positive ttl uses DefaultTTL.
func New(inner generic.Table, ttl time.Duration, log *zap.Logger) *Table {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{inner: inner, ttl: ttl, log: log, now: time.Now}
}

func (t *Table) Name() string { return t.inner.Name() }

// ReadAll serves cached rows while fresh, otherwise loads from inner.
func (t *Table) ReadAll(ctx context.Context) ([]generic.Row, error) {
	t.mu.Lock()
	if t.valid && t.now().Sub(t.loadedAt) < t.ttl {
		rows := clone(t.rows)
		t.mu.Unlock()
		return rows, nil
	}
	gen := t.generation
	t.mu.Unlock()

	v, err, _ := t.loads.Do("rows", func() (any, error) {
		rows, err := t.inner.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		// A write that landed during the load makes these rows stale.
		if t.generation == gen {
			t.rows = rows
			t.loadedAt = t.now()
			t.valid = true
		}
		t.mu.Unlock()
		t.log.Debug("Loaded table", zap.String("table", t.inner.Name()), zap.Int("rows", len(rows)))
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]generic.Row)), nil
}

func (t *Table) Append(ctx context.Context, cells []any) error {
	defer t.Invalidate()
	return t.inner.Append(ctx, cells)
}

func (t *Table) UpdateCell(ctx context.Context, row, col int, value any) error {
	defer t.Invalidate()
	return t.inner.UpdateCell(ctx, row, col, value)
}

func (t *Table) DeleteRow(ctx context.Context, row int) error {
	defer t.Invalidate()
	return t.inner.DeleteRow(ctx, row)
}

// Invalidate drops the cached rows.
func (t *Table) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.valid = false
	t.generation++
	t.loads.Forget("rows")
}

func clone(rows []generic.Row) []generic.Row {
	if rows == nil {
		return nil
	}
	out := make([]generic.Row, len(rows))
	for i, r := range rows {
		out[i] = generic.Row{Number: r.Number, Cells: append([]any(nil), r.Cells...)}
	}
	return out
}
