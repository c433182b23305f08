package paradestate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/warp/parade-state/generic"
)

// ExpiredRows returns the storage rows of entries whose end date is strictly
// before today, highest row first so they can be deleted in order without
// shifting the rows still to be deleted. Entries whose end date does not
// parse are kept.
func (r *Reconciler) ExpiredRows(statuses []StatusEntry, today generic.Date) []int {
	today = r.dateOrToday(today)

	var rows []int
	for _, st := range statuses {
		end, err := generic.ParseDate(st.End)
		if err != nil {
			r.log.Warn("Keeping status entry with unparseable end date",
				zap.String("id", string(st.ID)), zap.Int("row", st.Row), zap.Error(err))
			continue
		}
		if end.Before(today) && st.Row > 0 {
			rows = append(rows, st.Row)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	return rows
}
