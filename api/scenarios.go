/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:
  Populates the configured tables with a realistic platoon so the parade
  views, leave submission and outlier report have something to show. Dates
  are relative to today so the "away" views are never empty.

AVAILABLE SCENARIOS:
  platoon:          Two groups, leave and medical statuses, no conducts
  conduct-history:  Same roster plus a month of recorded conducts
  expired-statuses: Statuses that ended last week, ready for a sweep

HOW SCENARIOS WORK:
  1. Delete every data row from the three tables (bottom-up)
  2. Append roster rows
  3. Append status rows
  4. Append conduct rows

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "conduct-history"}

NOTE:
  Scenarios wipe the tables. Only use against a demo store.
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "platoon",
		Name:        "Platoon",
		Description: "Two groups with current leave, MC and fever statuses",
	},
	{
		ID:          "conduct-history",
		Name:        "Conduct History",
		Description: "Platoon roster plus recorded conducts for the outlier report",
	},
	{
		ID:          "expired-statuses",
		Name:        "Expired Statuses",
		Description: "Statuses that ended before today, for the expiry sweep",
	},
}

// ListScenarios returns available demo datasets.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario wipes the tables and loads a dataset.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	data, ok := BuildScenario(req.ScenarioID, h.Service.Today())
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err := h.Service.Seed(r.Context(), data); err != nil {
		h.writeServiceError(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.log.Info("Loaded scenario", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetTables deletes every data row.
func (h *Handler) ResetTables(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Reset(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset tables", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoadScenarioByID seeds a dataset outside of HTTP (CLI, tests).
func LoadScenarioByID(ctx context.Context, svc *app.Service, id string) error {
	data, ok := BuildScenario(id, svc.Today())
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}
	return svc.Seed(ctx, data)
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

// BuildScenario returns the dataset for id with dates relative to today.
func BuildScenario(id string, today generic.Date) (app.Dataset, bool) {
	switch id {
	case "platoon":
		return platoonScenario(today), true
	case "conduct-history":
		data := platoonScenario(today)
		data.Conducts = conductHistory(today)
		return data, true
	case "expired-statuses":
		return expiredScenario(today), true
	}
	return app.Dataset{}, false
}

func platoonRoster() []paradestate.Person {
	return []paradestate.Person{
		{ID: "4D101", Name: "Tan Wei Ming", Group: "Platoon 1", LeaveBalance: 14},
		{ID: "4D102", Name: "Muhammad Irfan", Group: "Platoon 1", LeaveBalance: 10, LeaveLedger: "02012025-05012025"},
		{ID: "4D103", Name: "Lim Jun Hao", Group: "Platoon 1", LeaveBalance: 14},
		{ID: "4D104", Name: "Rajesh Kumar", Group: "Platoon 1", LeaveBalance: 3},
		{ID: "4D201", Name: "Chen Zhi Hao", Group: "Platoon 2", LeaveBalance: 14},
		{ID: "4D202", Name: "Daniel Ong", Group: "Platoon 2", LeaveBalance: 12, LeaveLedger: "10022025,11022025"},
		{ID: "4D203", Name: "Aidil Rahman", Group: "Platoon 2", LeaveBalance: 14},
	}
}

func status(group, id, kind string, start, end generic.Date) paradestate.StatusEntry {
	return paradestate.StatusEntry{
		Group:     group,
		ID:        paradestate.PersonID(id),
		Kind:      kind,
		Start:     start.String(),
		End:       end.String(),
		Submitter: "Demo",
	}
}

func platoonScenario(today generic.Date) app.Dataset {
	return app.Dataset{
		People: platoonRoster(),
		Statuses: []paradestate.StatusEntry{
			status("Platoon 1", "4D101", "Leave", today.AddDays(-1), today.AddDays(2)),
			status("Platoon 1", "4D103", "MC", today, today.AddDays(1)),
			status("Platoon 1", "4D103", "Fever", today, today),
			status("Platoon 2", "4D202", "Leave", today.AddDays(3), today.AddDays(4)),
			status("Platoon 2", "4D203", "Fever", today, today),
		},
	}
}

func expiredScenario(today generic.Date) app.Dataset {
	return app.Dataset{
		People: platoonRoster(),
		Statuses: []paradestate.StatusEntry{
			status("Platoon 1", "4D101", "Leave", today.AddDays(-10), today.AddDays(-7)),
			status("Platoon 1", "4D102", "MC", today.AddDays(-3), today.AddDays(-1)),
			status("Platoon 1", "4D103", "Fever", today, today),
			status("Platoon 2", "4D201", "Leave", today.AddDays(-2), today.AddDays(1)),
		},
	}
}

func conductHistory(today generic.Date) []conduct.Record {
	record := func(daysAgo int, group, name string, outliers ...conduct.Outlier) conduct.Record {
		total := 4
		if group == "Platoon 2" {
			total = 3
		}
		return conduct.Record{
			Date:          today.AddDays(-daysAgo).String(),
			Group:         group,
			Name:          name,
			Total:         total,
			Participating: total - len(outliers),
			Outliers:      conduct.FormatOutliers(outliers),
			Submitter:     "Demo",
		}
	}
	absent := func(id, kind string) conduct.Outlier {
		return conduct.Outlier{ID: paradestate.PersonID(id), Kind: kind}
	}

	return []conduct.Record{
		record(28, "Platoon 1", "IPPT Run", absent("4D104", "MC")),
		record(21, "Platoon 1", "IPPT Run", absent("4D104", "MC"), absent("4D102", "Leave")),
		record(14, "Platoon 1", "IPPT Run"),
		record(7, "Platoon 1", "IPPT Run", absent("4D104", "Absent")),
		record(20, "Platoon 1", "Route March", absent("4D101", "Leave")),
		record(13, "Platoon 2", "IPPT Run", absent("4D203", "Fever")),
		record(6, "Platoon 2", "Swim Test"),
	}
}
