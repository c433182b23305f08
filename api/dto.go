/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain records from the wire contract the parade UI reads.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator tags. A failed "required" tag surfaces as
  generic.MissingFieldError naming the JSON field, so clients see the same
  error shape as a row rejected by the domain.

SEE ALSO:
  - handlers.go: Uses these types
  - app/status.go: StatusInput and RowOutcome
*/
package api

import (
	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitStatusesRequest is a batch of edited status rows.
type SubmitStatusesRequest struct {
	Submitter string            `json:"submitter" validate:"required"`
	Rows      []app.StatusInput `json:"rows" validate:"required,min=1"`
}

// SweepRequest optionally pins the sweep date (DDMMYYYY).
type SweepRequest struct {
	Today string `json:"today"`
}

// CreateSessionRequest starts a session for one submitter.
type CreateSessionRequest struct {
	Submitter string `json:"submitter" validate:"required"`
	Group     string `json:"group"`
}

// StartConductRequest opens a conduct draft in a session.
type StartConductRequest struct {
	Date    string `json:"date" validate:"required"`
	Group   string `json:"group"`
	Conduct string `json:"conduct" validate:"required"`
	Remarks string `json:"remarks"`
}

// FinalizeConductRequest carries the edited roster view.
type FinalizeConductRequest struct {
	Rows    []RosterRowDTO `json:"rows" validate:"required,min=1,dive"`
	Remarks *string        `json:"remarks"`
}

// LoadScenarioRequest names a demo dataset.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PersonDTO represents a roster member.
type PersonDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Group        string `json:"group"`
	LeaveBalance int    `json:"leave_balance"`
	LeaveDates   string `json:"leave_dates"`
}

// RosterRowDTO is one line of a conduct roster view, in either direction.
type RosterRowDTO struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Away   bool   `json:"away"`
	Status string `json:"status"`
}

// ConductDTO is a recorded conduct with its participation rate.
type ConductDTO struct {
	Row               int      `json:"row"`
	Date              string   `json:"date"`
	Group             string   `json:"group"`
	Conduct           string   `json:"conduct"`
	Total             int      `json:"total"`
	Participating     int      `json:"participating"`
	ParticipationRate string   `json:"participation_rate"`
	Outliers          []string `json:"outliers"`
	Remarks           string   `json:"remarks,omitempty"`
	Submitter         string   `json:"submitter,omitempty"`
}

// OutlierTallyDTO is one person's outlier count with the share of sessions.
type OutlierTallyDTO struct {
	Token string `json:"token"`
	Count int    `json:"count"`
	Rate  string `json:"rate"`
}

// OutliersDTO is the outlier report for one conduct.
type OutliersDTO struct {
	Group        string            `json:"group"`
	Conduct      string            `json:"conduct"`
	Found        bool              `json:"found"`
	Fuzzy        bool              `json:"fuzzy"`
	MatchedGroup string            `json:"matched_group,omitempty"`
	MatchedName  string            `json:"matched_conduct,omitempty"`
	Score        float64           `json:"score,omitempty"`
	Sessions     int               `json:"sessions"`
	Tallies      []OutlierTallyDTO `json:"tallies"`
}

// SessionDTO is the visible part of a session.
type SessionDTO struct {
	ID        string                  `json:"id"`
	Submitter string                  `json:"submitter"`
	Group     string                  `json:"group,omitempty"`
	CreatedAt string                  `json:"created_at"`
	Conduct   *ConductDraftDTO        `json:"conduct,omitempty"`
	Roster    []paradestate.RosterRow `json:"roster,omitempty"`
}

// ConductDraftDTO is a conduct in progress.
type ConductDraftDTO struct {
	Date    string `json:"date"`
	Group   string `json:"group"`
	Conduct string `json:"conduct"`
	Remarks string `json:"remarks,omitempty"`
}

// ScenarioDTO describes a demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPersonDTOs(people []paradestate.Person) []PersonDTO {
	dtos := make([]PersonDTO, 0, len(people))
	for _, p := range people {
		dtos = append(dtos, PersonDTO{
			ID:           string(p.ID),
			Name:         p.Name,
			Group:        p.Group,
			LeaveBalance: p.LeaveBalance,
			LeaveDates:   p.LeaveLedger,
		})
	}
	return dtos
}

func toRosterRows(dtos []RosterRowDTO) []paradestate.RosterRow {
	rows := make([]paradestate.RosterRow, 0, len(dtos))
	for _, d := range dtos {
		rows = append(rows, paradestate.RosterRow{
			ID:     paradestate.PersonID(d.ID),
			Name:   d.Name,
			Group:  d.Group,
			Away:   d.Away,
			Status: d.Status,
		})
	}
	return rows
}

func toConductDTO(r conduct.Record) ConductDTO {
	outliers := r.OutlierTokens()
	if outliers == nil {
		outliers = []string{}
	}
	return ConductDTO{
		Row:               r.Row,
		Date:              r.Date,
		Group:             r.Group,
		Conduct:           r.Name,
		Total:             r.Total,
		Participating:     r.Participating,
		ParticipationRate: r.ParticipationRate().StringFixed(4),
		Outliers:          outliers,
		Remarks:           r.Remarks,
		Submitter:         r.Submitter,
	}
}

func toOutliersDTO(report app.OutlierReport) OutliersDTO {
	tallies := make([]OutlierTallyDTO, 0, len(report.Tallies))
	for _, t := range report.Tallies {
		tallies = append(tallies, OutlierTallyDTO{
			Token: t.Token,
			Count: t.Count,
			Rate:  t.Rate(report.Match.Sessions).StringFixed(4),
		})
	}
	return OutliersDTO{
		Group:        report.Group,
		Conduct:      report.Conduct,
		Found:        report.Match.Found,
		Fuzzy:        report.Match.Fuzzy,
		MatchedGroup: report.Match.Group,
		MatchedName:  report.Match.Name,
		Score:        report.Match.Score,
		Sessions:     report.Match.Sessions,
		Tallies:      tallies,
	}
}
