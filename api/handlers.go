/*
handlers.go - HTTP API handlers for parade state

PURPOSE:
  Exposes the parade-state service as JSON endpoints. Handlers decode and
  validate the request, then hand it to app.Service.

ENDPOINTS:
  Roster:
    GET    /api/roster?group=                  Roster members
    GET    /api/roster/{id}/name               Name for an identifier

  Parade:
    GET    /api/parade?group=&date=            Who is away
    GET    /api/parade/roster?group=&date=     Everyone, away flagged

  Statuses:
    GET    /api/statuses/editable?group=       Existing rows + blank rows
    POST   /api/statuses                       Batch submit, per-row outcomes
    POST   /api/statuses/sweep                 Delete expired rows

  Sessions:
    POST   /api/sessions                       Start a session
    GET    /api/sessions/{id}                  Session state
    DELETE /api/sessions/{id}                  End a session
    POST   /api/sessions/{id}/conduct          Open a conduct draft
    POST   /api/sessions/{id}/conduct/finalize Record the conduct

  Conducts:
    GET    /api/conducts?group=                History with participation
    GET    /api/outliers?group=&conduct=       Outlier frequency

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed identifier or date, missing field, overlap, balance
  - 404: No match found, unknown session
  - 500: Store failures
  Batch submission always answers 200; each row carries its own outcome.

SEE ALSO:
  - dto.go: Request/response data structures
  - session.go: Session store
  - app/: The service these handlers call
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/factory"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
	"github.com/warp/parade-state/store/xlsx"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *app.Service
	Sessions *SessionStore

	log      *zap.Logger
	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over svc.
func NewHandler(svc *app.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Handler{
		Service:  svc,
		Sessions: NewSessionStore(),
		log:      log,
		validate: v,
	}
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

// ListRoster returns roster members, optionally for one group.
func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	people, err := h.Service.Roster(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		h.writeServiceError(w, "Failed to read roster", err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTOs(people))
}

// GetPersonName looks up the name for an identifier.
func (h *Handler) GetPersonName(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, err := h.Service.PersonName(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to find person", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "name": name})
}

// =============================================================================
// PARADE ENDPOINTS
// =============================================================================

// GetParadeState lists everyone in group away on date (default today).
func (h *Handler) GetParadeState(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		h.writeServiceError(w, "Invalid date", err)
		return
	}
	rows, err := h.Service.ParadeState(r.Context(), r.URL.Query().Get("group"), date)
	if err != nil {
		h.writeServiceError(w, "Failed to build parade state", err)
		return
	}
	if rows == nil {
		rows = []paradestate.AwayRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetRosterView lists everyone in group with the away flag for date.
func (h *Handler) GetRosterView(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		h.writeServiceError(w, "Invalid date", err)
		return
	}
	rows, err := h.Service.RosterView(r.Context(), r.URL.Query().Get("group"), date)
	if err != nil {
		h.writeServiceError(w, "Failed to build roster view", err)
		return
	}
	if rows == nil {
		rows = []paradestate.RosterRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// =============================================================================
// STATUS ENDPOINTS
// =============================================================================

// GetEditableView returns existing status rows then one blank row per member.
func (h *Handler) GetEditableView(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.EditableView(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		h.writeServiceError(w, "Failed to build editable view", err)
		return
	}
	if rows == nil {
		rows = []paradestate.EditableRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// SubmitStatuses applies a batch of edited status rows.
func (h *Handler) SubmitStatuses(w http.ResponseWriter, r *http.Request) {
	var req SubmitStatusesRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	result, err := h.Service.SubmitStatuses(r.Context(), req.Submitter, req.Rows)
	if err != nil {
		h.writeServiceError(w, "Failed to submit statuses", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SweepStatuses deletes status rows that ended before today.
func (h *Handler) SweepStatuses(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if r.ContentLength > 0 {
		if err := h.decode(r, &req); err != nil {
			h.writeServiceError(w, "Invalid request body", err)
			return
		}
	}
	var today generic.Date
	if strings.TrimSpace(req.Today) != "" {
		d, err := generic.ParseDate(paradestate.NormalizeDate(req.Today))
		if err != nil {
			h.writeServiceError(w, "Invalid date", err)
			return
		}
		today = d
	}
	result, err := h.Service.Sweep(r.Context(), today)
	if err != nil {
		h.writeServiceError(w, "Failed to sweep statuses", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// CreateSession starts a session for a submitter.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	state := h.Sessions.Create(req.Submitter, req.Group)
	h.log.Info("Started session", zap.String("session", state.ID), zap.String("submitter", state.Submitter))
	writeJSON(w, http.StatusCreated, state.toDTO())
}

// GetSession returns the session state.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).toDTO())
}

// DeleteSession ends a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	state := sessionFrom(r.Context())
	h.Sessions.Delete(state.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StartConduct opens a conduct draft and returns the roster view for it.
func (h *Handler) StartConduct(w http.ResponseWriter, r *http.Request) {
	var req StartConductRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	state := sessionFrom(r.Context())
	group := req.Group
	if strings.TrimSpace(group) == "" {
		group = state.Group
	}
	draft := conduct.Draft{
		Date:      paradestate.NormalizeDate(req.Date),
		Group:     group,
		Name:      req.Conduct,
		Submitter: state.Submitter,
		Remarks:   req.Remarks,
	}
	rows, err := h.Service.ConductRoster(r.Context(), draft)
	if err != nil {
		h.writeServiceError(w, "Failed to start conduct", err)
		return
	}
	if rows == nil {
		rows = []paradestate.RosterRow{}
	}

	state.Conduct = &draft
	state.Roster = rows
	if !h.Sessions.Put(state) {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, state.toDTO())
}

// FinalizeConduct records the session's conduct and clears it.
func (h *Handler) FinalizeConduct(w http.ResponseWriter, r *http.Request) {
	state := sessionFrom(r.Context())
	if state.Conduct == nil {
		writeError(w, http.StatusBadRequest, "No conduct in progress", nil)
		return
	}
	var req FinalizeConductRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	draft := *state.Conduct
	if req.Remarks != nil {
		draft.Remarks = *req.Remarks
	}
	result, err := h.Service.FinalizeConduct(r.Context(), draft, toRosterRows(req.Rows))
	if err != nil {
		h.writeServiceError(w, "Failed to record conduct", err)
		return
	}

	state.Conduct = nil
	state.Roster = nil
	h.Sessions.Put(state)
	writeJSON(w, http.StatusCreated, map[string]any{
		"conduct": toConductDTO(result.Record),
		"created": toPersonDTOs(result.Created),
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})
}

// =============================================================================
// CONDUCT ENDPOINTS
// =============================================================================

// ListConducts returns conduct history with participation rates.
func (h *Handler) ListConducts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.Conducts(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		h.writeServiceError(w, "Failed to list conducts", err)
		return
	}
	dtos := make([]ConductDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toConductDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOutliers tallies outliers for a conduct. No match is an empty report.
func (h *Handler) GetOutliers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.Service.Outliers(r.Context(), q.Get("group"), q.Get("conduct"))
	if err != nil {
		h.writeServiceError(w, "Failed to tally outliers", err)
		return
	}
	writeJSON(w, http.StatusOK, toOutliersDTO(report))
}

// ExportWorkbook streams the three tables as an .xlsx workbook.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	tables := h.Service.Tables()
	var buf bytes.Buffer
	err := xlsx.Export(r.Context(), &buf,
		xlsx.Sheet{Table: tables.Roster, Header: factory.RosterHeader},
		xlsx.Sheet{Table: tables.Status, Header: factory.StatusHeader},
		xlsx.Sheet{Table: tables.Conduct, Header: factory.ConductHeader},
	)
	if err != nil {
		h.writeServiceError(w, "Failed to export workbook", err)
		return
	}
	filename := fmt.Sprintf("parade-state-%s.xlsx", h.Service.Today())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Code = errorCode(err)
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status from the error's classification.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.log.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, generic.ErrMalformedIdentifier):
		return "malformed_identifier"
	case errors.Is(err, generic.ErrMalformedDate):
		return "malformed_date"
	case errors.Is(err, generic.ErrOverlappingStatus):
		return "overlapping_status"
	case errors.Is(err, generic.ErrInsufficientLeaveBalance):
		return "insufficient_leave_balance"
	case errors.Is(err, generic.ErrMissingRequiredField):
		return "missing_required_field"
	case errors.Is(err, generic.ErrNoMatchFound):
		return "no_match_found"
	case errors.Is(err, generic.ErrStoreOperation):
		return "store_operation"
	}
	return ""
}

// decode reads a JSON body into dst and validates it. Bad JSON and failed
// tags both come back as client errors.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &generic.MissingFieldError{Field: "body"}
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &generic.MissingFieldError{Field: verrs[0].Field()}
		}
		return err
	}
	return nil
}

// dateParam reads ?date=, returning the zero date (today) when absent.
func dateParam(r *http.Request) (generic.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return generic.Date{}, nil
	}
	date := paradestate.NormalizeDate(raw)
	if date == "" {
		return generic.Date{}, &generic.MalformedDateError{Value: raw, Reason: "not a DDMMYYYY date"}
	}
	return generic.ParseDate(date)
}
