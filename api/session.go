package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/paradestate"
)

// SessionState is everything one user has entered across requests: who
// they are and the conduct they are recording.
type SessionState struct {
	ID        string
	Submitter string
	Group     string
	CreatedAt time.Time
	Conduct   *conduct.Draft
	Roster    []paradestate.RosterRow
}

func (s SessionState) toDTO() SessionDTO {
	dto := SessionDTO{
		ID:        s.ID,
		Submitter: s.Submitter,
		Group:     s.Group,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		Roster:    s.Roster,
	}
	if s.Conduct != nil {
		dto.Conduct = &ConductDraftDTO{
			Date:    s.Conduct.Date,
			Group:   s.Conduct.Group,
			Conduct: s.Conduct.Name,
			Remarks: s.Conduct.Remarks,
		}
	}
	return dto
}

// SessionStore keeps session state in memory, keyed by a random id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionState
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]SessionState),
		now:      time.Now,
	}
}

// Create starts a session.
func (s *SessionStore) Create(submitter, group string) SessionState {
	state := SessionState{
		ID:        uuid.NewString(),
		Submitter: paradestate.DisplayLabel(submitter),
		Group:     paradestate.DisplayLabel(group),
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.sessions[state.ID] = state
	s.mu.Unlock()
	return state
}

// Get returns a copy of the session.
func (s *SessionStore) Get(id string) (SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	return state, ok
}

// Put replaces a session that still exists.
func (s *SessionStore) Put(state SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[state.ID]; !ok {
		return false
	}
	s.sessions[state.ID] = state
	return true
}

// Delete ends a session.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len is the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type sessionKey struct{}

// SessionContext loads the session named by the {id} URL parameter into the
// request context, or answers 404.
func (h *Handler) SessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := h.Sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Session not found", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, state)))
	})
}

func sessionFrom(ctx context.Context) SessionState {
	state, _ := ctx.Value(sessionKey{}).(SessionState)
	return state
}
