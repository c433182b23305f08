/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the parade UI

ROUTE GROUPS:
  /api/roster/*         Roster lookups
  /api/parade/*         Who is away on a date
  /api/statuses/*       Status editing and the expiry sweep
  /api/sessions/*       Per-session state and conduct recording
  /api/conducts         Conduct history
  /api/outliers         Outlier frequency for one conduct
  /api/export           Workbook download of all three tables
  /api/scenarios/*      Demo datasets

SECURITY NOTE:
  No authentication middleware. All endpoints are public; the submitter
  name is taken from the session as entered by the user.

SEE ALSO:
  - handlers.go: Handler implementations
  - session.go: Session store and middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins is used when no origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/roster", func(r chi.Router) {
			r.Get("/", h.ListRoster)
			r.Get("/{id}/name", h.GetPersonName)
		})

		r.Route("/parade", func(r chi.Router) {
			r.Get("/", h.GetParadeState)
			r.Get("/roster", h.GetRosterView)
		})

		r.Route("/statuses", func(r chi.Router) {
			r.Get("/editable", h.GetEditableView)
			r.Post("/", h.SubmitStatuses)
			r.Post("/sweep", h.SweepStatuses)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.SessionContext)
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/conduct", h.StartConduct)
				r.Post("/conduct/finalize", h.FinalizeConduct)
			})
		})

		r.Get("/conducts", h.ListConducts)
		r.Get("/outliers", h.GetOutliers)
		r.Get("/export", h.ExportWorkbook)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetTables)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Parade State</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Parade State API</h1>
<ul>
<li><a href="/api/parade">/api/parade</a> - Who is away today</li>
<li><a href="/api/roster">/api/roster</a> - Roster</li>
<li><a href="/api/conducts">/api/conducts</a> - Conduct history</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo datasets</li>
<li><a href="/api/export">/api/export</a> - Download workbook</li>
</ul>
</body>
</html>`))
	})

	return r
}
