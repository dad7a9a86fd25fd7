package apihttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the versioned API. Callers may add further routes
// (health, metrics) on the returned router.
func NewRouter(kpi *KPIHandler, schedules *ScheduleHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		if kpi != nil {
			r.Route("/kpi", kpi.Routes)
		}
		if schedules != nil {
			r.Route("/schedules", schedules.Routes)
		}
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	return r
}
