// Package dashboardhttp exposes the attendance dashboard over HTTP.
package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(30, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handlePage)
	r.Route("/pages/{pageID}", func(pr chi.Router) {
		pr.Post("/observe/{target}", h.handleObserve)
		pr.Get("/toasts", h.handleToasts)
	})
	r.Get("/students", h.handleListStudents)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/students", h.handleCreateStudent)
		gr.Put("/students/{id}", h.handleUpdateStudent)
		gr.Delete("/students/{id}", h.handleDeleteStudent)
		gr.Post("/students/{id}/delete", h.handleDeleteStudent)
	})
}
