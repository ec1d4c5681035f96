package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"oneonone/internal/api"
	"oneonone/internal/metrics"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(metrics.Middleware("oneonone"))

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/sessions/{id}/presence", h.Presence)

	r.Get("/ws/session/{id}", h.NotesWS)

	r.Handle("/metrics", metrics.Handler())

	return r
}
