package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/srtbspeeds/internal/chartservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives a notification after every successful edit.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *chartservice.Service, authEnabled bool, token string, events EventPublisher, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/charts", h.ListCharts)
	r.Get("/charts/*", h.GetChart)

	// Speed triggers of one chart difficulty.
	r.Get("/speeds/*", h.ExtractSpeeds)
	r.Put("/speeds/*", h.IntegrateSpeeds)
	r.Delete("/speeds/*", h.RemoveSpeeds)
	r.Post("/speeds/*", h.ExportSpeeds)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
