package api

import (
	"net/http"

	mw "github.com/Abhi-200412/AuraMed-sub000/internal/api/middleware"
	"github.com/Abhi-200412/AuraMed-sub000/internal/api/response"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler  http.HandlerFunc
	SubmitScan     http.HandlerFunc
	PollJobHandler http.HandlerFunc
	ListAnomalies  http.HandlerFunc
	GetAnomaly     http.HandlerFunc
	ChatHandler    http.HandlerFunc
	EventsHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Health and metrics stay outside the rate limit.
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/scans", orNotImplemented(deps.SubmitScan))
		r.Get("/api/v1/scans/{jobID}", orNotImplemented(deps.PollJobHandler))

		r.Get("/api/v1/anomalies", orNotImplemented(deps.ListAnomalies))
		r.Get("/api/v1/anomalies/{recordID}", orNotImplemented(deps.GetAnomaly))

		r.Post("/api/v1/chat", orNotImplemented(deps.ChatHandler))
	})

	// Websocket stream of job updates; rate limiting a long-lived upgrade
	// request makes no sense.
	r.Get("/api/v1/events", orNotImplemented(deps.EventsHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
