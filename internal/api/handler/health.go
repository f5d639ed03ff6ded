package handler

import (
	"context"
	"net/http"

	"github.com/Abhi-200412/AuraMed-sub000/internal/api/response"
)

// Pinger checks liveness of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readier checks whether the analysis engine will accept work.
type Readier interface {
	Ready(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. The
// service is down when its own stores are down; an engine outage only
// degrades it, since polling and chat keep working.
func NewHealthHandler(db, cache Pinger, eng Readier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
			"engine":   "ok",
		}
		healthy := true

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if err := cache.Ping(r.Context()); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		}

		status := "ok"
		if err := eng.Ready(r.Context()); err != nil {
			checks["engine"] = err.Error()
			status = "degraded"
		}

		if !healthy {
			response.Error(w, http.StatusServiceUnavailable, "UNHEALTHY",
				"One or more backing services are unavailable", checks)
			return
		}

		response.JSON(w, healthResponse{Status: status, Checks: checks})
	}
}
