package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Abhi-200412/AuraMed-sub000/internal/api/response"
	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AnomalyReader defines the interface the anomaly handlers depend on.
type AnomalyReader interface {
	GetAnomaly(ctx context.Context, id uuid.UUID) (*models.AnomalyRecord, error)
	ListRecentAnomalies(ctx context.Context, limit int) ([]*models.AnomalyRecord, error)
}

// NewListAnomaliesHandler returns an http.HandlerFunc for GET /api/v1/anomalies.
// Records come back most recent first; the store clamps the limit.
func NewListAnomaliesHandler(reader AnomalyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a non-negative integer", nil)
				return
			}
			limit = n
		}

		records, err := reader.ListRecentAnomalies(r.Context(), limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if records == nil {
			records = []*models.AnomalyRecord{}
		}

		response.JSON(w, records)
	}
}

// NewGetAnomalyHandler returns an http.HandlerFunc for GET /api/v1/anomalies/{recordID}.
func NewGetAnomalyHandler(reader AnomalyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "recordID must be a valid UUID", nil)
			return
		}

		rec, err := reader.GetAnomaly(r.Context(), recordID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "ANOMALY_NOT_FOUND", "No anomaly record with that id", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, rec)
	}
}
