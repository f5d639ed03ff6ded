package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Abhi-200412/AuraMed-sub000/internal/api/response"
	"github.com/Abhi-200412/AuraMed-sub000/internal/engine"
	"github.com/Abhi-200412/AuraMed-sub000/internal/jobs"
	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 64 << 20 // scans can be large DICOM studies

// JobService defines the interface the scan handlers depend on.
type JobService interface {
	Submit(ctx context.Context, payload io.Reader, contentType string, meta models.SubmittedContext) (*models.Job, error)
	Poll(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
}

type jobResponse struct {
	JobID    string             `json:"job_id"`
	Status   string             `json:"status"`
	Progress int                `json:"progress"`
	Message  string             `json:"message"`
	Result   *models.ScanResult `json:"result,omitempty"`
	Error    *string            `json:"error,omitempty"`
}

func toJobResponse(job *models.Job) jobResponse {
	return jobResponse{
		JobID:    job.ID.String(),
		Status:   job.Status,
		Progress: job.Progress,
		Message:  job.StatusMessage,
		Result:   job.Result,
		Error:    job.ErrorMessage,
	}
}

// NewSubmitScanHandler returns an http.HandlerFunc for POST /api/v1/scans.
// The scan file goes in the "scan" multipart field; subject metadata travels
// as ordinary form fields.
func NewSubmitScanHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Request must be multipart/form-data with a scan file", nil)
			return
		}

		file, header, err := r.FormFile("scan")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "scan file is required", nil)
			return
		}
		defer file.Close()

		meta := models.SubmittedContext{
			SubjectID:   r.FormValue("subject_id"),
			SubjectName: r.FormValue("subject_name"),
			Modality:    r.FormValue("modality"),
			Filename:    header.Filename,
		}
		if meta.SubjectID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "subject_id is required", nil)
			return
		}
		if meta.Modality == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "modality is required", nil)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		job, err := svc.Submit(r.Context(), file, contentType, meta)
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrSubmitRejected):
				response.Error(w, http.StatusBadGateway, "ENGINE_REJECTED",
					"The analysis engine rejected the scan", nil)
			case errors.Is(err, engine.ErrEngineUnreachable), errors.Is(err, engine.ErrEngineTimeout):
				response.Error(w, http.StatusBadGateway, "ENGINE_UNAVAILABLE",
					"The analysis engine is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.Accepted(w, toJobResponse(job))
	}
}

// NewPollJobHandler returns an http.HandlerFunc for GET /api/v1/scans/{jobID}.
// A transient engine outage yields 503 with STATUS_UNAVAILABLE; clients keep
// polling, the job has not failed.
func NewPollJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		job, err := svc.Poll(r.Context(), jobID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
			case errors.Is(err, jobs.ErrStatusUnavailable):
				response.Error(w, http.StatusServiceUnavailable, "STATUS_UNAVAILABLE",
					"Job status is temporarily unavailable; retry shortly", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, toJobResponse(job))
	}
}
