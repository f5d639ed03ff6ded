// Package jobs owns the client-visible job lifecycle: non-blocking
// submission, idempotent polling, and the completion side-effect pipeline
// that persists anomaly cases and routes notifications exactly once.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/engine"
	"github.com/Abhi-200412/AuraMed-sub000/internal/metrics"
	"github.com/Abhi-200412/AuraMed-sub000/internal/notify"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
)

const statusCacheTTL = 30 * time.Minute

// ErrStatusUnavailable marks a transient poll failure: the job's status is
// unknown right now, but the job itself has not failed. Callers keep polling.
var ErrStatusUnavailable = errors.New("poll attempt failed, job status unknown")

// Engine is the slice of the analysis-engine boundary this service needs.
type Engine interface {
	Submit(ctx context.Context, payload io.Reader, contentType, filename string) (uuid.UUID, error)
	Status(ctx context.Context, jobID uuid.UUID) (engine.StatusResponse, error)
}

// Ledger is the slice of the persistence boundary this service needs.
type Ledger interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, message string) error
	CompleteJob(ctx context.Context, id uuid.UUID, result *models.ScanResult) error
	FailJob(ctx context.Context, id uuid.UUID, errorMessage string) error
	InsertAnomalyIfAbsent(ctx context.Context, rec *models.AnomalyRecord) (bool, error)
}

// StatusCache caches the latest observed status per job.
type StatusCache interface {
	SetJobStatus(ctx context.Context, jobID uuid.UUID, status string, ttl time.Duration) error
}

// Publisher pushes job transitions to streaming observers.
type Publisher interface {
	PublishJobUpdate(jobID uuid.UUID, status string, progress int, message string)
}

// Service drives the job state machine against the external engine.
type Service struct {
	engine Engine
	ledger Ledger
	cache  StatusCache
	events Publisher
	router *notify.Router

	pollInterval time.Duration
	pollMaxWait  time.Duration
}

// NewService creates a job Service.
func NewService(eng Engine, ledger Ledger, cache StatusCache, events Publisher, router *notify.Router, pollInterval, pollMaxWait time.Duration) *Service {
	return &Service{
		engine:       eng,
		ledger:       ledger,
		cache:        cache,
		events:       events,
		router:       router,
		pollInterval: pollInterval,
		pollMaxWait:  pollMaxWait,
	}
}

// Submit enqueues a scan with the engine and records the job in pending
// state. Returns immediately; it never waits for analysis. If the engine
// rejects the submission no job is created and the caller may retry.
func (s *Service) Submit(ctx context.Context, payload io.Reader, contentType string, meta models.SubmittedContext) (*models.Job, error) {
	jobID, err := s.engine.Submit(ctx, payload, contentType, meta.Filename)
	if err != nil {
		return nil, fmt.Errorf("submitting to engine: %w", err)
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:            jobID,
		Status:        models.JobStatusPending,
		Progress:      0,
		StatusMessage: "Queued for analysis",
		Context:       meta,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.ledger.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusPending, statusCacheTTL)
	s.events.PublishJobUpdate(jobID, job.Status, job.Progress, job.StatusMessage)
	metrics.JobsSubmitted.Inc()

	slog.Info("job submitted", "job_id", jobID, "modality", meta.Modality)
	return job, nil
}

// Poll returns the current observable state of a job. It is idempotent and
// safe under concurrent invocation: once a terminal state has been persisted
// it is served from the ledger forever, without contacting the engine again.
// The first observation of a completed job runs the completion pipeline
// before the result is surfaced.
func (s *Service) Poll(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.ledger.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminal(job.Status) {
		return job, nil
	}

	st, err := s.engine.Status(ctx, jobID)
	if err != nil {
		// Transient failures must never be conflated with job failure.
		return nil, fmt.Errorf("%w: %v", ErrStatusUnavailable, err)
	}

	switch st.Status {
	case models.JobStatusPending:
		return job, nil

	case models.JobStatusRunning:
		if err := s.ledger.UpdateJobProgress(ctx, jobID, st.Progress, st.Message); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStatusUnavailable, err)
		}
		_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusRunning, statusCacheTTL)
		s.events.PublishJobUpdate(jobID, models.JobStatusRunning, st.Progress, st.Message)

	case models.JobStatusCompleted:
		if st.Result == nil {
			// The engine claims completion but returned no payload. Treat as
			// transient so a later poll can retry with a complete response.
			return nil, fmt.Errorf("%w: completed status without result", ErrStatusUnavailable)
		}
		if err := s.handleCompletion(ctx, job, st.Result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStatusUnavailable, err)
		}

	case models.JobStatusFailed:
		if err := s.ledger.FailJob(ctx, jobID, st.Message); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStatusUnavailable, err)
		}
		metrics.JobsFailed.Inc()
		_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, statusCacheTTL)
		s.events.PublishJobUpdate(jobID, models.JobStatusFailed, st.Progress, st.Message)
		slog.Info("job failed", "job_id", jobID, "message", st.Message)
	}

	return s.ledger.GetJob(ctx, jobID)
}

// handleCompletion runs the side-effect pipeline for a completed job. The
// anomaly insert is the single idempotence guard: only the invocation whose
// insert wins dispatches notifications, and the terminal state is persisted
// only after the guard has been settled, so a failed write is retried by the
// next poll instead of being lost.
func (s *Service) handleCompletion(ctx context.Context, job *models.Job, result *models.ScanResult) error {
	if result.AnomalyDetected {
		rec := &models.AnomalyRecord{
			ID:              job.ID,
			SubjectID:       job.Context.SubjectID,
			SubjectName:     job.Context.SubjectName,
			Modality:        job.Context.Modality,
			Severity:        result.Severity,
			ConfidenceScore: result.ConfidenceScore,
			Findings:        result.Findings,
			RecordedAt:      time.Now().UTC(),
		}

		inserted, err := s.ledger.InsertAnomalyIfAbsent(ctx, rec)
		if err != nil {
			return fmt.Errorf("persisting anomaly record: %w", err)
		}
		if inserted {
			metrics.AnomaliesRecorded.Inc()
			intent := notify.Decide(result)
			s.router.Dispatch(ctx, intent, notify.CaseSummary{
				JobID:       job.ID.String(),
				SubjectName: job.Context.SubjectName,
				Severity:    result.Severity,
				Findings:    result.Findings,
			})
			slog.Info("anomaly recorded", "job_id", job.ID, "severity", result.Severity)
		}
	}

	if err := s.ledger.CompleteJob(ctx, job.ID, result); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	metrics.JobsCompleted.Inc()
	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusCompleted, statusCacheTTL)
	s.events.PublishJobUpdate(job.ID, models.JobStatusCompleted, 100, "Analysis Complete")
	return nil
}
