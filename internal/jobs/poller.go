package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
)

// ErrPollTimeout is returned when a job fails to reach a terminal state
// within the configured maximum wait.
var ErrPollTimeout = errors.New("job did not reach a terminal state in time")

// PollUntilTerminal polls at the configured fixed interval until the job
// reaches a terminal state, the context is cancelled, or the maximum wait
// elapses. Transient poll failures are logged and retried on the next tick;
// only an unknown job aborts the loop early. The optional onUpdate callback
// observes every successful poll, terminal one included.
func (s *Service) PollUntilTerminal(ctx context.Context, jobID uuid.UUID, onUpdate func(*models.Job)) (*models.Job, error) {
	deadline := time.Now().Add(s.pollMaxWait)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		job, err := s.Poll(ctx, jobID)
		switch {
		case err == nil:
			if onUpdate != nil {
				onUpdate(job)
			}
			if models.IsTerminal(job.Status) {
				return job, nil
			}
		case errors.Is(err, ErrStatusUnavailable):
			slog.Warn("poll attempt failed, retrying", "job_id", jobID, "error", err)
		case errors.Is(err, store.ErrNotFound):
			return nil, err
		default:
			return nil, fmt.Errorf("polling job %s: %w", jobID, err)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: waited %s for job %s", ErrPollTimeout, s.pollMaxWait, jobID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
