package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// IsTerminal reports whether a job status admits no further transitions.
func IsTerminal(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// Job tracks one asynchronous scan analysis owned by the external engine.
// The API returns a job id on POST /api/v1/scans; clients poll
// GET /api/v1/scans/{job_id} until the status is completed or failed.
// Once terminal, the row is never mutated again.
type Job struct {
	ID            uuid.UUID        `db:"id"             json:"id"`
	Status        string           `db:"status"         json:"status"`
	Progress      int              `db:"progress"       json:"progress"`
	StatusMessage string           `db:"status_message" json:"status_message"`
	Result        *ScanResult      `db:"result"         json:"result,omitempty"`
	Context       SubmittedContext `db:"context"        json:"context"`
	ErrorMessage  *string          `db:"error_message"  json:"error_message,omitempty"`
	CreatedAt     time.Time        `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"     json:"updated_at"`
}

// SubmittedContext is metadata captured at submission time and carried
// through to completion unchanged.
type SubmittedContext struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Modality    string `json:"modality"`
	Filename    string `json:"filename"`
}
