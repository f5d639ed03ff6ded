package store

import (
	"context"
	"errors"

	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, message string) error
	CompleteJob(ctx context.Context, id uuid.UUID, result *models.ScanResult) error
	FailJob(ctx context.Context, id uuid.UUID, errorMessage string) error

	// InsertAnomalyIfAbsent atomically inserts the record unless one with the
	// same id already exists. Returns true iff this call performed the insert.
	// This is the idempotence guard for the completion pipeline.
	InsertAnomalyIfAbsent(ctx context.Context, rec *models.AnomalyRecord) (bool, error)
	AnomalyExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetAnomaly(ctx context.Context, id uuid.UUID) (*models.AnomalyRecord, error)
	ListRecentAnomalies(ctx context.Context, limit int) ([]*models.AnomalyRecord, error)
}
