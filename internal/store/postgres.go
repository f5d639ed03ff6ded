package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	contextJSON, err := json.Marshal(job.Context)
	if err != nil {
		return fmt.Errorf("marshal job context: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, progress, status_message, context, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Status, job.Progress, job.StatusMessage, contextJSON, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var (
		j           models.Job
		contextJSON []byte
		resultJSON  []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, progress, status_message, result, context, error_message, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Status, &j.Progress, &j.StatusMessage, &resultJSON, &contextJSON,
		&j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if err := json.Unmarshal(contextJSON, &j.Context); err != nil {
		return nil, fmt.Errorf("unmarshal job context: %w", err)
	}
	if resultJSON != nil {
		var r models.ScanResult
		if err := json.Unmarshal(resultJSON, &r); err != nil {
			return nil, fmt.Errorf("unmarshal job result: %w", err)
		}
		j.Result = &r
	}
	return &j, nil
}

func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	// GREATEST keeps progress monotone even if pollers race with a stale
	// engine response.
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, progress = GREATEST(progress, $3), status_message = $4, updated_at = NOW()
		 WHERE id = $1 AND status IN ($5, $6)`,
		id, models.JobStatusRunning, progress, message,
		models.JobStatusPending, models.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already terminal; terminal rows are immutable.
		return nil
	}
	return nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, id uuid.UUID, result *models.ScanResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}

	// The status guard makes the transition to terminal happen at most once.
	_, err = s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, progress = 100, status_message = 'Analysis Complete', result = $3, updated_at = NOW()
		 WHERE id = $1 AND status IN ($4, $5)`,
		id, models.JobStatusCompleted, resultJSON,
		models.JobStatusPending, models.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

func (s *PostgresStore) FailJob(ctx context.Context, id uuid.UUID, errorMessage string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, error_message = $3, updated_at = NOW()
		 WHERE id = $1 AND status IN ($4, $5)`,
		id, models.JobStatusFailed, errorMessage,
		models.JobStatusPending, models.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// --- Anomaly records ---

func (s *PostgresStore) InsertAnomalyIfAbsent(ctx context.Context, rec *models.AnomalyRecord) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO anomaly_records (id, subject_id, subject_name, modality, severity, confidence_score, findings, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.SubjectID, rec.SubjectName, rec.Modality, rec.Severity,
		rec.ConfidenceScore, rec.Findings, rec.RecordedAt)
	if err != nil {
		return false, fmt.Errorf("insert anomaly record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) AnomalyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM anomaly_records WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("anomaly exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) GetAnomaly(ctx context.Context, id uuid.UUID) (*models.AnomalyRecord, error) {
	var r models.AnomalyRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, subject_id, subject_name, modality, severity, confidence_score, findings, recorded_at
		 FROM anomaly_records WHERE id = $1`, id,
	).Scan(&r.ID, &r.SubjectID, &r.SubjectName, &r.Modality, &r.Severity,
		&r.ConfidenceScore, &r.Findings, &r.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get anomaly record: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) ListRecentAnomalies(ctx context.Context, limit int) ([]*models.AnomalyRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, subject_id, subject_name, modality, severity, confidence_score, findings, recorded_at
		 FROM anomaly_records ORDER BY recorded_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list anomaly records: %w", err)
	}
	defer rows.Close()

	records := []*models.AnomalyRecord{}
	for rows.Next() {
		var r models.AnomalyRecord
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.SubjectName, &r.Modality, &r.Severity,
			&r.ConfidenceScore, &r.Findings, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly record: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
