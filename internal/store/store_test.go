package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("auramed_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newJob(id uuid.UUID) *models.Job {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Job{
		ID:            id,
		Status:        models.JobStatusPending,
		Progress:      0,
		StatusMessage: "Queued",
		Context: models.SubmittedContext{
			SubjectID:   "PAT-001",
			SubjectName: "Jordan Avery",
			Modality:    "xray",
			Filename:    "chest.png",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func anomalyResult() *models.ScanResult {
	return &models.ScanResult{
		AnomalyDetected: true,
		Severity:        models.SeverityHigh,
		ConfidenceScore: 91,
		Findings:        "Opacity in the left lower lobe",
	}
}

// --- Jobs ---

func TestCreateGetJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.CreateJob(ctx, newJob(id)))

	got, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.JobStatusPending, got.Status)
	assert.Equal(t, "PAT-001", got.Context.SubjectID)
	assert.Nil(t, got.Result)
}

func TestGetJob_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateJobProgress_Monotone(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.CreateJob(ctx, newJob(id)))

	require.NoError(t, s.UpdateJobProgress(ctx, id, 40, "Scanning"))
	// A stale poll reporting lower progress must not move the job backwards.
	require.NoError(t, s.UpdateJobProgress(ctx, id, 10, "Scanning"))

	got, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
	assert.Equal(t, 40, got.Progress)
}

func TestCompleteJob_TerminalImmutable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.CreateJob(ctx, newJob(id)))
	require.NoError(t, s.CompleteJob(ctx, id, anomalyResult()))

	// Neither progress updates nor failure reports touch a terminal row.
	require.NoError(t, s.UpdateJobProgress(ctx, id, 10, "Scanning"))
	require.NoError(t, s.FailJob(ctx, id, "late failure"))

	got, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.AnomalyDetected)
	assert.Equal(t, models.SeverityHigh, got.Result.Severity)
	assert.Nil(t, got.ErrorMessage)
}

func TestFailJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.CreateJob(ctx, newJob(id)))
	require.NoError(t, s.FailJob(ctx, id, "inference crashed"))

	got, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "inference crashed", *got.ErrorMessage)
}

// --- Anomaly records ---

func insertJobWithRecord(t *testing.T, s store.Store, ctx context.Context) *models.AnomalyRecord {
	t.Helper()
	id := uuid.New()
	require.NoError(t, s.CreateJob(ctx, newJob(id)))
	return &models.AnomalyRecord{
		ID:              id,
		SubjectID:       "PAT-001",
		SubjectName:     "Jordan Avery",
		Modality:        "xray",
		Severity:        models.SeverityHigh,
		ConfidenceScore: 91,
		Findings:        "Opacity in the left lower lobe",
		RecordedAt:      time.Now().UTC(),
	}
}

func TestInsertAnomalyIfAbsent_Dedup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	rec := insertJobWithRecord(t, s, ctx)

	inserted, err := s.InsertAnomalyIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertAnomalyIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := s.AnomalyExists(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertAnomalyIfAbsent_Concurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	rec := insertJobWithRecord(t, s, ctx)

	const n = 8
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inserted, err := s.InsertAnomalyIfAbsent(ctx, rec)
			require.NoError(t, err)
			results[i] = inserted
		}(i)
	}
	wg.Wait()

	var wins int
	for _, inserted := range results {
		if inserted {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent insert must win")
}

func TestListRecentAnomalies_Order(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec := insertJobWithRecord(t, s, ctx)
		rec.RecordedAt = base.Add(time.Duration(i) * time.Minute)
		inserted, err := s.InsertAnomalyIfAbsent(ctx, rec)
		require.NoError(t, err)
		require.True(t, inserted)
		ids = append(ids, rec.ID)
	}

	records, err := s.ListRecentAnomalies(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Most recent first.
	assert.Equal(t, ids[2], records[0].ID)
	assert.Equal(t, ids[0], records[2].ID)
}

func TestGetAnomaly_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetAnomaly(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
