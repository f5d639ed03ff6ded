package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type mockAnomalyReader struct {
	getFn  func(ctx context.Context, id uuid.UUID) (*models.AnomalyRecord, error)
	listFn func(ctx context.Context, limit int) ([]*models.AnomalyRecord, error)
}

func (m *mockAnomalyReader) GetAnomaly(ctx context.Context, id uuid.UUID) (*models.AnomalyRecord, error) {
	return m.getFn(ctx, id)
}

func (m *mockAnomalyReader) ListRecentAnomalies(ctx context.Context, limit int) ([]*models.AnomalyRecord, error) {
	return m.listFn(ctx, limit)
}

func anomalyRec(severity string) *models.AnomalyRecord {
	return &models.AnomalyRecord{
		ID:          uuid.New(),
		SubjectID:   "subj-1",
		SubjectName: "Ada",
		Modality:    "CT",
		Severity:    severity,
		Findings:    "Nodule in right lung",
		RecordedAt:  time.Now().UTC(),
	}
}

func TestListAnomalies_OK(t *testing.T) {
	var gotLimit int
	reader := &mockAnomalyReader{
		listFn: func(_ context.Context, limit int) ([]*models.AnomalyRecord, error) {
			gotLimit = limit
			return []*models.AnomalyRecord{anomalyRec(models.SeverityHigh), anomalyRec(models.SeverityLow)}, nil
		},
	}
	h := NewListAnomaliesHandler(reader)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anomalies?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}
	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 {
		t.Errorf("got %d records, want 2", len(env.Data))
	}
}

func TestListAnomalies_EmptyIsArray(t *testing.T) {
	reader := &mockAnomalyReader{
		listFn: func(context.Context, int) ([]*models.AnomalyRecord, error) {
			return nil, nil
		},
	}
	h := NewListAnomaliesHandler(reader)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anomalies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Data []any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data == nil {
		t.Error("expected empty array, got null")
	}
}

func TestListAnomalies_BadLimit(t *testing.T) {
	h := NewListAnomaliesHandler(&mockAnomalyReader{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anomalies?limit=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetAnomaly_OK(t *testing.T) {
	want := anomalyRec(models.SeverityMedium)
	reader := &mockAnomalyReader{
		getFn: func(_ context.Context, id uuid.UUID) (*models.AnomalyRecord, error) {
			if id != want.ID {
				t.Errorf("id = %s, want %s", id, want.ID)
			}
			return want, nil
		},
	}
	h := NewGetAnomalyHandler(reader)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/anomalies/"+want.ID.String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("recordID", want.ID.String())
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetAnomaly_NotFound(t *testing.T) {
	reader := &mockAnomalyReader{
		getFn: func(context.Context, uuid.UUID) (*models.AnomalyRecord, error) {
			return nil, store.ErrNotFound
		},
	}
	h := NewGetAnomalyHandler(reader)

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/anomalies/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("recordID", id)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := parseErrCode(t, rec); code != "ANOMALY_NOT_FOUND" {
		t.Errorf("code = %s", code)
	}
}
