package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/lead-harvester/internal/api"
	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

type mockStores struct {
	countFunc       func() (int64, int64, error)
	unextractedFunc func() (int64, error)
	emailCountFunc  func() (int64, error)
	emailListFunc   func(start, end *time.Time) ([]domain.ExtractedEmail, error)
	retrieveFunc    func() (*pipeline.Counters, error)
	extractFunc     func() (*pipeline.ExtractStats, error)
	pingErr         error
}

func (m *mockStores) Count(context.Context) (int64, int64, error) {
	if m.countFunc != nil {
		return m.countFunc()
	}
	return 0, 0, nil
}

func (m *mockStores) CountUnextracted(context.Context) (int64, error) {
	if m.unextractedFunc != nil {
		return m.unextractedFunc()
	}
	return 0, nil
}

func (m *mockStores) EmailCount(context.Context) (int64, error) {
	if m.emailCountFunc != nil {
		return m.emailCountFunc()
	}
	return 0, nil
}

func (m *mockStores) List(_ context.Context, start, end *time.Time) ([]domain.ExtractedEmail, error) {
	if m.emailListFunc != nil {
		return m.emailListFunc(start, end)
	}
	return []domain.ExtractedEmail{}, nil
}

func (m *mockStores) Retrieve(context.Context) (*pipeline.Counters, error) {
	if m.retrieveFunc != nil {
		return m.retrieveFunc()
	}
	return &pipeline.Counters{}, nil
}

func (m *mockStores) Extract(context.Context) (*pipeline.ExtractStats, error) {
	if m.extractFunc != nil {
		return m.extractFunc()
	}
	return &pipeline.ExtractStats{}, nil
}

func (m *mockStores) PingContext(context.Context) error {
	return m.pingErr
}

// Adapters so one mock can stand in for every handler dependency.
type emailReader struct{ *mockStores }

func (e emailReader) Count(ctx context.Context) (int64, error) { return e.EmailCount(ctx) }

type retrievalRunner struct{ *mockStores }

func (r retrievalRunner) Run(ctx context.Context) (*pipeline.Counters, error) {
	return r.Retrieve(ctx)
}

type extractionRunner struct{ *mockStores }

func (e extractionRunner) Run(ctx context.Context) (*pipeline.ExtractStats, error) {
	return e.Extract(ctx)
}

func setupRouter(t *testing.T, m *mockStores) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	handler := api.NewHandler(
		m,
		m,
		emailReader{m},
		retrievalRunner{m},
		extractionRunner{m},
		m,
		"lead-harvester",
		"test",
		logger.NewNop(),
	)

	router := gin.New()
	api.SetupRoutes(router, handler)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), method, path, http.NoBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	router.ServeHTTP(w, req)

	return w
}

func TestHandler_GetStats(t *testing.T) {
	m := &mockStores{
		countFunc:       func() (int64, int64, error) { return 10, 7, nil },
		unextractedFunc: func() (int64, error) { return 3, nil },
		emailCountFunc:  func() (int64, error) { return 42, nil },
	}
	router := setupRouter(t, m)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp api.StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Snapshots.Total != 10 || resp.Snapshots.Processed != 7 || resp.Snapshots.Pending != 3 {
		t.Errorf("snapshots = %+v", resp.Snapshots)
	}
	if resp.Unextracted != 3 || resp.Emails != 42 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_GetStats_StoreFailure(t *testing.T) {
	m := &mockStores{
		countFunc: func() (int64, int64, error) { return 0, 0, errors.New("connection refused") },
	}
	router := setupRouter(t, m)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stats")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHandler_ListEmails_DateWindow(t *testing.T) {
	var gotStart, gotEnd *time.Time

	m := &mockStores{
		emailListFunc: func(start, end *time.Time) ([]domain.ExtractedEmail, error) {
			gotStart, gotEnd = start, end
			return []domain.ExtractedEmail{{Email: "a@b.com"}}, nil
		},
	}
	router := setupRouter(t, m)

	w := doRequest(t, router, http.MethodGet, "/api/v1/emails?start_date=2026-08-01&end_date=2026-08-20")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	if gotStart == nil || !gotStart.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want 2026-08-01", gotStart)
	}
	// end_date is inclusive of the whole day, so the store sees the next
	// midnight as the exclusive bound.
	if gotEnd == nil || !gotEnd.Equal(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want 2026-08-21 exclusive", gotEnd)
	}

	var resp api.EmailsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandler_ListEmails_BadDate(t *testing.T) {
	router := setupRouter(t, &mockStores{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/emails?start_date=20-08-2026")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandler_RunRetrieve(t *testing.T) {
	m := &mockStores{
		retrieveFunc: func() (*pipeline.Counters, error) {
			return &pipeline.Counters{Total: 2, Successful: 2}, nil
		},
	}
	router := setupRouter(t, m)

	w := doRequest(t, router, http.MethodPost, "/api/v1/retrieve/run")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var counters pipeline.Counters
	if err := json.NewDecoder(w.Body).Decode(&counters); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if counters.Successful != 2 {
		t.Errorf("successful = %d, want 2", counters.Successful)
	}
}

func TestHandler_RunExtract_Failure(t *testing.T) {
	m := &mockStores{
		extractFunc: func() (*pipeline.ExtractStats, error) {
			return nil, errors.New("store unavailable")
		},
	}
	router := setupRouter(t, m)

	w := doRequest(t, router, http.MethodPost, "/api/v1/extract/run")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHandler_HealthAndReady(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := setupRouter(t, &mockStores{})

		w := doRequest(t, router, http.MethodGet, "/health")
		if w.Code != http.StatusOK {
			t.Errorf("health status = %d, want 200", w.Code)
		}

		w = doRequest(t, router, http.MethodGet, "/ready")
		if w.Code != http.StatusOK {
			t.Errorf("ready status = %d, want 200", w.Code)
		}
	})

	t.Run("database down", func(t *testing.T) {
		router := setupRouter(t, &mockStores{pingErr: errors.New("no route to host")})

		w := doRequest(t, router, http.MethodGet, "/ready")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("ready status = %d, want 503", w.Code)
		}
	})
}
