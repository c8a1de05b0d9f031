package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/borsa/internal/api/handlers"
	"github.com/donaldgifford/borsa/internal/scheduler"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// mockJobsProvider is a test double for JobsProvider.
type mockJobsProvider struct {
	latestRuns []domain.JobRun
	history    []domain.JobRun
	err        error
	gotLimit   int
}

func (m *mockJobsProvider) ListLatestJobRuns(_ context.Context) ([]domain.JobRun, error) {
	return m.latestRuns, m.err
}

func (m *mockJobsProvider) ListJobRuns(_ context.Context, _ string, limit int) ([]domain.JobRun, error) {
	m.gotLimit = limit
	return m.history, m.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleJobRun(jobName, status string) domain.JobRun {
	now := time.Now().Truncate(time.Second)
	return domain.JobRun{
		ID:        "job-run-id-1",
		JobName:   jobName,
		StartedAt: now,
		Status:    status,
	}
}

func TestListJobs_Success(t *testing.T) {
	t.Parallel()

	runs := []domain.JobRun{
		sampleJobRun(scheduler.JobCacheGC, domain.JobStatusSucceeded),
		sampleJobRun(scheduler.JobSessionSweep, domain.JobStatusSucceeded),
	}
	h := handlers.NewJobsHandler(&mockJobsProvider{latestRuns: runs})

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, h)

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "cache_gc")
	assert.Contains(t, resp.Body.String(), "session_sweep")
}

func TestListJobs_Empty(t *testing.T) {
	t.Parallel()

	h := handlers.NewJobsHandler(&mockJobsProvider{latestRuns: nil})

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, h)

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "[]")
}

func TestListJobs_Error(t *testing.T) {
	t.Parallel()

	h := handlers.NewJobsHandler(&mockJobsProvider{err: errors.New("boom")})

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, h)

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "listing jobs failed")
}

func TestGetJobHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		provider   *mockJobsProvider
		url        string
		wantStatus int
		wantBody   string
		wantLimit  int
	}{
		{
			name: "success with default limit",
			provider: &mockJobsProvider{history: []domain.JobRun{
				sampleJobRun(scheduler.JobCacheGC, domain.JobStatusSucceeded),
				sampleJobRun(scheduler.JobCacheGC, domain.JobStatusFailed),
			}},
			url:        "/api/v1/jobs/cache_gc",
			wantStatus: http.StatusOK,
			wantBody:   "cache_gc",
			wantLimit:  20,
		},
		{
			name:       "explicit limit",
			provider:   &mockJobsProvider{},
			url:        "/api/v1/jobs/cache_gc?limit=5",
			wantStatus: http.StatusOK,
			wantBody:   "[]",
			wantLimit:  5,
		},
		{
			name:       "unknown job",
			provider:   &mockJobsProvider{err: scheduler.ErrUnknownJob},
			url:        "/api/v1/jobs/ingestion",
			wantStatus: http.StatusNotFound,
			wantBody:   "unknown job: ingestion",
			wantLimit:  20,
		},
		{
			name:       "provider error",
			provider:   &mockJobsProvider{err: errors.New("boom")},
			url:        "/api/v1/jobs/cache_gc",
			wantStatus: http.StatusInternalServerError,
			wantBody:   "fetching job history failed",
			wantLimit:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewJobsHandler(tt.provider)

			_, api := humatest.New(t)
			handlers.RegisterJobRoutes(api, h)

			resp := api.Get(tt.url)
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantLimit, tt.provider.gotLimit)
		})
	}
}

func TestJobRoutes_WithScheduler(t *testing.T) {
	t.Parallel()

	sched := scheduler.New(scheduler.WithLogger(quietLogger()))
	require.NoError(t, sched.Register(scheduler.JobCacheGC, 0, func(context.Context) (int, error) {
		return 3, nil
	}))
	_, err := sched.RunJob(t.Context(), scheduler.JobCacheGC)
	require.NoError(t, err)

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(sched))

	resp := api.Get("/api/v1/jobs/cache_gc")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"affected":3`)
	assert.Contains(t, resp.Body.String(), `"status":"succeeded"`)
}
