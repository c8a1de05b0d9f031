package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/borsa/internal/api/handlers"
	"github.com/donaldgifford/borsa/internal/scheduler"
)

func TestTriggerJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		job        string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "runs a registered job",
			job:        scheduler.JobCacheGC,
			wantStatus: http.StatusOK,
			wantBody:   []string{`"job_name":"cache_gc"`, `"status":"succeeded"`, `"affected":2`},
		},
		{
			name:       "job failure",
			job:        scheduler.JobListingWarm,
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{"listing_warm failed: polygon down"},
		},
		{
			name:       "unknown job",
			job:        "ingestion",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{"unknown job: ingestion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sched := scheduler.New(scheduler.WithLogger(quietLogger()))
			require.NoError(t, sched.Register(scheduler.JobCacheGC, 0, func(context.Context) (int, error) {
				return 2, nil
			}))
			require.NoError(t, sched.Register(scheduler.JobListingWarm, 0, func(context.Context) (int, error) {
				return 0, errors.New("polygon down")
			}))

			_, api := humatest.New(t)
			handlers.RegisterTriggerRoutes(api, handlers.NewTriggerHandler(sched))

			resp := api.Post("/api/v1/jobs/" + tt.job + "/run")
			require.Equal(t, tt.wantStatus, resp.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, resp.Body.String(), want)
			}
		})
	}
}
