package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/borsa/internal/scheduler"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// JobRunner defines the interface for running a scheduler job on demand.
type JobRunner interface {
	RunJob(ctx context.Context, name string) (domain.JobRun, error)
}

// TriggerHandler handles manual job trigger requests.
type TriggerHandler struct {
	runner JobRunner
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(r JobRunner) *TriggerHandler {
	return &TriggerHandler{runner: r}
}

// TriggerJobInput names the job to run.
type TriggerJobInput struct {
	JobName string `path:"job_name" doc:"Scheduled job name" example:"cache_gc"`
}

// TriggerJobOutput is the response body for a completed job run.
type TriggerJobOutput struct {
	Body domain.JobRun
}

// TriggerJob runs a registered job now and returns the finished run.
func (h *TriggerHandler) TriggerJob(ctx context.Context, input *TriggerJobInput) (*TriggerJobOutput, error) {
	run, err := h.runner.RunJob(ctx, input.JobName)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			return nil, huma.Error404NotFound("unknown job: " + input.JobName)
		}
		return nil, huma.Error500InternalServerError(input.JobName + " failed: " + err.Error())
	}
	return &TriggerJobOutput{Body: run}, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, h *TriggerHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-job",
		Method:      http.MethodPost,
		Path:        "/api/v1/jobs/{job_name}/run",
		Summary:     "Run a scheduler job now",
		Description: "Runs a registered job (cache_gc, session_sweep, listing_warm) " +
			"synchronously and records it in the job history.",
		Tags:   []string{"scheduler"},
		Errors: []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.TriggerJob)
}
