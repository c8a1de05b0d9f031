package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

// SystemStateProvider reports aggregate service state.
type SystemStateProvider interface {
	GetSystemState(ctx context.Context) (*domain.SystemState, error)
}

// SystemStateFunc adapts a function to SystemStateProvider.
type SystemStateFunc func(ctx context.Context) (*domain.SystemState, error)

// GetSystemState calls f.
func (f SystemStateFunc) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	return f(ctx)
}

// SystemStateHandler handles GET /api/v1/system/state.
type SystemStateHandler struct {
	provider SystemStateProvider
}

// NewSystemStateHandler creates a SystemStateHandler.
func NewSystemStateHandler(p SystemStateProvider) *SystemStateHandler {
	return &SystemStateHandler{provider: p}
}

// SystemStateOutput is the response for GET /api/v1/system/state.
type SystemStateOutput struct {
	Body *domain.SystemState
}

// GetSystemState returns cache, session, quota and job state.
func (h *SystemStateHandler) GetSystemState(
	ctx context.Context,
	_ *struct{},
) (*SystemStateOutput, error) {
	state, err := h.provider.GetSystemState(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get system state")
	}
	if state.Jobs == nil {
		state.Jobs = []domain.JobRun{}
	}
	return &SystemStateOutput{Body: state}, nil
}

// RegisterSystemStateRoutes registers the system state route on the Huma API.
func RegisterSystemStateRoutes(api huma.API, h *SystemStateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-system-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/system/state",
		Summary:     "Get system state",
		Description: "Returns query cache size, open sessions, Polygon quota usage and the latest job runs.",
		Tags:        []string{"system"},
	}, h.GetSystemState)
}
