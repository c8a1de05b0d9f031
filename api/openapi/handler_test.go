package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func newTestServer() *echo.Echo {
	e := echo.New()
	api := humaecho.New(e, huma.DefaultConfig("borsa API", "test"))
	RegisterRoutes(e, api)

	// Registered after the swagger routes on purpose.
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/v1/ping",
	}, func(_ context.Context, _ *struct{}) (*pingOutput, error) {
		return &pingOutput{}, nil
	})
	return e
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	e := newTestServer()

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{
			name:        "json spec",
			path:        "/swagger/swagger.json",
			wantStatus:  http.StatusOK,
			wantType:    "application/json",
			wantContain: "/v1/ping",
		},
		{
			name:        "yaml spec",
			path:        "/swagger/swagger.yaml",
			wantStatus:  http.StatusOK,
			wantType:    "text/yaml",
			wantContain: "/v1/ping",
		},
		{
			name:        "ui",
			path:        "/swagger/index.html",
			wantStatus:  http.StatusOK,
			wantType:    "text/html",
			wantContain: "swagger-ui",
		},
		{
			name:       "redirect",
			path:       "/swagger",
			wantStatus: http.StatusMovedPermanently,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Contains(t, rec.Header().Get(echo.HeaderContentType), tt.wantType)
			}
			if tt.wantContain != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestSwaggerJSON_Title(t *testing.T) {
	t.Parallel()

	e := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/swagger/swagger.json", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "borsa API", doc.Info.Title)
}
