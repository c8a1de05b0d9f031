package client

import (
	"context"
	"time"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

// Quota is the server's Polygon API quota status.
type Quota struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// GetQuota returns the Polygon API quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetSystemState returns cache, session, quota and job state.
func (c *Client) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	var s domain.SystemState
	if err := c.get(ctx, "/api/v1/system/state", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
