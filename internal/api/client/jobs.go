package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

// ListJobs returns the most recent run for each scheduled job.
func (c *Client) ListJobs(ctx context.Context) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	if err := c.get(ctx, "/api/v1/jobs", nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetJobHistory returns the run history for a specific scheduled job.
func (c *Client) GetJobHistory(ctx context.Context, jobName string) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	if err := c.get(ctx, "/api/v1/jobs/"+url.PathEscape(jobName), nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunJob runs a scheduled job now and returns the finished run.
func (c *Client) RunJob(ctx context.Context, jobName string) (*domain.JobRun, error) {
	var run domain.JobRun
	if err := c.post(ctx, "/api/v1/jobs/"+url.PathEscape(jobName)+"/run", nil, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
