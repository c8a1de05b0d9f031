// Package scheduler runs cache maintenance jobs on a schedule and keeps an
// in-memory history of their runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/borsa/internal/metrics"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// DefaultHistoryLimit is the number of runs kept per job.
const DefaultHistoryLimit = 20

// ErrUnknownJob is returned for job names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job performs one unit of work and reports how many items it affected.
type Job func(ctx context.Context) (int, error)

type registeredJob struct {
	run     Job
	entryID cron.EntryID
}

// Scheduler manages periodic jobs.
type Scheduler struct {
	cron         *cron.Cron
	log          *slog.Logger
	now          func() time.Time
	historyLimit int

	mu      sync.Mutex
	jobs    map[string]*registeredJob
	order   []string
	history map[string][]domain.JobRun // newest first
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithNowFunc overrides the clock used for run timestamps.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = fn
	}
}

// WithHistoryLimit sets how many runs are kept per job.
func WithHistoryLimit(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// New creates a Scheduler with no jobs.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:         cron.New(),
		log:          slog.Default(),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
		jobs:         make(map[string]*registeredJob),
		history:      make(map[string][]domain.JobRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job under name. A positive interval also schedules it;
// otherwise it only runs when triggered through RunJob.
func (s *Scheduler) Register(name string, interval time.Duration, job Job) error {
	if job == nil {
		return fmt.Errorf("job %s: nil func", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}

	rj := &registeredJob{run: job}
	if interval > 0 {
		id, err := s.cron.AddFunc("@every "+interval.String(), func() {
			s.runScheduled(name)
		})
		if err != nil {
			return fmt.Errorf("scheduling job %s: %w", name, err)
		}
		rj.entryID = id
	}

	s.jobs[name] = rj
	s.order = append(s.order, name)
	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.Entries()))
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop stops the scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Jobs returns registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// SyncNextRunTimestamps publishes each scheduled job's next run time.
func (s *Scheduler) SyncNextRunTimestamps() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, rj := range s.jobs {
		if rj.entryID == 0 {
			continue
		}
		next := s.cron.Entry(rj.entryID).Next
		if next.IsZero() {
			continue
		}
		metrics.SchedulerNextRunTimestamp.WithLabelValues(name).Set(float64(next.Unix()))
	}
}

// RunJob runs the named job now and records the run.
func (s *Scheduler) RunJob(ctx context.Context, name string) (domain.JobRun, error) {
	s.mu.Lock()
	rj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return domain.JobRun{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	run := domain.JobRun{
		ID:        uuid.New().String(),
		JobName:   name,
		StartedAt: s.now(),
		Status:    domain.JobStatusRunning,
	}
	s.record(run)

	affected, err := rj.run(ctx)

	done := s.now()
	run.CompletedAt = &done
	run.Affected = &affected
	run.Status = domain.JobStatusSucceeded
	if err != nil {
		run.Status = domain.JobStatusFailed
		run.ErrorText = err.Error()
	}
	s.record(run)
	metrics.SchedulerJobRunsTotal.WithLabelValues(name, run.Status).Inc()

	return run, err
}

func (s *Scheduler) runScheduled(name string) {
	defer s.SyncNextRunTimestamps()

	run, err := s.RunJob(context.Background(), name)
	if err != nil {
		s.log.Error("scheduled job failed", "job", name, "error", err)
		return
	}
	s.log.Debug("scheduled job completed", "job", name, "affected", *run.Affected)
}

// record inserts run, or replaces the earlier record with the same ID.
func (s *Scheduler) record(run domain.JobRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := s.history[run.JobName]
	for i := range runs {
		if runs[i].ID == run.ID {
			runs[i] = run
			return
		}
	}
	runs = append([]domain.JobRun{run}, runs...)
	if len(runs) > s.historyLimit {
		runs = runs[:s.historyLimit]
	}
	s.history[run.JobName] = runs
}

// ListLatestJobRuns returns the most recent run of every job that has run.
func (s *Scheduler) ListLatestJobRuns(_ context.Context) ([]domain.JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]domain.JobRun, 0, len(s.order))
	for _, name := range s.order {
		if h := s.history[name]; len(h) > 0 {
			runs = append(runs, h[0])
		}
	}
	return runs, nil
}

// ListJobRuns returns up to limit runs of the named job, newest first.
func (s *Scheduler) ListJobRuns(_ context.Context, name string, limit int) ([]domain.JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	runs := s.history[name]
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return slices.Clone(runs), nil
}
