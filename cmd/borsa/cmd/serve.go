package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/borsa/api/openapi"
	"github.com/donaldgifford/borsa/internal/api/handlers"
	"github.com/donaldgifford/borsa/internal/api/middleware"
	"github.com/donaldgifford/borsa/internal/config"
	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/scheduler"
	"github.com/donaldgifford/borsa/pkg/logger"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and scheduler",
		Long: "Start the HTTP API backed by the shared query cache, along with the\n" +
			"scheduler that garbage-collects the cache, sweeps idle sessions and\n" +
			"optionally keeps the first listing page warm.",
		Example: `  borsa serve
  borsa serve --config config.yaml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	st := buildStack(cfg, log)

	registry := explore.NewRegistry(st.source,
		explore.WithIdleTimeout(cfg.Sessions.IdleTimeout),
		explore.WithRegistryLogger(log.With("component", "sessions")),
	)
	defer registry.Close()

	sched, err := newScheduler(cfg, st, registry, log)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(st.client)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("borsa API", Version))
	openapi.RegisterRoutes(e, api)
	handlers.RegisterStocksRoutes(api, handlers.NewStocksHandler(st.source))
	handlers.RegisterSessionRoutes(api, handlers.NewSessionsHandler(registry))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(sched))
	handlers.RegisterTriggerRoutes(api, handlers.NewTriggerHandler(sched))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(st.limiter))
	handlers.RegisterSystemStateRoutes(api, handlers.NewSystemStateHandler(
		handlers.SystemStateFunc(func(ctx context.Context) (*domain.SystemState, error) {
			return systemState(ctx, st, registry, sched)
		}),
	))

	sched.Start()

	addr := cfg.Server.Addr()
	log.Info("starting server", "addr", addr, "page_size", cfg.Polygon.PageSize)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.Error("server error", "err", serveErr)
	}

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	<-sched.Stop().Done()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	if serveErr != nil {
		return fmt.Errorf("serving: %w", serveErr)
	}
	return nil
}

func newScheduler(
	cfg *config.Config,
	st *stack,
	registry *explore.Registry,
	log *slog.Logger,
) (*scheduler.Scheduler, error) {
	sched := scheduler.New(scheduler.WithLogger(log.With("component", "scheduler")))

	jobs := []struct {
		name     string
		interval time.Duration
		job      scheduler.Job
	}{
		{scheduler.JobCacheGC, cfg.Query.GCInterval, scheduler.CacheGC(st.cache)},
		{scheduler.JobSessionSweep, cfg.Sessions.SweepInterval, scheduler.SessionSweep(registry)},
		{scheduler.JobListingWarm, cfg.Query.WarmInterval, scheduler.ListingWarm(st.source)},
	}
	for _, j := range jobs {
		if err := sched.Register(j.name, j.interval, j.job); err != nil {
			return nil, fmt.Errorf("registering %s job: %w", j.name, err)
		}
	}
	return sched, nil
}

func systemState(
	ctx context.Context,
	st *stack,
	registry *explore.Registry,
	sched *scheduler.Scheduler,
) (*domain.SystemState, error) {
	runs, err := sched.ListLatestJobRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing job runs: %w", err)
	}
	state := &domain.SystemState{
		PolygonConfigured: st.client.Configured(),
		CacheEntries:      st.cache.Len(),
		SessionsActive:    registry.Len(),
		Jobs:              runs,
	}
	if st.limiter != nil {
		state.DailyLimit = st.limiter.MaxDaily()
		state.DailyUsed = st.limiter.DailyCount()
	}
	return state, nil
}
