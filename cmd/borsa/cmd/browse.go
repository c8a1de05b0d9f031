package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/borsa/internal/scheduler"
	"github.com/donaldgifford/borsa/internal/tui"
	"github.com/donaldgifford/borsa/pkg/logger"
)

func browseCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stocks in the terminal",
		Long: "Open an interactive card grid of the Polygon tickers listing. Scrolling\n" +
			"to the last row loads the next page; typing searches by ticker or company\n" +
			"name after a short pause.",
		Example: `  borsa browse
  POLYGON_API_KEY=... borsa browse --log-file borsa.log`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logger.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				log = logger.NewWithWriter(f, cfg.Logging.Level, cfg.Logging.Format)
			}
			slog.SetDefault(log)

			st := buildStack(cfg, log)

			sched := scheduler.New(scheduler.WithLogger(log.With("component", "scheduler")))
			if err := sched.Register(scheduler.JobCacheGC, cfg.Query.GCInterval, scheduler.CacheGC(st.cache)); err != nil {
				return fmt.Errorf("registering %s job: %w", scheduler.JobCacheGC, err)
			}
			sched.Start()
			defer sched.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, st.source,
				tui.WithDebounce(cfg.Search.Debounce),
				tui.WithLogger(log),
			)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (the terminal is used by the UI)")

	return cmd
}
