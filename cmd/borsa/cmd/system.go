package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func systemCmd() *cobra.Command {
	systemRoot := &cobra.Command{
		Use:   "system",
		Short: "Inspect the running server",
	}

	systemRoot.AddCommand(
		&cobra.Command{
			Use:     "state",
			Short:   "Show cache, session, quota and job status",
			Example: `  borsa system state --output json`,
			RunE: func(_ *cobra.Command, _ []string) error {
				st, err := newClient().GetSystemState(context.Background())
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(st)
				}
				return printSystemState(os.Stdout, st)
			},
		},
		&cobra.Command{
			Use:   "quota",
			Short: "Show Polygon API quota usage",
			RunE: func(_ *cobra.Command, _ []string) error {
				q, err := newClient().GetQuota(context.Background())
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(q)
				}
				return printQuota(os.Stdout, q, time.Now())
			},
		},
	)

	return systemRoot
}
