package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

func jobsCmd() *cobra.Command {
	jobsRoot := &cobra.Command{
		Use:   "jobs",
		Short: "View and trigger scheduler jobs",
		Long: "View the execution history of scheduled jobs (cache_gc, session_sweep,\n" +
			"listing_warm) or run one immediately. Each run records status, the number\n" +
			"of entries affected, and any error.",
	}

	jobsRoot.AddCommand(
		jobsListCmd(),
		jobsHistoryCmd(),
		jobsRunCmd(),
	)

	return jobsRoot
}

func jobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List latest run per job",
		Example: `  borsa jobs list
  borsa jobs list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			runs, err := c.ListJobs(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Println("No job runs found.")
				return nil
			}
			return printJobRunsTable(os.Stdout, runs)
		},
	}
}

func jobsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <job_name>",
		Short: "Show run history for a job",
		Args:  cobra.ExactArgs(1),
		Example: `  borsa jobs history cache_gc
  borsa jobs history listing_warm --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			runs, err := c.GetJobHistory(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Printf("No runs found for job %q.\n", args[0])
				return nil
			}
			return printJobRunsTable(os.Stdout, runs)
		},
	}
}

func jobsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "run <job_name>",
		Short:   "Run a job now",
		Args:    cobra.ExactArgs(1),
		Example: `  borsa jobs run listing_warm`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			run, err := c.RunJob(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(run)
			}
			return printJobRunsTable(os.Stdout, []domain.JobRun{*run})
		},
	}
}
