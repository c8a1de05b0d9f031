package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/borsa/internal/api/client"
)

func sessionCmd() *cobra.Command {
	var wait bool

	sessionRoot := &cobra.Command{
		Use:   "session",
		Short: "Drive a server-side explorer session",
		Long: "Explorer sessions hold the pagination and search state of one browser on\n" +
			"the server. Commands print the session's visible stocks and flags; pass\n" +
			"--wait to block until in-flight fetches settle.",
	}
	sessionRoot.PersistentFlags().BoolVar(&wait, "wait", true, "wait for in-flight fetches to settle")

	show := func(s *apiclient.Session, err error) error {
		if err != nil {
			return sessionError(err)
		}
		if jsonOutput() {
			return outputJSON(s)
		}
		return printSession(os.Stdout, s)
	}

	sessionRoot.AddCommand(
		&cobra.Command{
			Use:     "create",
			Short:   "Start a session on the first listing page",
			Example: `  borsa session create`,
			RunE: func(_ *cobra.Command, _ []string) error {
				return show(newClient().CreateSession(context.Background(), wait))
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return show(newClient().GetSession(context.Background(), args[0], wait))
			},
		},
		&cobra.Command{
			Use:   "more <id>",
			Short: "Load the next listing page",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return show(newClient().LoadMore(context.Background(), args[0], wait))
			},
		},
		&cobra.Command{
			Use:     "search <id> <term>",
			Short:   "Set the session's search term",
			Args:    cobra.ExactArgs(2),
			Example: `  borsa session search 8f14e45f-ceea-467f-a8d2-6f3b5c4e2a10 AAPL`,
			RunE: func(_ *cobra.Command, args []string) error {
				return show(newClient().Search(context.Background(), args[0], args[1], wait))
			},
		},
		&cobra.Command{
			Use:   "clear <id>",
			Short: "Clear the search and return to the listing",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return show(newClient().ClearSearch(context.Background(), args[0], wait))
			},
		},
		&cobra.Command{
			Use:   "refetch <id>",
			Short: "Refetch the active query",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return show(newClient().Refetch(context.Background(), args[0], wait))
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Close a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := newClient().DeleteSession(context.Background(), args[0]); err != nil {
					return sessionError(err)
				}
				cmd.Printf("Session %s closed.\n", args[0])
				return nil
			},
		},
	)

	return sessionRoot
}

// sessionError explains a 404: sessions are swept after sitting idle.
func sessionError(err error) error {
	if apiclient.IsNotFound(err) {
		return fmt.Errorf("session not found or expired; start a new one with 'borsa session create': %w", err)
	}
	return err
}
