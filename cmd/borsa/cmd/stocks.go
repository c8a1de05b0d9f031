package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func stocksCmd() *cobra.Command {
	stocksRoot := &cobra.Command{
		Use:   "stocks",
		Short: "List and search stocks through the API",
	}

	stocksRoot.AddCommand(
		stocksListCmd(),
		stocksSearchCmd(),
	)

	return stocksRoot
}

func stocksListCmd() *cobra.Command {
	var (
		offset int
		fresh  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of stocks",
		Example: `  borsa stocks list
  borsa stocks list --offset 50
  borsa stocks list --fresh --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			page, err := c.ListStocks(context.Background(), offset, fresh)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(page)
			}
			if len(page.Stocks) == 0 {
				fmt.Println("No stocks available at the moment.")
				return nil
			}
			if err := printStocksTable(os.Stdout, page.Stocks); err != nil {
				return err
			}
			if page.HasMore {
				fmt.Printf("\nMore results: --offset %d\n", page.NextOffset)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "page offset (a multiple of the server page size)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "bypass cached pages")

	return cmd
}

func stocksSearchCmd() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search stocks by ticker or company name",
		Args:  cobra.ExactArgs(1),
		Example: `  borsa stocks search AAPL
  borsa stocks search "micro devices" --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			res, err := c.SearchStocks(context.Background(), args[0], fresh)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			if res.Total == 0 {
				fmt.Printf("No stocks match your search for %q.\n", res.Query)
				return nil
			}
			if err := printStocksTable(os.Stdout, res.Stocks); err != nil {
				return err
			}
			noun := "results"
			if res.Total == 1 {
				noun = "result"
			}
			fmt.Printf("\n%d %s for %q\n", res.Total, noun, res.Query)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "bypass cached results")

	return cmd
}
