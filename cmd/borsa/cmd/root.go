// Package cmd implements the borsa CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/borsa/internal/api/client"
)

var (
	cfgFile    string
	clientFile string
	rootCmd    = &cobra.Command{
		Use:   "borsa",
		Short: "Browse Polygon.io stock tickers",
		Long: "borsa serves a cached, paginated view of the Polygon.io reference tickers\n" +
			"listing with debounced search, and browses it from the terminal.\n" +
			"The serve and browse commands talk to Polygon directly; the remaining\n" +
			"commands are clients of a running borsa server.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "service config file for serve and browse (defaults apply when empty)")
	rootCmd.PersistentFlags().
		StringVar(&clientFile, "client-config", "", "client config file (default $HOME/.borsa.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(stocksCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(systemCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	if clientFile != "" {
		viper.SetConfigFile(clientFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".borsa")
	}

	viper.SetEnvPrefix("BORSA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
