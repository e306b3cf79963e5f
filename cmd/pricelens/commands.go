package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	outputFormat string
	startFlag    string
	endFlag      string
	refreshCache bool
	runsSymbol   string
	runsLimit    int

	rootCmd = &cobra.Command{
		Use:   "pricelens",
		Short: "Stock price dashboard with moving averages and model forecasts",
		Long: `PriceLens fetches daily price bars for a ticker, overlays 50/100/200-day
moving averages and compares a pre-trained model's next-day predictions
against the actual closes.`,
		SilenceUsage: true,
	}
	runCmd = &cobra.Command{
		Use:   "run [SYMBOL]",
		Short: "Build one dashboard and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDashboard,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, refresh the watchlist on schedule and answer Telegram commands",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List recent dashboard runs",
		Args:  cobra.NoArgs,
		RunE:  runListRuns,
	}
)

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "Path to the YAML config file")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json)")
	runCmd.Flags().StringVar(&startFlag, "start", "", "First date, YYYY-MM-DD (default from config)")
	runCmd.Flags().StringVar(&endFlag, "end", "", "Exclusive last date, YYYY-MM-DD (default from config)")
	runCmd.Flags().BoolVar(&refreshCache, "refresh", false, "Drop cached bars for the symbol before fetching")

	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsSymbol, "symbol", "", "Only runs of this symbol")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to show")
	runsCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json)")
}
