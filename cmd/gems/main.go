package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	debug      bool
	outputFile string
	strict     bool
	policyName string
)

var rootCmd = &cobra.Command{
	Use:   "gems",
	Short: "GEMS - hidden gem stock screener",
	Long: `GEMS screens a watchlist of small and mid cap tickers, computes RSI,
MACD and percent change over recent daily closes, scores each ticker with
the selected policy and writes a dated and a latest CSV watchlist.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runScreen,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")

	rootCmd.Flags().StringVar(&outputFile, "file", "hidden_gems_watchlist.csv", "base output filename")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "require --file to be given explicitly")
	rootCmd.Flags().StringVar(&policyName, "policy", "", "scoring policy: additive or momentum (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
