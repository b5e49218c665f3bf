package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay minute FX prices against trading strategies",
	Long: `Backtest replays historical one-minute FX prices, lets strategies open
and close positions against a simulated broker and records the results.

  backtest config init -o backtest.yaml
  backtest run -c backtest.yaml
  backtest report --db backtest.sqlite`,
	SilenceUsage: true,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}
