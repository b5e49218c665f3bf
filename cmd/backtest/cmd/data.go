package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/internal/logging"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/market/data"
	"github.com/spf13/cobra"
)

const hourLayout = "2006-01-02T15"

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Prepare price files",
}

var dataDukascopyCmd = &cobra.Command{
	Use:   "dukascopy",
	Short: "Download Dukascopy ticks and write monthly minute files",
	Long: `Download hourly tick files for [start, end), fold them into one minute
bid bars and write them under --out in the layout "run" reads.

Example:
  backtest data dukascopy -i USD_JPY --start 2022-03-01T00 --end 2022-04-01T00 -o ./data`,
	Args: cobra.NoArgs,
	RunE: runDataDukascopy,
}

var (
	dukasInstrument string
	dukasStart      string
	dukasEnd        string
	dukasOut        string
	dukasBase       string
	dukasWorkers    int
	dukasTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataDukascopyCmd)

	f := dataDukascopyCmd.Flags()
	f.StringVarP(&dukasInstrument, "instrument", "i", "", "instrument, e.g. USD_JPY (required)")
	f.StringVar(&dukasStart, "start", "", "first hour (UTC) like 2022-03-01T00 (required)")
	f.StringVar(&dukasEnd, "end", "", "end hour (UTC, exclusive) like 2022-03-02T00 (required)")
	f.StringVarP(&dukasOut, "out", "o", "./data", "output directory")
	f.StringVar(&dukasBase, "base", data.DefaultBase, "feed base URL")
	f.IntVar(&dukasWorkers, "workers", 4, "parallel downloads")
	f.DurationVar(&dukasTimeout, "timeout", 45*time.Second, "HTTP timeout")
	_ = dataDukascopyCmd.MarkFlagRequired("instrument")
	_ = dataDukascopyCmd.MarkFlagRequired("start")
	_ = dataDukascopyCmd.MarkFlagRequired("end")
}

func runDataDukascopy(cmd *cobra.Command, args []string) error {
	inst, err := market.ParseInstrument(dukasInstrument)
	if err != nil {
		return err
	}
	start, err := time.ParseInLocation(hourLayout, dukasStart, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --start: %w", err)
	}
	end, err := time.ParseInLocation(hourLayout, dukasEnd, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --end: %w", err)
	}

	logger, err := logging.New(logLevel, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f := data.NewFetcher(logger.Named("dukascopy"))
	f.Base = dukasBase
	f.Workers = dukasWorkers
	f.Client.Timeout = dukasTimeout

	ticks, err := f.FetchTicks(cmd.Context(), inst, start, end)
	if err != nil {
		return err
	}
	paths, err := data.WriteMonthly(dukasOut, inst, data.MinuteBars(ticks))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d ticks\n", inst, len(ticks))
	for _, p := range paths {
		fmt.Fprintf(out, "  wrote %s\n", p)
	}
	return nil
}
