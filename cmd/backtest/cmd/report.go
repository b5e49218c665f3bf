package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recorded runs and their positions",
	Long: `Query the SQLite journal.

Without --run every recorded run is listed; with --run the positions of that
run are printed.

Examples:
  backtest report --db backtest.sqlite
  backtest report --db backtest.sqlite --run 4f1c...`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportDBPath string
	reportRunID  string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
	reportCmd.Flags().StringVarP(&reportRunID, "run", "r", "", "run ID to show positions for")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if reportRunID == "" {
		runs, err := j.ListRuns(ctx)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		printRuns(out, runs)
		return nil
	}

	recs, err := j.ListPositions(ctx, reportRunID)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no positions for run %q", reportRunID)
	}
	printPositions(out, recs)
	return nil
}

func printRuns(w io.Writer, runs []journal.RunRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tNAME\tUSER\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s (%d)\t%s\n", r.RunID, r.Name, r.UserName, r.AccountID, r.Created.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func printPositions(w io.Writer, recs []journal.PositionRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tINSTRUMENT\tSIDE\tUNITS\tOPEN\tOPEN AT\tCLOSE\tCLOSE AT\tSTATUS\tPROFIT")
	for _, r := range recs {
		closePrice, closeAt, profit := "-", "-", "-"
		if r.ClosePrice.Valid {
			closePrice = r.ClosePrice.Decimal.String()
		}
		if !r.CloseAt.IsZero() {
			closeAt = r.CloseAt.Format(journal.TimeLayout)
		}
		if r.Profit.Valid {
			profit = r.Profit.Decimal.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PositionID, r.Instrument, r.Direction, r.Units, r.OpenPrice,
			r.OpenAt.Format(journal.TimeLayout), closePrice, closeAt, r.Status, profit)
	}
	_ = tw.Flush()
}
