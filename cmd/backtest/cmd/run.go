package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/broker/sim"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/internal/logging"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/session"
	"github.com/rustyeddy/backtester/strategies"
	"github.com/rustyeddy/backtester/trader"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Load the configured window of minute prices, replay it through the
configured strategies and record every position.

Example:
  backtest run -c backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (YAML or JSON) (required)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := runBacktest(ctx, cfg, logger)
	if err != nil {
		return err
	}

	backtest.PrintResult(cmd.OutOrStdout(), res)
	return nil
}

// runBacktest wires the timeline, ledger, strategies and journal described by
// cfg and drives them to the end of the window.
func runBacktest(ctx context.Context, cfg *config.Config, logger *zap.Logger) (backtest.Result, error) {
	products, err := config.LoadProducts(cfg.Data.Products)
	if err != nil {
		return backtest.Result{}, fmt.Errorf("load products: %w", err)
	}
	start, end, err := cfg.Window.Range()
	if err != nil {
		return backtest.Result{}, err
	}

	tl, err := backtest.NewTimeline(ctx, backtest.TimelineConfig{
		Start:       start,
		End:         end,
		Instruments: cfg.Instruments,
		Root:        cfg.Data.Root,
		Products:    products,
	}, logger.Named("timeline"))
	if err != nil {
		return backtest.Result{}, fmt.Errorf("build timeline: %w", err)
	}

	strats, err := strategies.FromConfig(cfg.Strategies)
	if err != nil {
		return backtest.Result{}, err
	}

	rec, err := journal.New(cfg.Journal)
	if err != nil {
		return backtest.Result{}, fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warn("close journal", zap.Error(err))
		}
	}()

	engine := sim.NewEngine(sim.WithLogger(logger.Named("sim")))
	sess := session.New(session.User{AccountID: cfg.User.AccountID, Name: cfg.User.Name}, cfg.Run.Name)

	runner := &backtest.Runner{
		Timeline: tl,
		Trader:   trader.New(engine, strats, logger.Named("trader")),
		Broker:   engine,
		Recorder: rec,
		Session:  sess,
		Logger:   logger,
	}
	return runner.Run(ctx)
}
