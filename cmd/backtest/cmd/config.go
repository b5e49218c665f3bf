package cmd

import (
	"fmt"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/strategies"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage backtest configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check that a configuration file loads, its products file parses and
every strategy can be built.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "backtest.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	_ = configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  backtest run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	products, err := config.LoadProducts(cfg.Data.Products)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	for _, inst := range cfg.Instruments {
		if _, ok := products.Product(inst); !ok {
			return fmt.Errorf("validation failed: no product for %s", inst)
		}
	}
	strats, err := strategies.FromConfig(cfg.Strategies)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  User:        %s (%d)\n", cfg.User.Name, cfg.User.AccountID)
	fmt.Fprintf(out, "  Window:      %s .. %s\n", cfg.Window.Start, cfg.Window.End)
	fmt.Fprintf(out, "  Instruments: %v\n", cfg.Instruments)
	for _, s := range strats {
		fmt.Fprintf(out, "  Strategy:    %s\n", s.Name())
	}
	fmt.Fprintf(out, "  Journal:     %s\n", cfg.Journal.Type)
	return nil
}
