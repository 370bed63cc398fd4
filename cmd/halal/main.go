package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"halal_finance/internal/config"
	"halal_finance/internal/logger"
	"halal_finance/internal/market"
	"halal_finance/internal/market/alpaca"
	"halal_finance/internal/rates"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const VersionFile = "version.latest"

var (
	cfg     *config.Config
	log     *zap.Logger
	jsonOut bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "halal",
	Short: "Zakat calculator and halal stock screener",
	Long: `halal computes zakat on declared wealth and grades securities
against quantitative Shariah screens.

Run it one-shot (zakat, screen, portfolio) or as a service (serve, bot).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		cfg.Version = readVersion()
		log = logger.Setup(cfg.LogLevel, cfg.LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)
		log.Debug("Configuration loaded", zap.String("version", cfg.Version), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine-readable JSON instead of a styled report")

	rootCmd.AddCommand(zakatCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func readVersion() string {
	version, err := os.ReadFile(VersionFile)
	if err != nil {
		return "v0.0.0-dev"
	}
	return strings.TrimSpace(string(version))
}

// ratesSource serves RATES_FILE when set, otherwise the configured prices.
func ratesSource() (rates.Source, *rates.FileSource, error) {
	if cfg.RatesFile != "" {
		fs, err := rates.NewFileSource(cfg.RatesFile, log)
		if err != nil {
			return nil, nil, fmt.Errorf("load rates file: %w", err)
		}
		return fs, fs, nil
	}
	return rates.Static{Rates: cfg.Rates(), Currency: cfg.Currency}, nil, nil
}

// directory resolves symbols through Alpaca when credentials are present.
func directory() market.Directory {
	if cfg.AlpacaEnabled {
		log.Info("Using Alpaca asset directory")
		return alpaca.NewDirectory()
	}
	return market.SampleDirectory()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
