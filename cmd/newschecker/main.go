package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsChecker/internal/app"
	"NewsChecker/internal/config"
	"NewsChecker/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "newschecker",
	Short:         "Estimate how credible a news article is",
	Long:          `newschecker scores news text with a trained classifier and heuristic indicators, and serves the scorer over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $NEWSCHECKER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug|info|warn|error)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// newApplication loads config and wires the application. Logs go to stderr so
// command output on stdout stays machine-readable.
func newApplication(cmd *cobra.Command) (*app.Application, *slog.Logger, error) {
	cfg := loadConfig()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
