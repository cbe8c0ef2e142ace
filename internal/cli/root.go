// Package cli wires the pipeline stages into the ecomml command.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer

	// jsonLogs is set when --log-format was not given; long-running
	// commands then switch to JSON.
	jsonLogs bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFormat  string
	)
	a := &app{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "ecomml",
		Short:         "E-commerce personalization model pipeline",
		Long:          "Preprocess, train, evaluate, deploy and serve the e-commerce personalization model.",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("config") {
				if v := os.Getenv("ECOMML_CONFIG"); v != "" {
					configPath = v
				}
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			a.cfg = cfg
			a.logger = logging.New(a.stderr, logging.Format(logFormat), cfg.SlogLevel())
			a.jsonLogs = !cmd.Flags().Changed("log-format")
			slog.SetDefault(a.logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env ECOMML_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(
		newPreprocessCmd(a),
		newTrainCmd(a),
		newEvaluateCmd(a),
		newDeployCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// serviceLogger is the logger for long-running commands.
func (a *app) serviceLogger() *slog.Logger {
	if a.jsonLogs {
		return logging.New(a.stderr, logging.FormatJSON, a.cfg.SlogLevel())
	}
	return a.logger
}
