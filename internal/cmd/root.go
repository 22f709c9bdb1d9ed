// Package cmd wires the CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"scriptsmith/internal/config"
	"scriptsmith/internal/log"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scriptsmith",
	Short: "Natural-language requests to sandboxed, executed programs",
	Long: `scriptsmith is a code factory: it turns a natural-language request
into an analyzed task, an execution plan, generated Go source, a
self-contained bundle, and a sandboxed run whose results are extracted
and printed.

Every stage that talks to the generation oracle retries with corrective
feedback before giving up, and nothing generated ever executes outside
a resource-limited container.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}

		logger = log.New(log.Config{
			Level:  log.ParseLevel(cfg.Log.Level),
			Format: log.ParseFormat(cfg.Log.Format),
			Output: os.Stderr,
		})
		log.SetDefaultLogger(logger)
		return nil
	},
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./scriptsmith.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}
