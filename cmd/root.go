// Package cmd defines and implements the CLI commands for the awardfeed
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/config"
	"github.com/spendwatch/awardfeed/internal/logging"
	"github.com/spendwatch/awardfeed/internal/metrics"
)

var (
	cfgFile      string
	keywordsFlag string
)

// runtimeKeyType is the key for storing the Runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// Runtime holds the loaded configuration and logger shared by subcommands.
type Runtime struct {
	Cfg    config.Config
	Logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awardfeed",
		Short: "Fetch and filter federal spending awards from USAspending.gov",
		Long: `awardfeed submits bulk-download jobs to the USAspending.gov API for
contracts, indefinite-delivery vehicles, and grants, waits for each export
to finish, and filters the delivered records down to live awards matching
the configured keywords.`,

		SilenceUsage: true,

		// Config and logger are shared by every subcommand, so they are
		// built here and injected via the command context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if keywordsFlag != "" {
				cfg.Filters.Keywords = splitKeywords(keywordsFlag)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			metrics.Init()

			ctx := context.WithValue(cmd.Context(), runtimeKey, &Runtime{Cfg: cfg, Logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*Runtime); ok && rt != nil {
				rt.Logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./awardfeed.yaml if present)")
	cmd.PersistentFlags().StringVar(&keywordsFlag, "keywords", "", "comma-separated keywords overriding filters.keywords")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "awardfeed: %v\n", err)
		os.Exit(1)
	}
}

func resolveRuntime(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*Runtime)
	if !ok || rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}
	return rt, nil
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
