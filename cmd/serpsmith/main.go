package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/serpsmith/internal/config"
	"github.com/amosWeiskopf/serpsmith/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer func() error
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zerolog.Nop(), closer: func() error { return nil }}

	rootCmd := &cobra.Command{
		Use:   "serpsmith",
		Short: "SerpSmith - SEO metrics and anomaly detection",
		Long: `SerpSmith scores keyword difficulty, predicts click-through rates,
ranks content gaps and flags period-over-period regressions from exported
search performance data.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cfg.Logging.Level = "debug"
			}

			logger, closer, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			a.cfg, a.log, a.closer = cfg, logger, closer
			a.log.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closer()
		},
	}

	rootCmd.AddCommand(
		a.normalizeCmd(),
		a.difficultyCmd(),
		a.ctrCmd(),
		a.anomaliesCmd(),
		a.gapsCmd(),
		a.benchmarkCmd(),
		a.reportCmd(),
	)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("input-format", "", "Input format (json, yaml, csv); guessed from the file extension when empty")
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
