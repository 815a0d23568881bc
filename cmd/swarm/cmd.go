package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	var (
		logLevel string
		pretty   bool
	)

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Particle table simulations",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(logLevel, pretty)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Human readable console logs")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func setupLogging(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

func runCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a random walk",
		Long: `Run moves every particle by a uniform random step per dimension,
resynchronizes the spatial index after each step and reports the mean
neighbour count at the end.

Settings come from flags, SWARM_* environment variables and an optional
YAML, TOML or JSON config file, in that order of precedence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			if stop := startProfile(cfg.Profile); stop != nil {
				defer stop()
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			stats, err := simulate(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path")
	addSimFlags(cmd.Flags())
	return cmd
}

func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch mode {
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	default:
		return nil
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop
}
