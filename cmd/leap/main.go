// leap is the Delusional Leap terminal client.
//
// Usage:
//
//	leap                 run the app
//	leap status          print today's progress
//	leap reset --remote  wipe local state and the backend user
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/config"
	"github.com/sandeepkv93/leap/internal/update"
)

var version = "dev"

type rootOptions struct {
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "leap",
		Short: "Small daily moves toward a big dream",
		Long: `leap runs the Delusional Leap progression loop in the terminal.

Each day brings three moves (quick, power and boss). Complete them with
proof to build your streak and fill your vision board.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before LEAP_* variables")

	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(resetCmd(opts))
	return rootCmd
}

func loadConfig(opts *rootOptions) (config.RuntimeConfig, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return config.RuntimeConfig{}, fmt.Errorf("load %s: %w", opts.envFile, err)
	}
	return config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig()), nil
}

func runApp(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	program := tea.NewProgram(update.NewModel(ctx, a.Deps()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		logger.Error("TUI exited with error", zap.Error(err))
		return fmt.Errorf("leap failed: %w", err)
	}
	return nil
}
