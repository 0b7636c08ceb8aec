package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func resetCmd(opts *rootOptions) *cobra.Command {
	var deleteRemote bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe local progress and start over",
		Long: `Restore the initial state. Pending sync intents are dropped.

Examples:
  # Reset local state only
  leap reset

  # Also delete the backend user
  leap reset --remote`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := a.store.ResetAll(ctx, deleteRemote); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			if deleteRemote && a.outbox != nil {
				// The worker is not running here, so push the delete now.
				if _, err := a.outbox.Flush(ctx); err != nil {
					logger.Warn("Remote delete flush failed", zap.Error(err))
				}
				if pending, err := a.outbox.Pending(ctx); err != nil || pending > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "local state reset; remote delete will retry on next launch")
					return nil
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local state reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteRemote, "remote", false, "Also delete the backend user")
	return cmd
}
