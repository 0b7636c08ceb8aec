package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/store"
)

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's moves, streak and vision board progress",
		Long: `Print a summary of local progress without starting the app.

Examples:
  # Show status
  leap status`,
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

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			pending := 0
			if a.outbox != nil {
				if pending, err = a.outbox.Pending(cmd.Context()); err != nil {
					logger.Warn("Failed to count pending sync intents", zap.Error(err))
				}
			}
			printStatus(cmd.OutOrStdout(), a.store, pending)
			return nil
		},
	}
}

func printStatus(w io.Writer, st *store.Store, pending int) {
	u := st.User()
	name := u.Name
	if name == "" {
		name = "(not set)"
	}
	fmt.Fprintf(w, "user: %s\n", name)
	if !u.OnboardingComplete {
		fmt.Fprintln(w, "onboarding: not started")
		return
	}
	if d, ok := st.ActiveDream(); ok {
		fmt.Fprintf(w, "dream: %s\n", d.Title)
	}
	moves := st.TodaysMoves()
	fmt.Fprintf(w, "today (%s): %d/%d moves, %d points\n", st.Today(), st.TodayCompletedCount(), len(moves), st.TodayPoints())
	for _, m := range moves {
		mark := " "
		if m.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s %s\n", mark, m.Tier, m.Title)
	}
	streaks := st.Streaks()
	fmt.Fprintf(w, "streak: %d (freezes: %d)\n", streaks.Count, streaks.Freezes)
	total := st.TotalMovesCompleted()
	fmt.Fprintf(w, "total moves: %d\n", total)
	if ms, ok := model.MilestoneFor(total); ok {
		fmt.Fprintf(w, "milestone: %s %s\n", ms.Emoji, ms.Title)
	}
	fmt.Fprintf(w, "vision board: %d%%\n", st.VisionBoardPercentage())
	fmt.Fprintf(w, "pro: %t\n", st.IsPremium())
	if pending > 0 {
		fmt.Fprintf(w, "pending sync: %d\n", pending)
	}
}
