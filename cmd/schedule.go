package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/schedule"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a fetch now and then on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("schedule"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return runSchedule(ctx, st)
	},
}

// runSchedule blocks until ctx is done, running one fetch at startup and one
// per cron tick.
func runSchedule(ctx context.Context, st store.Store) error {
	sched, err := schedule.New(cfg.Schedule.Cron, func(ctx context.Context) error {
		result, err := runFetch(ctx, st)
		if err != nil {
			return err
		}
		zap.L().Info("scheduled fetch complete",
			zap.Int("persisted", result.Persisted),
			zap.Int("failed", result.Failed),
		)
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "init schedule")
	}
	return sched.Start(ctx)
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
