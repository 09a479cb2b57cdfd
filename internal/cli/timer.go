package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/db"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

// timerSession is the client-local state file opened for one command.
type timerSession struct {
	engine  *services.TimerEngine
	periods *services.PeriodManager
	store   *db.SettingRepository
	close   func()
}

func (opts *options) openTimer(logger logrus.FieldLogger) (*timerSession, error) {
	cfg, err := opts.clientConfig()
	if err != nil {
		return nil, err
	}
	periods, err := opts.periods(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.OpenStateStore(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	store := db.NewSettingRepository(database)
	engine := services.NewTimerEngine(store, opts.now, logger)
	engine.Load()
	return &timerSession{
		engine:  engine,
		periods: periods,
		store:   store,
		close:   func() { _ = sqlDB.Close() },
	}, nil
}

func newTimerCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Stopwatch measuring the time since the last booking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTimerAction(cmd, opts, nil)
		},
	}

	actions := []struct {
		use    string
		short  string
		action func(*services.TimerEngine) error
	}{
		{use: "status", short: "Show the stopwatch", action: nil},
		{use: "start", short: "Start the stopwatch", action: (*services.TimerEngine).Start},
		{use: "pause", short: "Pause a running stopwatch", action: (*services.TimerEngine).Pause},
		{use: "resume", short: "Resume a paused stopwatch", action: (*services.TimerEngine).Resume},
		{use: "stop", short: "Stop and clear the stopwatch", action: (*services.TimerEngine).Stop},
		{use: "reset", short: "Restart the stopwatch from zero", action: (*services.TimerEngine).ResetAndStart},
	}
	for _, item := range actions {
		action := item.action
		cmd.AddCommand(&cobra.Command{
			Use:   item.use,
			Short: item.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runTimerAction(cmd, opts, action)
			},
		})
	}
	cmd.AddCommand(newTimerWatchCommand(opts))
	return cmd
}

func runTimerAction(cmd *cobra.Command, opts *options, action func(*services.TimerEngine) error) error {
	session, err := opts.openTimer(opts.logger(cmd))
	if err != nil {
		return err
	}
	defer session.close()

	if action != nil {
		if err := action(session.engine); err != nil {
			return describeTimerError(err)
		}
	}
	printf(cmd.OutOrStdout(), "%s\n", describeTimer(session.engine.Snapshot()))
	return nil
}

func newTimerWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the stopwatch ticking and report day changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchTimer(ctx, cmd, opts)
		},
	}
}

func watchTimer(ctx context.Context, cmd *cobra.Command, opts *options) error {
	logger := opts.logger(cmd)
	session, err := opts.openTimer(logger)
	if err != nil {
		return err
	}
	defer session.close()

	out := cmd.OutOrStdout()
	printf(out, "%s\n", describeTimer(session.engine.Snapshot()))

	detector := services.NewDayRolloverDetector(session.store, session.periods)
	rolloverDone := make(chan struct{})
	go func() {
		defer close(rolloverDone)
		detector.Watch(ctx, services.DefaultRolloverInterval, logger, func(today string) {
			printf(out, "\nNew day: %s\n", today)
			if session.periods.IsBoundaryDay() {
				printf(out, "New pay period: %s\n", session.periods.Current().ID)
			}
		})
	}()

	session.engine.Run(ctx, func(state models.TimerState) {
		if state.Running && !state.Paused {
			printf(out, "\r  %s", services.FormatElapsed(state.ElapsedSeconds))
		}
	})
	<-rolloverDone
	printf(out, "\n")
	return nil
}

func describeTimer(state models.TimerState) string {
	label := "stopped"
	switch {
	case state.Running && state.Paused:
		label = "paused"
	case state.Running:
		label = "running"
	}
	return fmt.Sprintf("Timer %s  %s", label, services.FormatElapsed(state.ElapsedSeconds))
}

func describeTimerError(err error) error {
	switch {
	case errors.Is(err, services.ErrTimerRunning),
		errors.Is(err, services.ErrTimerNotRunning),
		errors.Is(err, services.ErrTimerNotPaused):
		return err
	default:
		return fmt.Errorf("failed to save timer: %w", err)
	}
}
