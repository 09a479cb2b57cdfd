package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/client"
)

func newAdminCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Pay period maintenance",
	}

	var previous bool
	archive := &cobra.Command{
		Use:   "archive",
		Short: "Close the current pay period, or the previous one with --previous",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			archiveFn := api.ArchiveCurrentPeriod
			if previous {
				archiveFn = api.ArchivePreviousPeriod
			}
			log, err := archiveFn(ctx)
			if err != nil {
				if errors.Is(err, client.ErrConflict) {
					return errors.New("period already archived")
				}
				return describeAPIError("archive period", err)
			}
			printf(cmd.OutOrStdout(), "Archived %s (%d entries)\n", log.PeriodID, log.EntryCount)
			return nil
		},
	}
	archive.Flags().BoolVar(&previous, "previous", false, "Archive the previous pay period")

	current := &cobra.Command{
		Use:   "period",
		Short: "Show the current pay period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			period, err := api.CurrentPeriod(ctx)
			if err != nil {
				return describeAPIError("load period", err)
			}
			out := cmd.OutOrStdout()
			printf(out, "Current period %s (%d days left)\n", period.PeriodID, period.DaysRemaining)
			state := "open"
			if period.PreviousPeriod.IsArchived {
				state = "archived"
			}
			printf(out, "Previous period %s is %s\n", period.PreviousPeriod.PeriodID, state)
			return nil
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate-legacy",
		Short: "Assign entries without a period and archive finished periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			result, err := api.MigrateLegacy(ctx)
			if err != nil {
				return describeAPIError("migrate legacy entries", err)
			}
			printf(cmd.OutOrStdout(), "%s\n", result.Message)
			return nil
		},
	}

	force := &cobra.Command{
		Use:   "force-archive",
		Short: "Archive the previous pay period, reporting an existing log instead of failing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			result, err := api.ForceArchive(ctx)
			if err != nil {
				return describeAPIError("archive period", err)
			}
			printf(cmd.OutOrStdout(), "%s\n", result.Message)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "scheduler",
		Short: "Show the archive scheduler status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			status, err := api.SchedulerStatus(ctx)
			if err != nil {
				return describeAPIError("load scheduler status", err)
			}
			out := cmd.OutOrStdout()
			state := "stopped"
			if status.Running {
				state = "running"
			}
			printf(out, "Scheduler %s, every %s\n", state, status.Interval)
			if status.LastRun != nil {
				printf(out, "  last run %s\n", humanize.Time(*status.LastRun))
			}
			if status.NextRun != nil {
				printf(out, "  next run %s\n", humanize.Time(*status.NextRun))
			}
			if status.LastArchivedPeriod != "" {
				printf(out, "  last archived %s\n", status.LastArchivedPeriod)
			}
			if status.LastError != "" {
				printf(out, "  last error %s\n", status.LastError)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete-period <period-id>",
		Short: "Delete an archived period log so the period can be archived again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			if err := api.DeletePeriodLog(ctx, args[0]); err != nil {
				if errors.Is(err, client.ErrNotFound) {
					return fmt.Errorf("period %s has no log", args[0])
				}
				return describeAPIError("delete period log", err)
			}
			printf(cmd.OutOrStdout(), "Period %s deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(archive, current, migrate, force, status, remove)
	return cmd
}
