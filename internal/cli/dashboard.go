package cli

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func newDashboardCommand(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"today"},
		Short:   "Show today's numbers against the daily and pay period goals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, cfg, err := opts.apiClient()
			if err != nil {
				return err
			}
			day, err := opts.dateFlag(cfg, date)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			daily, err := api.DailyStats(ctx, day)
			if err != nil {
				return describeAPIError("load daily stats", err)
			}
			period, err := api.PeriodStats(ctx)
			if err != nil {
				return describeAPIError("load period stats", err)
			}

			out := cmd.OutOrStdout()
			printf(out, "%s\n", renderTitle("KPI TRACKER  "+day))
			if session, err := opts.openTimer(opts.logger(cmd)); err == nil {
				printf(out, "  %s\n", describeTimer(session.engine.Snapshot()))
				session.close()
			}
			printDailyStats(out, daily)
			printPeriodStats(out, period)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")
	return cmd
}

func printDailyStats(out io.Writer, stats services.DailyStats) {
	printf(out, "\n  Today\n")
	printf(out, "%s\n", renderMetric("calls", stats.Calls, formatCount))
	printf(out, "%s\n", renderMetric("bookings", stats.Reservations.MetricStat, formatCount))
	printf(out, "%s\n", renderMetric("profit", stats.Profit, formatUSD))
	printf(out, "%s\n", renderMetric("spins", stats.Spins, formatUSD))
	printf(out, "  %-14s %.1f%%\n", labelStyle.Render("conversion"), stats.ConversionRate.Rate)
	printf(out, "  %-14s %s  %s\n", labelStyle.Render("avg time"), formatMinutes(stats.AvgTime.Average), renderStatus(stats.AvgTime.Status))
	printf(out, "  %-14s %s + %s fee = %s\n",
		labelStyle.Render("earnings"),
		formatLocal(stats.Earnings.Base),
		formatLocal(stats.Earnings.Fee),
		formatLocal(stats.Earnings.Total),
	)
}

func printPeriodStats(out io.Writer, stats services.PeriodStats) {
	printf(out, "\n  Pay period %s  (%d days tracked, %d left)\n", stats.PeriodID, stats.DaysTracked, stats.DaysRemaining)
	printf(out, "%s\n", renderMetric("calls", stats.Calls, formatCount))
	printf(out, "%s\n", renderMetric("bookings", stats.Reservations.MetricStat, formatCount))
	printf(out, "%s\n", renderMetric("profit", stats.Profit, formatUSD))
	printf(out, "%s\n", renderMetric("spins", stats.Spins, formatUSD))
	printf(out, "%s\n", renderMetric("misc", stats.Misc, formatUSD))
	printf(out, "%s\n", renderMetric("combined", stats.Combined, formatUSD))
	printf(out, "  %-14s %.1f%% of %.0f%%  %s\n",
		labelStyle.Render("conversion"),
		stats.ConversionRate.Rate,
		stats.ConversionRate.Goal,
		renderStatus(stats.ConversionRate.Status),
	)
	printf(out, "  %-14s %s  %s\n", labelStyle.Render("avg time"), formatMinutes(stats.AvgTime.Average), renderStatus(stats.AvgTime.Status))

	cycle := stats.SpinCycle
	printf(out, "  %-14s %d prepaid, %d more for the next spin, %s earned",
		labelStyle.Render("spin cycle"),
		cycle.PrepaidCount,
		cycle.MoreNeeded,
		humanize.Comma(int64(cycle.SpinsEarned)),
	)
	if cycle.MegaEligible {
		printf(out, ", mega spin eligible")
	}
	printf(out, "\n")

	earnings := stats.Earnings
	printf(out, "  %-14s %s + %s fee = %s, net %s after %s period fee\n",
		labelStyle.Render("earnings"),
		formatLocal(earnings.Base),
		formatLocal(earnings.Fee),
		formatLocal(earnings.Total),
		formatLocal(earnings.Net),
		formatLocal(earnings.PeriodFee),
	)
}

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived pay periods, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			logs, err := api.ListPeriods(ctx, limit)
			if err != nil {
				return describeAPIError("list periods", err)
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				printf(out, "No archived periods yet.\n")
				return nil
			}
			printf(out, "%s\n", renderTitle("PERIOD HISTORY"))
			for _, log := range logs {
				printPeriodLog(out, log)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of periods to show (0 for all)")
	return cmd
}

func printPeriodLog(out io.Writer, log models.PeriodLog) {
	met := 0
	for _, ok := range []bool{log.GoalsMet.Calls, log.GoalsMet.Reservations, log.GoalsMet.Profit, log.GoalsMet.Spins, log.GoalsMet.Combined, log.GoalsMet.Misc} {
		if ok {
			met++
		}
	}
	printf(out, "  %s  %d days  %d calls  %d bookings  %s combined  %.1f%% conv  %d/6 goals  archived %s\n",
		log.PeriodID,
		log.EntryCount,
		log.Totals.Calls,
		log.Totals.Reservations,
		formatUSD(log.Totals.Combined),
		log.ConversionRate,
		met,
		humanize.Time(log.ArchivedAt),
	)
}
