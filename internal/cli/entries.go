package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

var errBookingNotFound = errors.New("booking not found")

type bookingFlags struct {
	date             string
	profit           float64
	prepaid          bool
	refundProtection bool
	minutes          int
	noTimer          bool
}

func (flags *bookingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.date, "date", "", "Day to record (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&flags.profit, "profit", 0, "Booking profit in USD")
	cmd.Flags().BoolVar(&flags.prepaid, "prepaid", false, "Booking was prepaid")
	cmd.Flags().BoolVar(&flags.refundProtection, "refund-protection", false, "Refund protection was sold")
	cmd.Flags().IntVar(&flags.minutes, "minutes", 0, "Minutes since the previous booking (default from the timer)")
}

func newBookingCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "booking",
		Aliases: []string{"bookings"},
		Short:   "Record, edit and delete bookings",
	}
	cmd.AddCommand(
		newBookingAddCommand(opts),
		newBookingEditCommand(opts),
		newChildDeleteCommand(opts, "booking", func(ctx childDeleteContext) (models.DailyEntry, error) {
			return ctx.api.DeleteBooking(ctx.ctx, ctx.date, ctx.id)
		}),
	)
	return cmd
}

func newBookingAddCommand(opts *options) *cobra.Command {
	flags := &bookingFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a booking and restart the timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := services.BookingInput{
				IsPrepaid:           flags.prepaid,
				HasRefundProtection: flags.refundProtection,
			}
			if cmd.Flags().Changed("profit") {
				input.Profit = &flags.profit
			}
			if cmd.Flags().Changed("minutes") {
				input.TimeSinceLast = &flags.minutes
			}
			if err := services.ValidateInput(input); err != nil {
				return err
			}

			var timer *timerSession
			if !flags.noTimer {
				session, err := opts.openTimer(opts.logger(cmd))
				if err != nil {
					return err
				}
				defer session.close()
				timer = session
				if input.TimeSinceLast == nil {
					minutes := session.engine.DefaultTimeSinceLast()
					input.TimeSinceLast = &minutes
				}
			}

			api, cfg, err := opts.apiClient()
			if err != nil {
				return err
			}
			date, err := opts.dateFlag(cfg, flags.date)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			entry, err := api.AddBooking(ctx, date, input)
			if err != nil {
				return describeAPIError("add booking", err)
			}
			if timer != nil {
				if err := timer.engine.ResetAndStart(); err != nil {
					return describeTimerError(err)
				}
			}
			printEntrySummary(cmd.OutOrStdout(), "Booking added", entry)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.noTimer, "no-timer", false, "Do not read or restart the timer")
	return cmd
}

func newBookingEditCommand(opts *options) *cobra.Command {
	flags := &bookingFlags{}
	cmd := &cobra.Command{
		Use:   "edit <booking-id>",
		Short: "Change a booking; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cfg, err := opts.apiClient()
			if err != nil {
				return err
			}
			date, err := opts.dateFlag(cfg, flags.date)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			entry, err := api.Entry(ctx, date)
			if err != nil {
				return describeAPIError("load entry", err)
			}
			current, ok := findBooking(entry, args[0])
			if !ok {
				return fmt.Errorf("%w: %s on %s", errBookingNotFound, args[0], date)
			}

			input := services.BookingInput{
				Profit:              &current.Profit,
				IsPrepaid:           current.IsPrepaid,
				HasRefundProtection: current.HasRefundProtection,
				TimeSinceLast:       &current.TimeSinceLast,
			}
			changed := cmd.Flags().Changed
			if changed("profit") {
				input.Profit = &flags.profit
			}
			if changed("prepaid") {
				input.IsPrepaid = flags.prepaid
			}
			if changed("refund-protection") {
				input.HasRefundProtection = flags.refundProtection
			}
			if changed("minutes") {
				input.TimeSinceLast = &flags.minutes
			}

			updated, err := api.UpdateBooking(ctx, date, current.ID, input)
			if err != nil {
				return describeAPIError("update booking", err)
			}
			printEntrySummary(cmd.OutOrStdout(), "Booking updated", updated)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCallsCommand(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "calls <count>",
		Short: "Set the number of calls received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calls, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New("calls_received must be an integer")
			}
			if err := services.ValidateInput(services.CallsInput{CallsReceived: &calls}); err != nil {
				return err
			}

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

			entry, err := api.SetCalls(ctx, day, calls)
			if err != nil {
				return describeAPIError("update calls", err)
			}
			printEntrySummary(cmd.OutOrStdout(), "Calls updated", entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to record (YYYY-MM-DD, default today)")
	return cmd
}

func newSpinCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spin",
		Aliases: []string{"spins"},
		Short:   "Record and delete spin rewards",
	}

	var (
		date          string
		amount        float64
		mega          bool
		bookingNumber int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a spin reward",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := services.SpinInput{IsMega: mega, BookingNumber: bookingNumber}
			if cmd.Flags().Changed("amount") {
				input.Amount = &amount
			}
			if err := services.ValidateInput(input); err != nil {
				return err
			}

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

			entry, err := api.AddSpin(ctx, day, input)
			if err != nil {
				return describeAPIError("add spin", err)
			}
			printEntrySummary(cmd.OutOrStdout(), "Spin added", entry)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "Day to record (YYYY-MM-DD, default today)")
	add.Flags().Float64Var(&amount, "amount", 0, "Spin reward in USD")
	add.Flags().BoolVar(&mega, "mega", false, "Reward came from a mega spin")
	add.Flags().IntVar(&bookingNumber, "booking-number", 0, "Prepaid booking count that earned the spin")

	cmd.AddCommand(add, newChildDeleteCommand(opts, "spin", func(ctx childDeleteContext) (models.DailyEntry, error) {
		return ctx.api.DeleteSpin(ctx.ctx, ctx.date, ctx.id)
	}))
	return cmd
}

func newMiscCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "misc",
		Short: "Record and delete miscellaneous income",
	}

	var (
		date        string
		amount      float64
		source      string
		description string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record miscellaneous income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := services.MiscIncomeInput{Source: source, Description: description}
			if cmd.Flags().Changed("amount") {
				input.Amount = &amount
			}
			if err := services.ValidateInput(input); err != nil {
				return err
			}

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

			entry, err := api.AddMiscIncome(ctx, day, input)
			if err != nil {
				return describeAPIError("add misc income", err)
			}
			printEntrySummary(cmd.OutOrStdout(), "Misc income added", entry)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "Day to record (YYYY-MM-DD, default today)")
	add.Flags().Float64Var(&amount, "amount", 0, "Amount in USD")
	add.Flags().StringVar(&source, "source", models.MiscSourceRequestLead, "request_lead, refund_protection or other")
	add.Flags().StringVar(&description, "description", "", "Optional note")

	cmd.AddCommand(add, newChildDeleteCommand(opts, "misc income", func(ctx childDeleteContext) (models.DailyEntry, error) {
		return ctx.api.DeleteMiscIncome(ctx.ctx, ctx.date, ctx.id)
	}))
	return cmd
}

func findBooking(entry models.DailyEntry, id string) (models.Booking, bool) {
	for _, booking := range entry.Bookings {
		if booking.ID == id {
			return booking, true
		}
	}
	return models.Booking{}, false
}

func printEntrySummary(out io.Writer, headline string, entry models.DailyEntry) {
	totals := services.SumEntries([]models.DailyEntry{entry})
	printf(out, "%s for %s\n", headline, entry.Date)
	printf(out, "  calls %d  bookings %d  profit %s  spins %s  misc %s\n",
		totals.Calls,
		totals.Reservations,
		formatUSD(totals.Profit),
		formatUSD(totals.Spins),
		formatUSD(totals.Misc),
	)
}
