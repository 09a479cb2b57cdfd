package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/db"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

var goalKeys = map[string]bool{
	"calls_daily": true, "calls_biweekly": true,
	"reservations_daily": true, "reservations_biweekly": true,
	"profit_daily": true, "profit_biweekly": true,
	"spins_daily": true, "spins_biweekly": true,
	"combined_biweekly": true, "misc_biweekly": true,
	"avg_time_per_booking": true, "avg_spin": true, "avg_mega_spin": true,
}

var conversionKeys = map[string]bool{
	"exchange_rate": true, "processing_fee_percent": true, "period_fee": true,
}

func newGoalsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show or change KPI goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			goals, err := api.Goals(ctx)
			if err != nil {
				return describeAPIError("load goals", err)
			}
			printGoals(cmd.OutOrStdout(), goals)
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set key=value...",
		Short:   "Change goals; keys not given keep their value",
		Example: "  kpitracker goals set calls_biweekly=120 profit_biweekly=2500",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(args, goalKeys)
			if err != nil {
				return err
			}
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			goals, err := api.UpdateGoals(ctx, changes)
			if err != nil {
				return describeAPIError("save goals", err)
			}
			printGoals(cmd.OutOrStdout(), goals)
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default goals and conversion settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			defaults, err := api.ResetSettings(ctx)
			if err != nil {
				return describeAPIError("reset settings", err)
			}
			printGoals(cmd.OutOrStdout(), defaults.Goals)
			printConversion(cmd.OutOrStdout(), defaults.Conversion)
			return nil
		},
	}

	cmd.AddCommand(set, reset)
	return cmd
}

func newConversionCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversion",
		Short: "Show or change the USD conversion settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			conversion, err := api.ConversionSettings(ctx)
			if err != nil {
				return describeAPIError("load conversion settings", err)
			}
			printConversion(cmd.OutOrStdout(), conversion)
			return nil
		},
	}

	var local bool
	set := &cobra.Command{
		Use:     "set key=value...",
		Short:   "Change conversion settings",
		Example: "  kpitracker conversion set exchange_rate=16.2 processing_fee_percent=17",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(args, conversionKeys)
			if err != nil {
				return err
			}
			if local {
				return saveLocalConversion(cmd, opts, changes)
			}

			api, _, err := opts.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()

			conversion, err := api.UpdateConversionSettings(ctx, changes)
			if err != nil {
				return describeAPIError("save conversion settings", err)
			}
			printConversion(cmd.OutOrStdout(), conversion)
			return nil
		},
	}
	set.Flags().BoolVar(&local, "local", false, "Change the copy in the client state file used by convert --offline")

	cmd.AddCommand(set)
	return cmd
}

func newConvertCommand(opts *options) *cobra.Command {
	var (
		periodScope bool
		offline     bool
	)
	cmd := &cobra.Command{
		Use:   "convert <usd>",
		Short: "Convert a USD amount to local currency including fees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usd, ok := services.ParseAmount(args[0])
			if !ok {
				return errors.New("usd must be a number")
			}

			var result services.PeriodConversion
			if offline {
				settings, closeStore, err := opts.localSettings(cmd)
				if err != nil {
					return err
				}
				defer closeStore()
				conversion, err := settings.Conversion()
				if err != nil {
					return err
				}
				result = services.ConvertPeriodUSD(usd, conversion)
			} else {
				api, _, err := opts.apiClient()
				if err != nil {
					return err
				}
				ctx, cancel := requestContext(cmd)
				defer cancel()
				result, err = api.ConvertPeriod(ctx, usd)
				if err != nil {
					return describeAPIError("convert", err)
				}
			}

			out := cmd.OutOrStdout()
			printf(out, "%s = %s + %s fee = %s\n",
				formatUSD(result.USD),
				formatLocal(result.Base),
				formatLocal(result.Fee),
				formatLocal(result.Total),
			)
			if periodScope {
				printf(out, "net %s after %s period fee\n", formatLocal(result.Net), formatLocal(result.PeriodFee))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&periodScope, "period", false, "Also subtract the flat pay period fee")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the conversion settings in the client state file")
	return cmd
}

// localSettings opens the settings kept in the client state file.
func (opts *options) localSettings(cmd *cobra.Command) (*services.SettingsService, func(), error) {
	cfg, err := opts.clientConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.OpenStateStore(cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open state file: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open state file: %w", err)
	}
	settings := services.NewSettingsService(db.NewSettingRepository(database), opts.logger(cmd))
	return settings, func() { _ = sqlDB.Close() }, nil
}

func saveLocalConversion(cmd *cobra.Command, opts *options, changes map[string]float64) error {
	settings, closeStore, err := opts.localSettings(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	conversion, err := settings.Conversion()
	if err != nil {
		return err
	}
	for key, value := range changes {
		switch key {
		case "exchange_rate":
			conversion.ExchangeRate = value
		case "processing_fee_percent":
			conversion.ProcessingFeePercent = value
		case "period_fee":
			conversion.PeriodFee = value
		}
	}
	if err := settings.SaveConversion(conversion); err != nil {
		return err
	}
	printConversion(cmd.OutOrStdout(), conversion)
	return nil
}

func parseAssignments(args []string, allowed map[string]bool) (map[string]float64, error) {
	changes := make(map[string]float64, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		if !allowed[key] {
			return nil, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(sortedKeys(allowed), ", "))
		}
		value, ok := services.ParseAmount(raw)
		if !ok {
			return nil, fmt.Errorf("%s must be a number", key)
		}
		changes[key] = value
	}
	return changes, nil
}

func sortedKeys(values map[string]bool) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func printGoals(out io.Writer, goals models.GoalsConfig) {
	rows := []struct {
		label string
		daily float64
		bi    float64
	}{
		{"calls", goals.CallsDaily, goals.CallsBiweekly},
		{"bookings", goals.ReservationsDaily, goals.ReservationsBiweekly},
		{"profit", goals.ProfitDaily, goals.ProfitBiweekly},
		{"spins", goals.SpinsDaily, goals.SpinsBiweekly},
	}
	printf(out, "  %-22s %10s %10s\n", "goal", "daily", "period")
	for _, row := range rows {
		printf(out, "  %-22s %10s %10s\n", row.label, formatLocal(row.daily), formatLocal(row.bi))
	}
	printf(out, "  %-22s %10s %10s\n", "combined", "", formatLocal(goals.CombinedBiweekly))
	printf(out, "  %-22s %10s %10s\n", "misc", "", formatLocal(goals.MiscBiweekly))
	printf(out, "  %-22s %s\n", "avg time per booking", formatMinutes(goals.AvgTimePerBooking))
	printf(out, "  %-22s %s / %s\n", "avg spin / mega", formatUSD(goals.AvgSpin), formatUSD(goals.AvgMegaSpin))
}

func printConversion(out io.Writer, conversion models.ConversionConfig) {
	printf(out, "  exchange rate %s  processing fee %s%%  period fee %s\n",
		formatLocal(conversion.ExchangeRate),
		formatLocal(conversion.ProcessingFeePercent),
		formatLocal(conversion.PeriodFee),
	)
}
