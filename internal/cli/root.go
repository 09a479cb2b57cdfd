// Package cli is the kpitracker command line: the API server and a client for
// recording the day from a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/client"
	"github.com/terraincognita07/kpitracker/internal/config"
	"github.com/terraincognita07/kpitracker/internal/logging"
	"github.com/terraincognita07/kpitracker/internal/services"
)

type options struct {
	configPath string
	apiURL     string
	statePath  string
	timezone   string
	verbose    bool

	now        services.Clock
	httpClient *http.Client
	stdin      *os.File
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{now: time.Now, stdin: os.Stdin})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "kpitracker",
		Short:         "Daily KPI tracker for commission sales agents",
		Long:          "Record calls, bookings, spins and misc income, and follow pay period goals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/kpitracker/config.toml)")
	flags.StringVar(&opts.apiURL, "api-url", "", "API base URL")
	flags.StringVar(&opts.statePath, "state", "", "Client state file holding the timer")
	flags.StringVar(&opts.timezone, "timezone", "", "IANA timezone used for today's date")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log client diagnostics to stderr")

	root.AddCommand(
		newServeCommand(opts),
		newTimerCommand(opts),
		newBookingCommand(opts),
		newCallsCommand(opts),
		newSpinCommand(opts),
		newMiscCommand(opts),
		newDashboardCommand(opts),
		newHistoryCommand(opts),
		newGoalsCommand(opts),
		newConversionCommand(opts),
		newConvertCommand(opts),
		newAdminCommand(opts),
		newWebhookKeyCommand(opts),
	)
	return root
}

// clientConfig is config.toml with flag overrides applied.
func (opts *options) clientConfig() (config.Client, error) {
	path := opts.configPath
	if path == "" {
		path = config.ClientPath()
	}
	cfg, err := config.LoadClient(path)
	if err != nil {
		return config.Client{}, err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.statePath != "" {
		cfg.StatePath = opts.statePath
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	return cfg, nil
}

func (opts *options) location(cfg config.Client) (*time.Location, error) {
	name := strings.TrimSpace(cfg.Timezone)
	if name == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return location, nil
}

func (opts *options) periods(cfg config.Client) (*services.PeriodManager, error) {
	location, err := opts.location(cfg)
	if err != nil {
		return nil, err
	}
	return services.NewPeriodManager(location, opts.now), nil
}

func (opts *options) apiClient() (*client.Client, config.Client, error) {
	cfg, err := opts.clientConfig()
	if err != nil {
		return nil, config.Client{}, err
	}
	api, err := client.New(cfg.APIURL, opts.httpClient)
	if err != nil {
		return nil, config.Client{}, err
	}
	return api, cfg, nil
}

// logger writes warnings, or everything with --verbose, to the command's stderr.
func (opts *options) logger(cmd *cobra.Command) logrus.FieldLogger {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, _, err := logging.New(logging.Config{Level: level, Format: "text"})
	if err != nil {
		logger = logrus.New()
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return logger
}

// dateFlag resolves --date, defaulting to today in the configured timezone.
func (opts *options) dateFlag(cfg config.Client, raw string) (string, error) {
	periods, err := opts.periods(cfg)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return periods.TodayKey(), nil
	}
	day, err := services.ParseDay(raw, periods.Location())
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return services.DayKey(day, periods.Location()), nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

// describeAPIError turns transport failures into something a terminal user can act on.
func describeAPIError(action string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s: %s", action, apiErr.Error())
	}
	if errors.Is(err, services.ErrValidation) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func printf(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, format, args...)
}
