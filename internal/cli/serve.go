package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/api"
	"github.com/terraincognita07/kpitracker/internal/config"
	"github.com/terraincognita07/kpitracker/internal/db"
	"github.com/terraincognita07/kpitracker/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(_ *options) *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the period archive scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServer(envFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file read before the environment")
	return cmd
}

func runServer(parent context.Context, cfg config.Server) error {
	logger, logCloser, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		Production: cfg.Production(),
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	handler, err := api.NewHandler(database, api.HandlerConfig{
		Location:        location,
		Logger:          logger,
		Env:             cfg.Env,
		WebhookKeyHash:  cfg.WebhookKeyHash,
		ArchiveInterval: cfg.ArchiveCheckInterval,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	var accessLog io.Writer
	if cfg.AccessLog {
		writer := logger.WithField("component", "http").WriterLevel(logrus.InfoLevel)
		defer writer.Close()
		accessLog = writer
	}
	app := api.NewApp(handler, api.AppConfig{AccessLog: accessLog, CORSOrigins: cfg.CORSOrigins})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler.Scheduler().Start(ctx)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.Address())
	}()
	logger.WithFields(logrus.Fields{
		"address":  cfg.Address(),
		"env":      cfg.Env,
		"timezone": location.String(),
		"db_path":  cfg.DBPath,
	}).Info("kpi tracker listening")

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
