package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/db"
	"github.com/terraincognita07/kpitracker/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	entries        *services.EntryService
	archive        *services.ArchiveService
	scheduler      *services.ArchiveScheduler
	settings       *services.SettingsService
	periods        *services.PeriodManager
	logger         logrus.FieldLogger
	env            string
	webhookKeyHash []byte
	webhookLimiter *attemptLimiter
}

type HandlerConfig struct {
	Location        *time.Location
	Now             services.Clock
	Logger          logrus.FieldLogger
	Env             string
	WebhookKeyHash  string
	ArchiveInterval time.Duration
}

func NewHandler(database *gorm.DB, config HandlerConfig) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	env := config.Env
	if env == "" {
		env = "development"
	}

	repos := db.NewRepositories(database)
	periods := services.NewPeriodManager(config.Location, config.Now)
	settings := services.NewSettingsService(repos.Settings, logger)
	archive := services.NewArchiveService(repos.PeriodLogs, repos.Entries, settings, periods, logger)
	entries := services.NewEntryService(repos.Entries, periods, archive, logger)
	scheduler := services.NewArchiveScheduler(archive, periods, config.ArchiveInterval, logger)

	handler := &Handler{
		entries:   entries,
		archive:   archive,
		scheduler: scheduler,
		settings:  settings,
		periods:   periods,
		logger:    logger.WithField("component", "api"),
		env:       env,

		webhookLimiter: newAttemptLimiter(),
	}
	if config.WebhookKeyHash != "" {
		handler.webhookKeyHash = []byte(config.WebhookKeyHash)
	}
	return handler, nil
}

// Scheduler is started by the server process; tests drive it with RunOnce.
func (handler *Handler) Scheduler() *services.ArchiveScheduler {
	return handler.scheduler
}
