package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Server holds the process configuration of the API server.
type Server struct {
	Port                 int           `env:"PORT" envDefault:"8080"`
	DBPath               string        `env:"DB_PATH" envDefault:"data/kpitracker.db"`
	Timezone             string        `env:"TZ" envDefault:"America/Chicago"`
	Env                  string        `env:"ENV" envDefault:"development"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"`
	LogFile              string        `env:"LOG_FILE"`
	WebhookKeyHash       string        `env:"WEBHOOK_API_KEY_HASH"`
	ArchiveCheckInterval time.Duration `env:"ARCHIVE_CHECK_INTERVAL" envDefault:"1h"`
	CORSOrigins          string        `env:"CORS_ORIGINS" envDefault:"*"`
	AccessLog            bool          `env:"ACCESS_LOG" envDefault:"true"`
}

// LoadServer reads the environment, after applying the given .env files when
// they exist. Variables already set in the environment win over the files.
func LoadServer(envFiles ...string) (Server, error) {
	for _, path := range envFiles {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Server{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Server{}
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (cfg Server) validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if cfg.ArchiveCheckInterval <= 0 {
		return errors.New("ARCHIVE_CHECK_INTERVAL must be positive")
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

func (cfg Server) Location() (*time.Location, error) {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

func (cfg Server) Production() bool {
	return strings.EqualFold(strings.TrimSpace(cfg.Env), "production")
}

func (cfg Server) Address() string {
	return fmt.Sprintf(":%d", cfg.Port)
}
