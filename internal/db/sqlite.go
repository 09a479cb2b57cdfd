package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens the record store and brings its schema up to date.
func OpenSQLite(dbPath string, logger logrus.FieldLogger) (*gorm.DB, error) {
	database, err := openSQLiteFile(dbPath)
	if err != nil {
		return nil, err
	}

	if err := applyEmbeddedMigrations(database, logger); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

// OpenStateStore opens the client-local key-value file. It only carries the
// settings table, so it is created with AutoMigrate instead of the server migrations.
func OpenStateStore(path string) (*gorm.DB, error) {
	database, err := openSQLiteFile(path)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(&models.Setting{}); err != nil {
		return nil, fmt.Errorf("migrate state store: %w", err)
	}
	return database, nil
}

func openSQLiteFile(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			logrus.StandardLogger(),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return database, nil
}
