package db

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/kpitracker/migrations"
	"gorm.io/gorm"
)

// addColumnPattern captures the table and column of an ALTER TABLE ... ADD COLUMN.
var addColumnPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)

type schemaMigration struct {
	Version string
	Name    string
	SQL     string
}

func applyEmbeddedMigrations(database *gorm.DB, logger logrus.FieldLogger) error {
	return applyMigrations(database, embeddedmigrations.Files, logger)
}

// applyMigrations runs every NNN_name.sql file not yet listed in
// schema_migrations, each in its own transaction.
func applyMigrations(database *gorm.DB, files fs.FS, logger logrus.FieldLogger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	migrations, err := loadMigrations(files)
	if err != nil {
		return err
	}

	var applied []string
	if err := database.Table("schema_migrations").Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}

	for _, migration := range migrations {
		if done[migration.Version] {
			continue
		}
		if err := database.Transaction(func(tx *gorm.DB) error {
			return runMigration(tx, migration)
		}); err != nil {
			return err
		}
		logger.WithField("migration", migration.Name).Info("schema migration applied")
	}
	return nil
}

// loadMigrations returns the embedded files ordered by their zero-padded
// version prefix.
func loadMigrations(files fs.FS) ([]schemaMigration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	migrations := make([]schemaMigration, 0, len(names))
	owners := make(map[string]string, len(names))
	for _, name := range names {
		version, _, ok := strings.Cut(name, "_")
		if !ok || version == "" || strings.Trim(version, "0123456789") != "" {
			return nil, fmt.Errorf("migration %s: name must look like NNN_description.sql", name)
		}
		if previous, taken := owners[version]; taken {
			return nil, fmt.Errorf("migrations %s and %s share version %s", previous, name, version)
		}
		owners[version] = name

		body, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, schemaMigration{Version: version, Name: name, SQL: string(body)})
	}
	return migrations, nil
}

// runMigration skips ADD COLUMN statements whose column already exists, so
// databases patched by hand before schema_migrations existed still upgrade.
func runMigration(tx *gorm.DB, migration schemaMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	for _, statement := range statements {
		if match := addColumnPattern.FindStringSubmatch(statement); match != nil {
			table, column := unquoteIdentifier(match[1]), unquoteIdentifier(match[2])
			if tx.Migrator().HasColumn(table, column) {
				continue
			}
		}
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("migration %s: %q: %w", migration.Name, statement, err)
		}
	}

	if err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, migration.Version, migration.Name).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", migration.Name, err)
	}
	return nil
}

func splitSQLStatements(script string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(script, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(identifier, "\"`[]")
}
