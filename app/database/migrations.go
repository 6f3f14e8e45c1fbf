package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// schemaVersion pins the migration version this build understands. An
// existing database at any other version must be migrated by a separate
// step before the application will touch it.
const schemaVersion uint = 1

// CheckSchema verifies the database schema. A brand-new database is migrated
// up to schemaVersion; an existing database with a mismatched or dirty
// version is a fatal error, never silently patched.
func CheckSchema(db *DB) error {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("failed to initialize database schema: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database schema is dirty at version %d, refusing to proceed", version)
	}
	if version != schemaVersion {
		return fmt.Errorf("database schema version is %d, expected %d: run the migration tool before scraping", version, schemaVersion)
	}

	return nil
}
