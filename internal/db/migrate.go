package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationStatus is the schema version recorded in the database.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// OpenMigrator prepares schema migrations for the SQLite file at dbPath.
// An empty migrationsDir uses the migrations embedded in the binary.
func OpenMigrator(dbPath, migrationsDir string) (*migrate.Migrate, error) {
	absDB, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	databaseURL := fmt.Sprintf("sqlite3://%s", absDB)

	if migrationsDir == "" {
		source, err := iofs.New(migrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("could not create source: %w", err)
		}
		return migrate.NewWithSourceInstance("iofs", source, databaseURL)
	}

	absMigrations, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	if _, err := os.Stat(absMigrations); os.IsNotExist(err) {
		return nil, fmt.Errorf("migrations directory does not exist: %s", absMigrations)
	}
	return migrate.New(fmt.Sprintf("file://%s", absMigrations), databaseURL)
}

// RunMigrationCommand executes up, down or version and reports the resulting
// schema version.
func RunMigrationCommand(m *migrate.Migrate, command string) (MigrationStatus, error) {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return MigrationStatus{}, fmt.Errorf("failed to run migrations: %w", err)
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return MigrationStatus{}, fmt.Errorf("failed to rollback migrations: %w", err)
		}
	case "version":
	default:
		return MigrationStatus{}, fmt.Errorf("unknown command: %s", command)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationStatus{}, nil
		}
		return MigrationStatus{}, fmt.Errorf("failed to get version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}
