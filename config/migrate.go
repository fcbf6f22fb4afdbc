package config

import (
	"context"
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const migrationsRoot = "migrations"

// MigrationCommand is one of the goose commands exposed by cmd/migrate.
type MigrationCommand string

const (
	MigrateUp     MigrationCommand = "up"
	MigrateDown   MigrationCommand = "down"
	MigrateStatus MigrationCommand = "status"
)

func migrationsDir(driver string) (string, error) {
	switch driver {
	case DriverMySQL, DriverPostgres:
		return path.Join(migrationsRoot, driver), nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// RunMigrations applies a goose command against the embedded migrations for driver.
func RunMigrations(ctx context.Context, db *gorm.DB, driver string, cmd MigrationCommand) error {
	dir, err := migrationsDir(driver)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(driver); err != nil {
		return err
	}

	switch cmd {
	case MigrateUp:
		return goose.UpContext(ctx, sqlDB, dir)
	case MigrateDown:
		return goose.DownContext(ctx, sqlDB, dir)
	case MigrateStatus:
		return goose.StatusContext(ctx, sqlDB, dir)
	default:
		return fmt.Errorf("unknown migration command %q", cmd)
	}
}
