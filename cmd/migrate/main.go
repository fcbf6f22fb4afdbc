// migrate applies the embedded invoice schema migrations.
//
// Usage (from backend directory):
//
//	DB_DRIVER=mysql DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/migrate -cmd up
//
// Commands: up (default), down, status. -driver overrides DB_DRIVER.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/invoices_backend/config"
)

func main() {
	command := flag.String("cmd", string(config.MigrateUp), "Migration command: up, down or status.")
	driver := flag.String("driver", "", "Optional: mysql or postgres. Defaults to DB_DRIVER.")
	flag.Parse()
	cmd := config.MigrationCommand(*command)

	cfg := config.Load()
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	db, err := config.ConnectDatabaseWithRetry(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := config.RunMigrations(context.Background(), db, cfg.Database.Driver, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", cmd, err)
		os.Exit(1)
	}
	fmt.Printf("migrate %s: ok (driver=%s)\n", cmd, cfg.Database.Driver)
}
