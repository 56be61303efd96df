// cmd/tools/migrate/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"marketpulse/internal/common/config"
	"marketpulse/internal/common/database"
)

func main() {
	upCmd := flag.NewFlagSet("up", flag.ExitOnError)
	downCmd := flag.NewFlagSet("down", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	timeout := 2 * time.Minute
	for _, fs := range []*flag.FlagSet{upCmd, downCmd, statusCmd, versionCmd} {
		fs.DurationVar(&timeout, "timeout", timeout, "Overall timeout for the command")
	}

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var (
		fs  *flag.FlagSet
		run func(ctx context.Context, db *database.PostgresClient) error
	)

	switch os.Args[1] {
	case "up":
		fs = upCmd
		run = func(ctx context.Context, db *database.PostgresClient) error {
			return database.RunMigrations(ctx, db.GetDB())
		}
	case "down":
		fs = downCmd
		run = func(ctx context.Context, db *database.PostgresClient) error {
			return database.RollbackMigration(ctx, db.GetDB())
		}
	case "status":
		fs = statusCmd
		run = func(ctx context.Context, db *database.PostgresClient) error {
			return database.MigrationStatus(ctx, db.GetDB())
		}
	case "version":
		fs = versionCmd
		run = func(ctx context.Context, db *database.PostgresClient) error {
			v, err := database.MigrationVersion(ctx, db.GetDB())
			if err != nil {
				return err
			}
			fmt.Printf("Current schema version: %d\n", v)
			return nil
		}
	default:
		help()
		os.Exit(1)
	}
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Database.Postgres.Configured() {
		fmt.Println("Error: DATABASE_URL and DATABASE_SERVICE_ROLE_KEY must be set.")
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	err = run(ctx, pg)
	cancel()
	pg.Close()

	if err != nil {
		fmt.Printf("Error running %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println("Usage: migrate <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  up       Apply all pending migrations")
	fmt.Println("  down     Roll back the most recent migration")
	fmt.Println("  status   Print the status of every migration")
	fmt.Println("  version  Print the current schema version")
}
