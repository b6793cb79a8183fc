// Package main implements the entry point for the Questlog API server:
// a gamified task manager with an LLM-backed organizer agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jswain/questlog-api/internal/api/shared"
	"github.com/jswain/questlog-api/internal/config"
	"github.com/jswain/questlog-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run database migrations (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, wires the application together, and either
// executes a migration command or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Setup(cfg.Server)
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"env", cfg.Server.Env)

	// Non-production builds attach the redacted internal error to error
	// responses alongside the sanitized message.
	shared.SetIncludeErrorDetail(!cfg.Server.IsProduction())

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd)
	}

	ctx := context.Background()

	db, err := setupDatabase(cfg)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, slog.Default(), db)
	if err != nil {
		// The pool is only handed to cleanup once the application exists.
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
