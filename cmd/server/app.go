package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jswain/questlog-api/internal/config"
	"github.com/jswain/questlog-api/internal/llm"
	"github.com/jswain/questlog-api/internal/organizer"
	"github.com/jswain/questlog-api/internal/platform/gemini"
	"github.com/jswain/questlog-api/internal/platform/openai"
	"github.com/jswain/questlog-api/internal/platform/postgres"
	"github.com/jswain/questlog-api/internal/service/auth"
	"github.com/jswain/questlog-api/internal/store"
)

// application holds the shared application dependencies so setup and
// cleanup happen in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	gateway   *llm.Gateway
	organizer *organizer.Service
}

// newApplication wires all dependencies together. Providers are
// registered based on which API keys are configured; a server with no
// provider keys still starts, but the organizer endpoints report
// themselves unconfigured.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewUserStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)

	providers, err := setupProviders(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	app.gateway = llm.NewGateway(logger, providers...)
	if len(providers) == 0 {
		logger.Warn("no AI provider configured; organizer endpoints will be unavailable")
	}

	temperature := cfg.LLM.Temperature
	app.organizer = organizer.NewService(
		app.userStore,
		app.taskStore,
		app.gateway,
		logger,
		organizer.Config{
			Timeout: time.Duration(cfg.Organizer.TimeoutSeconds) * time.Second,
			Options: llm.Options{
				Temperature:     &temperature,
				MaxOutputTokens: int32(cfg.LLM.MaxOutputTokens),
			},
		},
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupProviders builds one provider per configured API key. Gemini is
// registered first and therefore acts as the default.
func setupProviders(
	ctx context.Context,
	cfg config.LLMConfig,
	logger *slog.Logger,
) ([]llm.Provider, error) {
	var providers []llm.Provider

	if cfg.GeminiAPIKey != "" {
		p, err := gemini.NewProvider(ctx, logger, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := openai.NewProvider(logger, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai provider: %w", err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
