package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/jswain/questlog-api/internal/api"
	apiMiddleware "github.com/jswain/questlog-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.taskStore, app.userStore)
	organizerHandler := api.NewOrganizerHandler(app.organizer)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Post("/tasks/{id}/complete", taskHandler.Complete)

			// Organizer endpoints
			r.Get("/organizer/workload-optimization", organizerHandler.OptimizeWorkload)
			r.Post("/organizer/apply-workload-optimization", organizerHandler.ApplyOptimization)
			r.Post("/organizer/breakdown-task", organizerHandler.BreakdownTask)
			r.Post("/organizer/chat", organizerHandler.Chat)
			r.Get("/organizer/suggestions", organizerHandler.Suggestions)
			r.Get("/organizer/daily-plan", organizerHandler.DailyPlan)
			r.Get("/organizer/productivity-analysis", organizerHandler.ProductivityAnalysis)
			r.Get("/organizer/motivation", organizerHandler.Motivation)
			r.Get("/organizer/context", organizerHandler.Context)
			r.Get("/organizer/test-provider", organizerHandler.TestProvider)
			r.Get("/organizer/health", organizerHandler.Health)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
