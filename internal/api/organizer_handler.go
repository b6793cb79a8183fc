package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jswain/questlog-api/internal/api/shared"
	"github.com/jswain/questlog-api/internal/organizer"
)

// OrganizerHandler exposes the organizer agent over HTTP.
type OrganizerHandler struct {
	service   *organizer.Service
	validator *validator.Validate
}

// NewOrganizerHandler creates a new OrganizerHandler.
func NewOrganizerHandler(service *organizer.Service) *OrganizerHandler {
	return &OrganizerHandler{
		service:   service,
		validator: validator.New(),
	}
}

// OptimizeWorkload handles GET /organizer/workload-optimization.
// Optional ?days= and ?maxTasks= queries tune the run; out-of-range
// values fall back to the service defaults.
func (h *OrganizerHandler) OptimizeWorkload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	days := queryInt(r, "days", organizer.DefaultDays)
	maxTasks := queryInt(r, "maxTasks", organizer.DefaultMaxTasks)

	result, err := h.service.OptimizeWorkload(r.Context(), userID, days, maxTasks)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OptimizeWorkloadResponse{
		Success:            true,
		OptimizationResult: result,
	})
}

// ApplyOptimization handles POST /organizer/apply-workload-optimization.
// Items are applied independently; the response reports per-item errors
// alongside the number of tasks updated.
func (h *OrganizerHandler) ApplyOptimization(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ApplyOptimizationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.service.ApplyRecommendations(r.Context(), userID, req.Recommendations)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	message := "Applied " + strconv.Itoa(result.Updated) + " of " +
		strconv.Itoa(len(req.Recommendations)) + " recommendations"

	shared.RespondWithJSON(w, r, http.StatusOK, ApplyOptimizationResponse{
		Success: true,
		Updated: result.Updated,
		Errors:  result.Errors,
		Message: message,
	})
}

// BreakdownTask handles POST /organizer/breakdown-task.
func (h *OrganizerHandler) BreakdownTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req BreakdownTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	completion, err := h.service.BreakdownTask(r.Context(), req.TaskDescription)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BreakdownResponse{
		Success:   true,
		Breakdown: completion.Text,
		Metadata:  completion.Metadata,
	})
}

// Chat handles POST /organizer/chat. Each message is answered statelessly
// against the user's current context.
func (h *OrganizerHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	completion, err := h.service.Chat(r.Context(), userID, req.Message)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ChatResponse{
		Success:  true,
		Reply:    completion.Text,
		Metadata: completion.Metadata,
	})
}

// Suggestions handles GET /organizer/suggestions.
func (h *OrganizerHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	h.completeForUser(w, r, h.service.Suggestions)
}

// DailyPlan handles GET /organizer/daily-plan.
func (h *OrganizerHandler) DailyPlan(w http.ResponseWriter, r *http.Request) {
	h.completeForUser(w, r, h.service.DailyPlan)
}

// ProductivityAnalysis handles GET /organizer/productivity-analysis.
func (h *OrganizerHandler) ProductivityAnalysis(w http.ResponseWriter, r *http.Request) {
	h.completeForUser(w, r, h.service.ProductivityAnalysis)
}

// Motivation handles GET /organizer/motivation.
func (h *OrganizerHandler) Motivation(w http.ResponseWriter, r *http.Request) {
	h.completeForUser(w, r, h.service.Motivation)
}

// Context handles GET /organizer/context: the rendered context block the
// organizer grounds its prompts in, useful for debugging.
func (h *OrganizerHandler) Context(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	built, err := h.service.BuildContext(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ContextResponse{
		Success: true,
		Context: built.Render(),
		Stats:   built.Stats,
	})
}

// TestProvider handles GET /organizer/test-provider. An optional
// ?provider= query names the provider to exercise.
func (h *OrganizerHandler) TestProvider(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	completion, err := h.service.TestProvider(r.Context(), r.URL.Query().Get("provider"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CompletionResponse{
		Success:  true,
		Text:     completion.Text,
		Metadata: completion.Metadata,
	})
}

// Health handles GET /organizer/health: reports which providers are
// configured without calling any of them.
func (h *OrganizerHandler) Health(w http.ResponseWriter, r *http.Request) {
	configured, providers := h.service.Health()
	if providers == nil {
		providers = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, OrganizerHealthResponse{
		Success:    true,
		Configured: configured,
		Providers:  providers,
	})
}

// completeForUser runs one of the context-grounded completion operations
// for the authenticated user.
func (h *OrganizerHandler) completeForUser(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, userID uuid.UUID) (*organizer.Completion, error),
) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	completion, err := run(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CompletionResponse{
		Success:  true,
		Text:     completion.Text,
		Metadata: completion.Metadata,
	})
}

// queryInt parses an integer query parameter, returning fallback for
// absent or malformed values.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
