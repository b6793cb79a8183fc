package api

import (
	"github.com/google/uuid"

	"github.com/jswain/questlog-api/internal/organizer"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Name     string `json:"name"     validate:"required,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is exchanged for new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Priority    string   `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string   `json:"due_date"    validate:"omitempty"`
	Points      *int     `json:"points"      validate:"omitempty,min=0,max=1000"`
	Tags        []string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
}

// UpdateTaskRequest defines the payload for task updates. All fields are
// optional; absent fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"       validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Priority    *string   `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	Status      *string   `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *string   `json:"due_date"    validate:"omitempty"`
	Points      *int      `json:"points"      validate:"omitempty,min=0,max=1000"`
	Tags        *[]string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
}

// CompleteTaskResponse reports the progression outcome of completing a task.
type CompleteTaskResponse struct {
	TaskID       uuid.UUID `json:"task_id"`
	XPGained     int       `json:"xp_gained"`
	LevelsGained int       `json:"levels_gained"`
	Level        int       `json:"level"`
	XP           int       `json:"xp"`
}

// BreakdownTaskRequest asks the organizer to split one task description
// into subtasks.
type BreakdownTaskRequest struct {
	TaskDescription string `json:"taskDescription" validate:"required,max=500"`
}

// ChatRequest carries one free-form message for the organizer.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ApplyOptimizationRequest carries the caller-approved recommendations
// to write back.
type ApplyOptimizationRequest struct {
	Recommendations []organizer.ApplyItem `json:"recommendations" validate:"required,min=1,max=50,dive"`
}

// OptimizeWorkloadResponse is the flat wire shape of an optimization run.
type OptimizeWorkloadResponse struct {
	Success bool `json:"success"`
	*organizer.OptimizationResult
}

// ApplyOptimizationResponse reports the outcome of applying a batch of
// recommendations.
type ApplyOptimizationResponse struct {
	Success bool     `json:"success"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message"`
}

// BreakdownResponse carries an unstructured task breakdown.
type BreakdownResponse struct {
	Success   bool               `json:"success"`
	Breakdown string             `json:"breakdown"`
	Metadata  organizer.Metadata `json:"metadata"`
}

// ChatResponse carries one organizer chat reply.
type ChatResponse struct {
	Success  bool               `json:"success"`
	Reply    string             `json:"reply"`
	Metadata organizer.Metadata `json:"metadata"`
}

// CompletionResponse carries an unstructured organizer reply for the
// suggestion-style endpoints.
type CompletionResponse struct {
	Success  bool               `json:"success"`
	Text     string             `json:"text"`
	Metadata organizer.Metadata `json:"metadata"`
}

// ContextResponse exposes the rendered context block for debugging.
type ContextResponse struct {
	Success bool            `json:"success"`
	Context string          `json:"context"`
	Stats   organizer.Stats `json:"stats"`
}

// OrganizerHealthResponse reports gateway configuration state.
type OrganizerHealthResponse struct {
	Success    bool     `json:"success"`
	Configured bool     `json:"configured"`
	Providers  []string `json:"providers"`
}
