package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jswain/questlog-api/internal/domain"
)

// TaskFilter narrows a task listing. Zero values mean "no constraint".
type TaskFilter struct {
	// Statuses restricts the listing to tasks in any of the given statuses.
	Statuses []domain.Status
}

// ScheduleUpdate is a partial update of a task's scheduling fields.
// Nil fields are left untouched.
type ScheduleUpdate struct {
	DueDate  *time.Time
	Priority *domain.Priority
}

// TaskStore defines the interface for task persistence. Every read and
// write is scoped to an owning user; a task belonging to another user is
// indistinguishable from a missing one.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity (wrapping the domain error) if validation fails.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the owning user.
	// Returns ErrTaskNotFound if no such task exists for that user.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// List returns the user's tasks matching the filter, most recently
	// updated first.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update replaces the mutable fields of an existing task.
	// Returns ErrTaskNotFound if no such task exists for the task's user.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateSchedule applies a partial due-date/priority update to a task,
	// scoped to the owning user.
	// Returns ErrTaskNotFound if no such task exists for that user.
	UpdateSchedule(ctx context.Context, userID, taskID uuid.UUID, update ScheduleUpdate) error

	// Delete removes a task, scoped to the owning user.
	// Returns ErrTaskNotFound if no such task exists for that user.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}
