package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jswain/questlog-api/internal/api/shared"
	"github.com/jswain/questlog-api/internal/domain"
	"github.com/jswain/questlog-api/internal/platform/logger"
	"github.com/jswain/questlog-api/internal/store"
)

// dueDateLayouts are the accepted wire formats for task due dates.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// TaskHandler handles task CRUD and completion requests.
type TaskHandler struct {
	taskStore store.TaskStore
	userStore store.UserStore
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore, userStore store.UserStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		userStore: userStore,
		validator: validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(userID, strings.TrimSpace(req.Title), req.Description)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	if req.Priority != "" {
		priority, ok := domain.ParsePriority(req.Priority)
		if !ok {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid priority")
			return
		}
		task.Priority = priority
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date format")
			return
		}
		task.DueDate = &due
	}
	if req.Points != nil {
		task.Points = *req.Points
	}
	if len(req.Tags) > 0 {
		task.Tags = req.Tags
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, task)
}

// List handles GET /tasks. An optional ?status= query (comma-separated)
// narrows the listing.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter := store.TaskFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.Status(strings.TrimSpace(part))
			if !status.Valid() {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	tasks, err := h.taskStore.List(r.Context(), userID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithData(w, r, http.StatusOK, tasks)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, task)
}

// Update handles PUT /tasks/{id}. Only the fields present in the request
// are changed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		priority, _ := domain.ParsePriority(*req.Priority)
		task.Priority = priority
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if status == domain.StatusCompleted && task.Status != domain.StatusCompleted {
			// Completion via update does not award experience; use the
			// complete endpoint for that.
			task.Complete(time.Now())
		} else {
			task.Status = status
		}
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date format")
				return
			}
			task.DueDate = &due
		}
	}
	if req.Points != nil {
		task.Points = *req.Points
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /tasks/{id}/complete: marks the task completed
// and awards its points to the owner. Completing an already-completed
// task changes nothing and awards nothing.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if task.Status == domain.StatusCompleted {
		user, err := h.userStore.GetByID(r.Context(), userID)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithData(w, r, http.StatusOK, CompleteTaskResponse{
			TaskID: task.ID,
			Level:  user.Level,
			XP:     user.XP,
		})
		return
	}

	task.Complete(time.Now())
	if err := h.taskStore.Update(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	levelsGained := user.AwardXP(task.Points)
	if err := h.userStore.Update(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("task completed",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("xp_gained", task.Points),
		slog.Int("levels_gained", levelsGained))

	shared.RespondWithData(w, r, http.StatusOK, CompleteTaskResponse{
		TaskID:       task.ID,
		XPGained:     task.Points,
		LevelsGained: levelsGained,
		Level:        user.Level,
		XP:           user.XP,
	})
}

// parseDueDate accepts RFC 3339 timestamps and bare dates.
func parseDueDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
