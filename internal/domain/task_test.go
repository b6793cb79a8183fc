package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	task, err := NewTask(userID, "Write report", "Quarterly numbers")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil task ID")
	}
	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("Expected default priority %s, got %s", PriorityMedium, task.Priority)
	}
	if task.Status != StatusPending {
		t.Errorf("Expected default status %s, got %s", StatusPending, task.Status)
	}
	if task.Points != 10 {
		t.Errorf("Expected default points 10, got %d", task.Points)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Empty title
	_, err = NewTask(userID, "", "")
	if err != ErrEmptyTaskTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}

	// Missing owner
	_, err = NewTask(uuid.Nil, "Write report", "")
	if err != ErrEmptyTaskUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskUserID, err)
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Title:    "Do the thing",
		Priority: PriorityHigh,
		Status:   StatusInProgress,
		Points:   25,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(task *Task)
		want   error
	}{
		{"empty ID", func(task *Task) { task.ID = uuid.Nil }, ErrEmptyTaskID},
		{"empty user ID", func(task *Task) { task.UserID = uuid.Nil }, ErrEmptyTaskUserID},
		{"blank title", func(task *Task) { task.Title = "   " }, ErrEmptyTaskTitle},
		{"title too long", func(task *Task) { task.Title = strings.Repeat("x", 201) }, ErrTaskTitleTooLong},
		{"bad priority", func(task *Task) { task.Priority = "sometime" }, ErrInvalidPriority},
		{"bad status", func(task *Task) { task.Status = "done" }, ErrInvalidStatus},
		{"negative points", func(task *Task) { task.Points = -1 }, ErrNegativePoints},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := valid
			tc.mutate(&task)
			if err := task.Validate(); err != tc.want {
				t.Errorf("Expected error %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input string
		want  Priority
		ok    bool
	}{
		{"low", PriorityLow, true},
		{"URGENT", PriorityUrgent, true},
		{"  High ", PriorityHigh, true},
		{"medium", PriorityMedium, true},
		{"", "", false},
		{"critical", "", false},
	}

	for _, tc := range tests {
		got, ok := ParsePriority(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParsePriority(%q) = (%q, %v), want (%q, %v)",
				tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityUrgent.Rank() <= PriorityHigh.Rank() {
		t.Error("urgent must outrank high")
	}
	if PriorityHigh.Rank() <= PriorityMedium.Rank() {
		t.Error("high must outrank medium")
	}
	if PriorityMedium.Rank() <= PriorityLow.Rank() {
		t.Error("medium must outrank low")
	}
	if Priority("bogus").Rank() >= PriorityLow.Rank() {
		t.Error("unknown priority must rank below low")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	task := Task{Status: StatusPending}

	if task.IsOverdue(now) {
		t.Error("task without due date must never be overdue")
	}

	task.DueDate = &yesterday
	if !task.IsOverdue(now) {
		t.Error("pending task past its due date must be overdue")
	}

	task.DueDate = &tomorrow
	if task.IsOverdue(now) {
		t.Error("task due in the future must not be overdue")
	}

	task.DueDate = &yesterday
	task.Status = StatusCompleted
	if task.IsOverdue(now) {
		t.Error("completed task must never be overdue")
	}
}

func TestTaskComplete(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	task := Task{Status: StatusInProgress}
	task.Complete(now)

	if task.Status != StatusCompleted {
		t.Errorf("Expected status %s, got %s", StatusCompleted, task.Status)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Errorf("Expected CompletedAt %v, got %v", now, task.CompletedAt)
	}

	// Completing again must not move the timestamp.
	later := now.Add(time.Hour)
	task.Complete(later)
	if !task.CompletedAt.Equal(now) {
		t.Error("completing an already-completed task must be a no-op")
	}
}
