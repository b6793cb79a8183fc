package organizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswain/questlog-api/internal/domain"
)

func TestComputeStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	pendingOverdue := activeTask(t, "late", domain.PriorityMedium, &past)
	pendingFuture := activeTask(t, "soon", domain.PriorityMedium, &future)
	inProgress := activeTask(t, "working", domain.PriorityHigh, nil)
	inProgress.Status = domain.StatusInProgress
	done := activeTask(t, "done", domain.PriorityLow, &past)
	done.Status = domain.StatusCompleted

	stats := computeStats([]*domain.Task{pendingOverdue, pendingFuture, inProgress, done}, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Overdue, "completed tasks past their due date are not overdue")
}

func TestBuildContext(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("u@example.com", "averylongpassword", "Uma")
	require.NoError(t, err)
	task := activeTask(t, "A task", domain.PriorityMedium, nil)

	svc := newTestService(
		&stubUserStore{user: user},
		&stubTaskStore{tasks: []*domain.Task{task}},
		&stubGateway{},
		time.Second,
	)

	built, err := svc.BuildContext(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user, built.User)
	require.Len(t, built.Tasks, 1)
	assert.Equal(t, 1, built.Stats.Total)
	assert.Equal(t, 1, built.Stats.Pending)
}

func TestContextRender(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("u@example.com", "averylongpassword", "Uma")
	require.NoError(t, err)
	user.Level = 3
	user.XP = 420
	user.TasksCompleted = 17

	due := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	pending := activeTask(t, "Write report", domain.PriorityHigh, &due)
	pending.Tags = []string{"work", "writing"}
	working := activeTask(t, "Fix bug", domain.PriorityUrgent, nil)
	working.Status = domain.StatusInProgress

	built := &Context{
		User:  user,
		Tasks: []*domain.Task{pending, working},
		Stats: computeStats([]*domain.Task{pending, working}, time.Now()),
	}

	rendered := built.Render()

	assert.Contains(t, rendered, "## User Profile")
	assert.Contains(t, rendered, "Name: Uma")
	assert.Contains(t, rendered, "Level: 3 (420 XP)")
	assert.Contains(t, rendered, "Tasks completed: 17")
	assert.Contains(t, rendered, "## Statistics")
	assert.Contains(t, rendered, "### Pending (1)")
	assert.Contains(t, rendered, "### In Progress (1)")
	assert.Contains(t, rendered, "### Completed (0)")
	assert.Contains(t, rendered, "Write report | priority: high | due: 2025-06-20")
	assert.Contains(t, rendered, "tags: work, writing")
	assert.Contains(t, rendered, "Fix bug | priority: urgent | due: No due date")
}

func TestContextRender_CapsCompletedTasks(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("u@example.com", "averylongpassword", "Uma")
	require.NoError(t, err)

	var tasks []*domain.Task
	for i := 0; i < maxRenderedCompleted+5; i++ {
		task := activeTask(t, fmt.Sprintf("done %d", i), domain.PriorityLow, nil)
		task.Status = domain.StatusCompleted
		tasks = append(tasks, task)
	}

	built := &Context{User: user, Tasks: tasks, Stats: computeStats(tasks, time.Now())}
	rendered := built.Render()

	assert.Contains(t, rendered, fmt.Sprintf("### Completed (%d)", maxRenderedCompleted+5))
	assert.Contains(t, rendered, "...and 5 more completed tasks")
	assert.Contains(t, rendered, "done 9")
	assert.NotContains(t, rendered, "done 10", "only the first ten completed tasks are listed")
}
