package organizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jswain/questlog-api/internal/domain"
	"github.com/jswain/questlog-api/internal/store"
)

// Context is a snapshot of a user's profile, tasks, and derived
// statistics, used to ground a prompt.
type Context struct {
	User  *domain.User   `json:"user"`
	Tasks []*domain.Task `json:"tasks"`
	Stats Stats          `json:"stats"`
}

// Stats summarizes a task list by status and overdue state.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// BuildContext loads the user's profile and full task list and derives
// statistics. The two reads are independent and issued concurrently.
// Returns ErrInvalidUserID for a nil user ID and store.ErrUserNotFound
// if the user does not resolve.
func (s *Service) BuildContext(ctx context.Context, userID uuid.UUID) (*Context, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	var (
		wg       sync.WaitGroup
		user     *domain.User
		tasks    []*domain.Task
		userErr  error
		tasksErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		user, userErr = s.users.GetByID(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		tasks, tasksErr = s.tasks.List(ctx, userID, store.TaskFilter{})
	}()
	wg.Wait()

	if userErr != nil {
		return nil, userErr
	}
	if tasksErr != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", tasksErr)
	}

	return &Context{
		User:  user,
		Tasks: tasks,
		Stats: computeStats(tasks, s.now()),
	}, nil
}

// computeStats counts tasks by status and overdue flag.
func computeStats(tasks []*domain.Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusCompleted:
			stats.Completed++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// maxRenderedCompleted caps how many completed tasks the rendered
// context lists; the remainder is summarized as a count.
const maxRenderedCompleted = 10

// Render produces the deterministic, human-readable text block used to
// ground prompts: a profile section, a statistics section, and the task
// list grouped by status. Ordering within each group follows the
// store's return order.
func (c *Context) Render() string {
	var b strings.Builder

	b.WriteString("## User Profile\n")
	fmt.Fprintf(&b, "Name: %s\n", c.User.Name)
	fmt.Fprintf(&b, "Level: %d (%d XP)\n", c.User.Level, c.User.XP)
	fmt.Fprintf(&b, "Tasks completed: %d\n", c.User.TasksCompleted)
	fmt.Fprintf(&b, "Timezone: %s\n", c.User.Timezone)
	fmt.Fprintf(&b, "Daily XP goal: %d\n", c.User.DailyXPGoal)

	b.WriteString("\n## Statistics\n")
	fmt.Fprintf(&b, "Total tasks: %d\n", c.Stats.Total)
	fmt.Fprintf(&b, "Pending: %d\n", c.Stats.Pending)
	fmt.Fprintf(&b, "In progress: %d\n", c.Stats.InProgress)
	fmt.Fprintf(&b, "Completed: %d\n", c.Stats.Completed)
	fmt.Fprintf(&b, "Overdue: %d\n", c.Stats.Overdue)

	b.WriteString("\n## Tasks\n")
	writeTaskGroup(&b, "Pending", c.tasksWithStatus(domain.StatusPending))
	writeTaskGroup(&b, "In Progress", c.tasksWithStatus(domain.StatusInProgress))
	writeCompletedGroup(&b, c.tasksWithStatus(domain.StatusCompleted))

	return b.String()
}

func (c *Context) tasksWithStatus(status domain.Status) []*domain.Task {
	var out []*domain.Task
	for _, task := range c.Tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

func writeTaskGroup(b *strings.Builder, heading string, tasks []*domain.Task) {
	fmt.Fprintf(b, "\n### %s (%d)\n", heading, len(tasks))
	if len(tasks) == 0 {
		b.WriteString("None.\n")
		return
	}
	for _, task := range tasks {
		b.WriteString(renderTaskLine(task))
	}
}

func writeCompletedGroup(b *strings.Builder, tasks []*domain.Task) {
	fmt.Fprintf(b, "\n### Completed (%d)\n", len(tasks))
	if len(tasks) == 0 {
		b.WriteString("None.\n")
		return
	}

	shown := tasks
	if len(shown) > maxRenderedCompleted {
		shown = shown[:maxRenderedCompleted]
	}
	for _, task := range shown {
		b.WriteString(renderTaskLine(task))
	}
	if rest := len(tasks) - len(shown); rest > 0 {
		fmt.Fprintf(b, "...and %d more completed tasks\n", rest)
	}
}

// renderTaskLine renders one task as a single prompt line.
func renderTaskLine(task *domain.Task) string {
	due := "No due date"
	if task.DueDate != nil {
		due = task.DueDate.UTC().Format(dateLayout)
	}
	line := fmt.Sprintf("- [%s] %s | priority: %s | due: %s | %d pts",
		task.ID, task.Title, task.Priority, due, task.Points)
	if len(task.Tags) > 0 {
		line += " | tags: " + strings.Join(task.Tags, ", ")
	}
	return line + "\n"
}
