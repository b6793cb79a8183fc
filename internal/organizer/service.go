package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jswain/questlog-api/internal/domain"
	"github.com/jswain/questlog-api/internal/llm"
	"github.com/jswain/questlog-api/internal/store"
)

// Defaults and caps for the optimization operation.
const (
	DefaultDays     = 7
	DefaultMaxTasks = 15
	// MaxTasksCap bounds prompt size and latency regardless of what the
	// caller asks for.
	MaxTasksCap = 50

	defaultTimeout = 30 * time.Second
)

// Gateway is the slice of the model gateway the organizer needs.
// *llm.Gateway satisfies it; tests substitute stubs.
type Gateway interface {
	Complete(ctx context.Context, provider, systemPrompt, userPrompt string, opts llm.Options) (string, error)
	Providers() []string
	Configured() bool
}

// Service orchestrates context building, model completion, and
// recommendation extraction for the organizer endpoints.
type Service struct {
	users   store.UserStore
	tasks   store.TaskStore
	gateway Gateway
	logger  *slog.Logger
	timeout time.Duration
	opts    llm.Options

	// now is swapped in tests for deterministic overdue computation.
	now func() time.Time
}

// Config carries the optional knobs for NewService.
type Config struct {
	// Timeout bounds the whole optimization operation. Zero means the
	// 30-second default.
	Timeout time.Duration

	// Options are the generation parameters passed to every completion.
	Options llm.Options
}

// NewService creates an organizer service over the given stores and
// model gateway.
func NewService(
	users store.UserStore,
	tasks store.TaskStore,
	gateway Gateway,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for organizer.Service")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Service{
		users:   users,
		tasks:   tasks,
		gateway: gateway,
		logger:  logger.With(slog.String("component", "organizer")),
		timeout: timeout,
		opts:    cfg.Options,
		now:     time.Now,
	}
}

// Metadata describes how an organizer result was produced.
type Metadata struct {
	Provider        string `json:"provider"`
	TasksConsidered int    `json:"tasksConsidered,omitempty"`
	Days            int    `json:"days,omitempty"`
	DurationMs      int64  `json:"durationMs"`
}

// OptimizationResult is the outcome of a workload-optimization run.
type OptimizationResult struct {
	Analysis        string           `json:"analysis"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
	Metadata        Metadata         `json:"metadata"`
}

// noTasksAnalysis is the short-circuit result when there is nothing to
// optimize; the model is not called.
const noTasksAnalysis = "No pending tasks found to optimize."

// OptimizeWorkload runs the full pipeline: fetch and rank the user's
// active tasks, prompt the model to redistribute the workload, and
// extract validated recommendations from its reply. The whole operation
// is raced against the service timeout; on expiry the in-flight provider
// call is abandoned, not cancelled.
func (s *Service) OptimizeWorkload(
	ctx context.Context,
	userID uuid.UUID,
	days, maxTasks int,
) (*OptimizationResult, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if days <= 0 {
		days = DefaultDays
	}
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	if maxTasks > MaxTasksCap {
		maxTasks = MaxTasksCap
	}

	start := s.now()

	type outcome struct {
		result *OptimizationResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := s.optimize(ctx, userID, days, maxTasks)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.result != nil {
			out.result.Metadata.DurationMs = time.Since(start).Milliseconds()
		}
		return out.result, out.err
	case <-time.After(s.timeout):
		s.logger.WarnContext(ctx, "workload optimization timed out",
			"user_id", userID,
			"timeout", s.timeout)
		return nil, ErrTimeout
	}
}

// optimize is the un-raced pipeline body.
func (s *Service) optimize(
	ctx context.Context,
	userID uuid.UUID,
	days, maxTasks int,
) (*OptimizationResult, error) {
	active, err := s.tasks.List(ctx, userID, store.TaskFilter{
		Statuses: []domain.Status{domain.StatusPending, domain.StatusInProgress},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load active tasks: %w", err)
	}

	candidates := rankTasks(active)
	if len(candidates) > maxTasks {
		candidates = candidates[:maxTasks]
	}

	if len(candidates) == 0 {
		return &OptimizationResult{
			Analysis:        noTasksAnalysis,
			Recommendations: []Recommendation{},
			Summary:         "",
			Metadata:        Metadata{Provider: s.defaultProvider(), Days: days},
		}, nil
	}

	prompt := buildOptimizationPrompt(candidates, days)
	reply, err := s.gateway.Complete(ctx, "", systemPrompt, prompt, s.opts)
	if err != nil {
		return nil, err
	}

	extracted := ExtractRecommendations(reply, candidates)

	s.logger.InfoContext(ctx, "workload optimization completed",
		"user_id", userID,
		"candidates", len(candidates),
		"recommendations", len(extracted.Recommendations))

	return &OptimizationResult{
		Analysis:        extracted.Analysis,
		Recommendations: extracted.Recommendations,
		Summary:         extracted.Summary,
		Metadata: Metadata{
			Provider:        s.defaultProvider(),
			TasksConsidered: len(candidates),
			Days:            days,
		},
	}, nil
}

// rankTasks orders tasks by priority descending, ties broken by
// ascending due date, with dated tasks before undated ones. The sort is
// stable so store order decides remaining ties.
func rankTasks(tasks []*domain.Task) []*domain.Task {
	ranked := make([]*domain.Task, len(tasks))
	copy(ranked, tasks)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})

	return ranked
}

// ApplyItem is one caller-approved recommendation to write back.
type ApplyItem struct {
	TaskID            string `json:"taskId"            validate:"required"`
	SuggestedDueDate  string `json:"suggestedDueDate,omitempty"`
	SuggestedPriority string `json:"suggestedPriority,omitempty"`
}

// ApplyResult reports how a batch of recommendations was applied.
// Partial application is a normal outcome, not a consistency violation.
type ApplyResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// ApplyRecommendations writes caller-selected due-date/priority changes
// back to the task store. Each item is processed independently and
// ownership-checked; per-item failures are collected and reported while
// the rest of the batch proceeds.
func (s *Service) ApplyRecommendations(
	ctx context.Context,
	userID uuid.UUID,
	items []ApplyItem,
) (*ApplyResult, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	result := &ApplyResult{}

	for _, item := range items {
		taskID, err := uuid.Parse(item.TaskID)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Invalid task ID %q", item.TaskID))
			continue
		}

		update := store.ScheduleUpdate{}
		if item.SuggestedDueDate != "" {
			due := parseCalendarDate(item.SuggestedDueDate)
			if due == nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Invalid due date %q for task %s", item.SuggestedDueDate, taskID))
				continue
			}
			update.DueDate = due
		}
		if item.SuggestedPriority != "" {
			priority, ok := domain.ParsePriority(item.SuggestedPriority)
			if !ok {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Invalid priority %q for task %s", item.SuggestedPriority, taskID))
				continue
			}
			update.Priority = &priority
		}

		if update.DueDate == nil && update.Priority == nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No changes supplied for task %s", taskID))
			continue
		}

		err = s.tasks.UpdateSchedule(ctx, userID, taskID, update)
		if err != nil {
			if store.IsNotFoundError(err) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Task %s not found", taskID))
				continue
			}
			return nil, fmt.Errorf("failed to apply recommendation: %w", err)
		}
		result.Updated++
	}

	s.logger.InfoContext(ctx, "applied workload recommendations",
		"user_id", userID,
		"updated", result.Updated,
		"errors", len(result.Errors))

	return result, nil
}

// Completion is an unstructured organizer reply.
type Completion struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// BreakdownTask asks the model to split one task description into
// subtasks. The reply is unstructured; no JSON extraction is applied.
func (s *Service) BreakdownTask(ctx context.Context, description string) (*Completion, error) {
	return s.complete(ctx, buildBreakdownPrompt(description))
}

// Suggestions asks the model which tasks the user should tackle next.
func (s *Service) Suggestions(ctx context.Context, userID uuid.UUID) (*Completion, error) {
	return s.completeWithContext(ctx, userID, buildSuggestionsPrompt)
}

// DailyPlan asks the model for an ordered plan for today.
func (s *Service) DailyPlan(ctx context.Context, userID uuid.UUID) (*Completion, error) {
	return s.completeWithContext(ctx, userID, buildDailyPlanPrompt)
}

// ProductivityAnalysis asks the model to analyze working patterns.
func (s *Service) ProductivityAnalysis(ctx context.Context, userID uuid.UUID) (*Completion, error) {
	return s.completeWithContext(ctx, userID, buildProductivityPrompt)
}

// Motivation asks the model for a short motivational message.
func (s *Service) Motivation(ctx context.Context, userID uuid.UUID) (*Completion, error) {
	return s.completeWithContext(ctx, userID, buildMotivationPrompt)
}

// Chat answers a free-form user message grounded in the user's context.
// No conversation state is retained between calls.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, message string) (*Completion, error) {
	built, err := s.BuildContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, buildChatPrompt(built.Render(), message))
}

// TestProvider sends a trivial prompt through the named provider (or the
// default) and returns its reply verbatim.
func (s *Service) TestProvider(ctx context.Context, provider string) (*Completion, error) {
	start := s.now()
	text, err := s.gateway.Complete(ctx, provider, systemPrompt,
		`Reply with the single word "ok".`, llm.Options{MaxOutputTokens: 16})
	if err != nil {
		return nil, err
	}
	name := provider
	if name == "" {
		name = s.defaultProvider()
	}
	return &Completion{
		Text: text,
		Metadata: Metadata{
			Provider:   name,
			DurationMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// Health reports which providers are configured.
func (s *Service) Health() (configured bool, providers []string) {
	return s.gateway.Configured(), s.gateway.Providers()
}

// completeWithContext builds and renders the user's context, then runs
// the prompt produced by build through the gateway.
func (s *Service) completeWithContext(
	ctx context.Context,
	userID uuid.UUID,
	build func(rendered string) string,
) (*Completion, error) {
	built, err := s.BuildContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, build(built.Render()))
}

// complete runs one completion through the default provider.
func (s *Service) complete(ctx context.Context, userPrompt string) (*Completion, error) {
	start := s.now()
	text, err := s.gateway.Complete(ctx, "", systemPrompt, userPrompt, s.opts)
	if err != nil {
		return nil, err
	}
	return &Completion{
		Text: text,
		Metadata: Metadata{
			Provider:   s.defaultProvider(),
			DurationMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// defaultProvider names the provider the gateway will pick when none is
// requested explicitly.
func (s *Service) defaultProvider() string {
	if providers := s.gateway.Providers(); len(providers) > 0 {
		return providers[0]
	}
	return ""
}
