package organizer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jswain/questlog-api/internal/domain"
)

// dateLayout is the calendar-date format used on the wire. Time of day
// is not semantically meaningful to the optimizer.
const dateLayout = "2006-01-02"

// Recommendation is a proposed due-date/priority change for one task.
// Current values are always copied from the stored task, never from the
// model's echo of them. A Recommendation exists only if it proposes an
// actual change; the unchanged suggestion field is left nil.
type Recommendation struct {
	TaskID            uuid.UUID        `json:"taskId"`
	Title             string           `json:"title"`
	CurrentDueDate    *string          `json:"currentDueDate"`
	CurrentPriority   domain.Priority  `json:"currentPriority"`
	SuggestedDueDate  *string          `json:"suggestedDueDate,omitempty"`
	SuggestedPriority *domain.Priority `json:"suggestedPriority,omitempty"`
	Reason            string           `json:"reason,omitempty"`
}

// rawRecommendation is one entry of the model's recommendations array,
// before validation. Every field is an untrusted string.
type rawRecommendation struct {
	TaskID            string `json:"taskId"`
	SuggestedDueDate  string `json:"suggestedDueDate"`
	SuggestedPriority string `json:"suggestedPriority"`
	Reason            string `json:"reason"`
}

// modelReply is the JSON object the optimization prompt asks the model
// to produce.
type modelReply struct {
	Analysis        string              `json:"analysis"`
	Recommendations []rawRecommendation `json:"recommendations"`
	Summary         string              `json:"summary"`
}

// reconcile validates one raw model entry against the authoritative
// stored task and produces a Recommendation, or nil if the entry is a
// no-op. Current due date and priority come from the task; the model's
// version of them is never consulted. An unparseable suggested date is
// treated as absent, not as a failure.
func reconcile(entry rawRecommendation, task *domain.Task) *Recommendation {
	suggestedDate := parseCalendarDate(entry.SuggestedDueDate)

	var suggestedPriority *domain.Priority
	if p, ok := domain.ParsePriority(entry.SuggestedPriority); ok {
		suggestedPriority = &p
	}

	dateChanged := suggestedDate != nil &&
		(task.DueDate == nil || !sameDay(*task.DueDate, *suggestedDate))
	priorityChanged := suggestedPriority != nil && *suggestedPriority != task.Priority

	if !dateChanged && !priorityChanged {
		return nil
	}

	rec := &Recommendation{
		TaskID:          task.ID,
		Title:           task.Title,
		CurrentDueDate:  formatDate(task.DueDate),
		CurrentPriority: task.Priority,
		Reason:          strings.TrimSpace(entry.Reason),
	}
	if dateChanged {
		rec.SuggestedDueDate = formatDate(suggestedDate)
	}
	if priorityChanged {
		rec.SuggestedPriority = suggestedPriority
	}

	return rec
}

// calendarLayouts are the date formats accepted from model replies and
// apply payloads, tried in order.
var calendarLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// parseCalendarDate parses a date string leniently. Returns nil if the
// string is empty or matches no known layout.
func parseCalendarDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// sameDay reports whether two instants fall on the same UTC calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// formatDate renders a time as a calendar date, or nil for nil input.
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}
