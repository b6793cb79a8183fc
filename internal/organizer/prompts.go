package organizer

import (
	"fmt"
	"strings"

	"github.com/jswain/questlog-api/internal/domain"
)

// systemPrompt grounds every organizer completion in the same persona.
const systemPrompt = `You are the organizer assistant inside Questlog, a gamified task manager.
You help users plan their work, balance their schedule, and stay motivated.
Be concise and practical. Users earn experience points for completing tasks.`

// optimizationInstructions asks the model for a strict-JSON reply. The
// overloaded-day thresholds are advisory prompt text, not something the
// code enforces or verifies.
const optimizationInstructions = `Analyze the workload above and redistribute due dates and priorities so work is spread evenly across the window.
A day with 5 or more tasks is overloaded; prefer moving tasks to days with only 1-2 tasks.
Only suggest changes that actually help; leave well-placed tasks alone.

Reply with ONLY a JSON object in this exact shape, and no other text:
{
  "analysis": "<one paragraph describing the workload problems you found>",
  "recommendations": [
    {
      "taskId": "<task id exactly as listed above>",
      "suggestedDueDate": "YYYY-MM-DD",
      "suggestedPriority": "low|medium|high|urgent",
      "reason": "<why this change helps>"
    }
  ],
  "summary": "<one sentence describing the rebalanced schedule>"
}
Omit suggestedDueDate or suggestedPriority when you are not changing that field.`

// buildOptimizationPrompt enumerates the candidate tasks and frames the
// redistribution request over the given horizon.
func buildOptimizationPrompt(tasks []*domain.Task, days int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here are my active tasks to rebalance over the next %d days:\n\n", days)
	for _, task := range tasks {
		due := "No due date"
		if task.DueDate != nil {
			due = task.DueDate.UTC().Format(dateLayout)
		}
		fmt.Fprintf(&b, "- ID: %s | %s | priority: %s | due: %s\n",
			task.ID, task.Title, task.Priority, due)
	}

	b.WriteString("\n")
	b.WriteString(optimizationInstructions)
	return b.String()
}

// buildBreakdownPrompt asks for an unstructured step-by-step breakdown
// of a single task description. No JSON extraction is applied to the reply.
func buildBreakdownPrompt(description string) string {
	return fmt.Sprintf(`Break the following task into small, concrete subtasks I can finish in one sitting each.
Number the steps and keep each one to a single line.

Task: %s`, description)
}

// buildSuggestionsPrompt asks for next-task suggestions grounded in the
// rendered context.
func buildSuggestionsPrompt(rendered string) string {
	return rendered + `

Based on my profile and tasks above, suggest 3-5 tasks I should tackle next and why.
Prefer overdue and urgent work, but keep the list achievable for one day.`
}

// buildDailyPlanPrompt asks for an ordered plan for today.
func buildDailyPlanPrompt(rendered string) string {
	return rendered + `

Plan my day. Produce an ordered schedule for today using my pending and in-progress tasks,
with rough time blocks and short reasons. Account for my daily XP goal.`
}

// buildProductivityPrompt asks for an analysis of working patterns.
func buildProductivityPrompt(rendered string) string {
	return rendered + `

Analyze my productivity: completion rate, overdue pattern, and priority balance.
Point out the single biggest problem and one concrete habit change to fix it.`
}

// buildMotivationPrompt asks for a short motivational message.
func buildMotivationPrompt(rendered string) string {
	return rendered + `

Write me a short, specific motivational message (3-4 sentences) that references my actual
progress and what finishing today's tasks would earn me. No generic platitudes.`
}

// buildChatPrompt wraps a free-form user message with the rendered context.
func buildChatPrompt(rendered, message string) string {
	return rendered + "\n\nUser message: " + message
}
