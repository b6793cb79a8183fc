// Package organizer implements the LLM-assisted planning features:
// building prompt context from a user's tasks, running completions
// through the model gateway, and extracting validated workload
// recommendations from free-text model replies.
package organizer
