// Package llm defines the model-gateway boundary between the application
// core and hosted text-completion providers. It abstracts the details of
// provider APIs (Gemini, OpenAI) behind a single Complete capability so
// the organizer can generate text without coupling to a vendor.
package llm
