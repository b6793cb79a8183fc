package llm

import "errors"

// Common errors returned by the llm package.
var (
	// ErrNotConfigured is returned when no provider credential is
	// configured, or an explicitly requested provider is unavailable.
	ErrNotConfigured = errors.New("no model provider configured")

	// ErrProviderFailure is returned when the remote completion call fails.
	ErrProviderFailure = errors.New("model provider call failed")

	// ErrEmptyCompletion is returned when the provider call succeeds but
	// yields no usable text.
	ErrEmptyCompletion = errors.New("model returned an empty completion")

	// ErrInvalidConfig is returned when a provider is constructed with
	// invalid configuration.
	ErrInvalidConfig = errors.New("invalid provider configuration")
)
