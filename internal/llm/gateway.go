package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options carries optional generation parameters. Nil/zero fields fall
// back to provider defaults.
type Options struct {
	// Temperature controls sampling randomness. Nil leaves the provider
	// default in place.
	Temperature *float32

	// MaxOutputTokens caps the completion length. Zero means no explicit cap.
	MaxOutputTokens int32
}

// Provider is a single hosted text-completion backend. Implementations
// are pure request/response: no streaming, no retained conversation state.
type Provider interface {
	// Name returns the provider's stable identifier ("gemini", "openai").
	Name() string

	// Complete sends a system+user prompt pair and returns the text reply.
	// Returns ErrProviderFailure if the remote call fails and
	// ErrEmptyCompletion if it succeeds without usable text.
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Gateway dispatches completions to one of a small set of providers.
// Selection is capability-based: the first provider in registration order
// is the default, and callers may name one explicitly. No retry is
// performed; failures propagate to the caller.
type Gateway struct {
	providers []Provider
	logger    *slog.Logger
}

// NewGateway creates a gateway over the given providers, in preference
// order. A gateway with no providers is valid; every Complete call on it
// returns ErrNotConfigured.
func NewGateway(logger *slog.Logger, providers ...Provider) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		providers: providers,
		logger:    logger.With(slog.String("component", "llm_gateway")),
	}
}

// Providers returns the names of the configured providers in preference
// order.
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for _, p := range g.providers {
		names = append(names, p.Name())
	}
	return names
}

// Configured reports whether at least one provider is available.
func (g *Gateway) Configured() bool {
	return len(g.providers) > 0
}

// Complete runs a completion through the named provider, or the default
// provider when providerName is empty.
func (g *Gateway) Complete(
	ctx context.Context,
	providerName string,
	systemPrompt, userPrompt string,
	opts Options,
) (string, error) {
	provider, err := g.pick(providerName)
	if err != nil {
		return "", err
	}

	g.logger.DebugContext(ctx, "dispatching completion",
		"provider", provider.Name(),
		"system_prompt_length", len(systemPrompt),
		"user_prompt_length", len(userPrompt))

	text, err := provider.Complete(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: provider %s", ErrEmptyCompletion, provider.Name())
	}

	return text, nil
}

// pick resolves a provider by name, or falls back to the first registered
// provider when name is empty.
func (g *Gateway) pick(name string) (Provider, error) {
	if len(g.providers) == 0 {
		return nil, ErrNotConfigured
	}

	if name == "" {
		return g.providers[0], nil
	}

	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range g.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: provider %q", ErrNotConfigured, name)
}
