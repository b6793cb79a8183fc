// Package gemini implements the llm.Provider interface using Google's
// Gemini API via the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jswain/questlog-api/internal/llm"
	"google.golang.org/genai"
)

// Provider is the Gemini-backed llm.Provider.
type Provider struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// Ensure Provider implements llm.Provider
var _ llm.Provider = (*Provider)(nil)

// NewProvider creates a Gemini provider with the given API key and model
// name. The client is created eagerly so configuration problems surface
// at startup rather than on the first request.
func NewProvider(ctx context.Context, logger *slog.Logger, apiKey, model string) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", llm.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: gemini model name cannot be empty", llm.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", llm.ErrInvalidConfig, err)
	}

	return &Provider{
		logger: logger.With(slog.String("component", "gemini_provider")),
		client: client,
		model:  model,
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "gemini" }

// Complete implements llm.Provider. It issues a single non-streaming
// GenerateContent call and returns the concatenated text parts.
func (p *Provider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	opts llm.Options,
) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if opts.Temperature != nil {
		cfg.Temperature = opts.Temperature
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}

	p.logger.DebugContext(ctx, "calling Gemini API",
		"model", p.model,
		"prompt_length", len(userPrompt))

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), cfg)
	if err != nil {
		p.logger.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", fmt.Errorf("%w: gemini: %v", llm.ErrProviderFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini: no candidates in response", llm.ErrEmptyCompletion)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: gemini: content blocked by safety filters", llm.ErrProviderFailure)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini", llm.ErrEmptyCompletion)
	}

	p.logger.DebugContext(ctx, "Gemini API call succeeded", "completion_length", len(text))
	return text, nil
}
