// Package openai implements the llm.Provider interface against the
// OpenAI chat-completions HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jswain/questlog-api/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider is the OpenAI-backed llm.Provider.
type Provider struct {
	logger  *slog.Logger
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// Ensure Provider implements llm.Provider
var _ llm.Provider = (*Provider)(nil)

// NewProvider creates an OpenAI provider with the given API key and
// model name.
func NewProvider(logger *slog.Logger, apiKey, model string) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", llm.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: openai model name cannot be empty", llm.ErrInvalidConfig)
	}

	return &Provider{
		logger:  logger.With(slog.String("component", "openai_provider")),
		client:  &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
	}, nil
}

// SetBaseURL overrides the API base URL. Used by tests to point the
// provider at a local server.
func (p *Provider) SetBaseURL(url string) { p.baseURL = url }

// Name implements llm.Provider.
func (p *Provider) Name() string { return "openai" }

// chatRequest is the subset of the chat-completions request body we use.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat-completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements llm.Provider. It issues a single chat-completion
// request with a system and a user message.
func (p *Provider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	opts llm.Options,
) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/chat/completions",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	p.logger.DebugContext(ctx, "calling OpenAI API",
		"model", p.model,
		"prompt_length", len(userPrompt))

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.ErrorContext(ctx, "OpenAI API call failed", "error", err)
		return "", fmt.Errorf("%w: openai: %v", llm.ErrProviderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: openai: reading response: %v", llm.ErrProviderFailure, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("%w: openai: decoding response: %v", llm.ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		p.logger.ErrorContext(ctx, "OpenAI API returned error",
			"status", resp.StatusCode,
			"message", msg)
		return "", fmt.Errorf("%w: openai: %s", llm.ErrProviderFailure, msg)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai", llm.ErrEmptyCompletion)
	}

	text := parsed.Choices[0].Message.Content
	p.logger.DebugContext(ctx, "OpenAI API call succeeded", "completion_length", len(text))
	return text, nil
}
