// Package anthropic provides an LLM service adapter using the Anthropic API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	jsonInstruction = "\n\nRespond with a single JSON object and nothing else."
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com/v1).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides completions using the Anthropic messages API.
type LLMService struct {
	client *anthropic.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := anthropic.NewClient(cfg.APIKey,
		anthropic.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		anthropic.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	return &LLMService{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Complete sends the user prompt with the system prompt as the system block.
// The messages API has no JSON mode, so JSONMode appends an instruction instead.
func (s *LLMService) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	opts driven.CompletionOptions,
) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if opts.JSONMode {
		systemPrompt += jsonInstruction
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(s.model),
		System:    systemPrompt,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(userPrompt)},
		MaxTokens: maxTokens,
	}
	if opts.Temperature > 0 {
		temperature := float32(opts.Temperature)
		req.Temperature = &temperature
	}

	resp, err := s.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", describeError(err))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			text.WriteString(block.GetText())
		}
	}

	content := strings.TrimSpace(text.String())
	if content == "" {
		return "", fmt.Errorf("anthropic: empty completion: %w", domain.ErrMalformedProviderResponse)
	}
	return content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key with a one-token completion.
// Anthropic has no free endpoint for key validation.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.model),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage("ping")},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", describeError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func describeError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API error (%s): %s", apiErr.Type, apiErr.Message)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("API returned status %d: %w", reqErr.StatusCode, reqErr.Err)
	}
	return err
}
