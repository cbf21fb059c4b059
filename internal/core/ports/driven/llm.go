// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides completion calls for the trace pipeline.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o mini)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Complete sends a system and user prompt and returns the completion text.
	// Implementations must return domain.ErrMalformedProviderResponse when the
	// provider answers with no content.
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionOptions configures a completion call.
type CompletionOptions struct {
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// JSONMode asks the provider to answer with a single JSON object.
	JSONMode bool
}
