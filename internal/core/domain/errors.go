package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction Errors.

	// ErrUnsupportedInput indicates no extraction strategy could handle a URL.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrContentTooSmall indicates extracted text fell below the minimum length.
	// The router treats it as "try the next strategy", never as terminal.
	ErrContentTooSmall = errors.New("content too small")

	// ErrExtractionFailed indicates a strategy failed for a reason other than size.
	ErrExtractionFailed = errors.New("extraction failed")

	// Trace Errors.

	// ErrQuotaExceeded indicates the caller used up its searches for the current window.
	ErrQuotaExceeded = errors.New("daily search quota exceeded")

	// ErrRateLimitExceeded indicates the caller sent too many requests too quickly.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrProvider indicates an external provider (completion, embedding,
	// evidence search, store) failed during a pipeline stage.
	ErrProvider = errors.New("provider error")

	// ErrMalformedProviderResponse indicates a provider answered with output
	// that could not be parsed. It also matches ErrProvider.
	ErrMalformedProviderResponse = fmt.Errorf("%w: malformed response", ErrProvider)

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Thought extraction, ranking and classification are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEvidenceUnavailable indicates no evidence search provider is configured.
	ErrEvidenceUnavailable = errors.New("evidence search unavailable")
)

// ProviderError records which provider operation failed during a pipeline stage.
// It matches ErrProvider and the underlying cause with errors.Is.
type ProviderError struct {
	// Stage is the pipeline stage, e.g. "thought extraction".
	Stage string

	// Err is the underlying failure.
	Err error
}

// NewProviderError wraps err as a failure of the given stage.
func NewProviderError(stage string, err error) *ProviderError {
	return &ProviderError{Stage: stage, Err: err}
}

func (e *ProviderError) Error() string {
	if errors.Is(e.Err, ErrProvider) {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, ErrProvider, e.Err)
}

// Unwrap exposes both ErrProvider and the cause.
func (e *ProviderError) Unwrap() []error {
	return []error{ErrProvider, e.Err}
}
