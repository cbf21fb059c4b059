// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/provena/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = ollamaapi.DefaultBaseURL
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	api   *ollamaapi.Client
	model string
}

type batchRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type batchResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// legacyRequest is the single-prompt /api/embeddings body that servers
// older than 0.3 accept.
type legacyRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type legacyResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &EmbeddingService{
		api:   ollamaapi.New(cfg.BaseURL, cfg.Timeout),
		model: cfg.Model,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request, returning vectors in input order.
// A server without /api/embed is asked one text at a time instead.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp batchResponse
	err := s.api.Post(ctx, "/api/embed", batchRequest{Model: s.model, Input: texts}, &resp)
	if ollamaapi.IsStatus(err, http.StatusNotFound) {
		return s.embedLegacy(ctx, texts)
	}
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: %d embeddings for %d inputs: %w",
			len(resp.Embeddings), len(texts), domain.ErrMalformedProviderResponse)
	}
	for _, v := range resp.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding: %w", domain.ErrMalformedProviderResponse)
		}
	}
	return resp.Embeddings, nil
}

func (s *EmbeddingService) embedLegacy(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		var resp legacyResponse
		if err := s.api.Post(ctx, "/api/embeddings", legacyRequest{Model: s.model, Prompt: text}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embedding) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding: %w", domain.ErrMalformedProviderResponse)
		}
		out[i] = resp.Embedding
	}
	return out, nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that the server answers.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
