// Package ai builds the completion, embedding and evidence adapters named
// in the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	ollamaembed "github.com/custodia-labs/provena/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/provena/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/provena/internal/adapters/driven/evidence/brave"
	anthropicllm "github.com/custodia-labs/provena/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/provena/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/provena/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/logger"
)

// pingTimeout bounds each connectivity check.
const pingTimeout = 5 * time.Second

// InitResult contains the providers the trace pipeline needs.
// A nil field means the provider is not configured or could not be reached.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Evidence         driven.EvidenceSearcher
	Warnings         []string // one per provider that could not be set up
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init creates every configured provider. Failures become warnings so
// commands that do not need a provider still run. With validate set the
// AI providers are pinged concurrently before being returned.
func Init(settings *domain.AppSettings, validate bool) *InitResult {
	result := &InitResult{}
	errs := make([]error, 3)

	var g errgroup.Group
	g.Go(func() error {
		if validate {
			result.LLMService, errs[0] = CreateAndValidateLLMService(&settings.LLM)
		} else {
			result.LLMService, errs[0] = CreateLLMService(&settings.LLM)
		}
		return nil
	})
	g.Go(func() error {
		if validate {
			result.EmbeddingService, errs[1] = CreateAndValidateEmbeddingService(&settings.Embedding)
		} else {
			result.EmbeddingService, errs[1] = CreateEmbeddingService(&settings.Embedding)
		}
		return nil
	})
	result.Evidence, errs[2] = CreateEvidenceSearcher(&settings.Evidence)
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			logger.Warn("%v", err)
		}
	}
	return result
}

// provider is the lifecycle every AI adapter shares.
type provider interface {
	Ping(ctx context.Context) error
	Close() error
}

func ping(p provider) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// createAndPing builds a provider and keeps it only if it answers. Errors
// wrap unavailable; construction errors also say which setting to fix.
func createAndPing[P provider](create func() (P, error), unavailable error, setting string) (P, error) {
	var zero P
	svc, err := create()
	if err != nil {
		return zero, fmt.Errorf("%w: %w. Run 'provena settings set %s' to fix", unavailable, err, setting)
	}
	if any(svc) == nil {
		return zero, nil
	}
	if err := ping(svc); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w)", unavailable, err)
	}
	return svc, nil
}

// createAndDiscard builds a provider, pings it and closes it again.
func createAndDiscard[P provider](create func() (P, error)) error {
	svc, err := create()
	if err != nil || any(svc) == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// CreateAndValidateEmbeddingService returns a reachable embedding service,
// nil when none is configured, or an error wrapping ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return createAndPing(func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(settings)
	}, domain.ErrEmbeddingUnavailable, "embedding.provider")
}

// CreateAndValidateLLMService returns a reachable LLM service, nil when
// none is configured, or an error wrapping ErrLLMUnavailable.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	return createAndPing(func() (driven.LLMService, error) {
		return CreateLLMService(settings)
	}, domain.ErrLLMUnavailable, "llm.provider")
}

// ValidateEmbeddingConfig pings the embedding provider settings describe.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return createAndDiscard(func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(settings)
	})
}

// ValidateLLMConfig pings the LLM provider settings describe.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return createAndDiscard(func() (driven.LLMService, error) {
		return CreateLLMService(settings)
	})
}

// CreateEmbeddingService returns nil, nil when no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
}

// CreateLLMService returns nil, nil when no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: settings.BaseURL, Model: settings.Model})
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey: settings.APIKey, BaseURL: settings.BaseURL, Model: settings.Model,
		})
	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey: settings.APIKey, BaseURL: settings.BaseURL, Model: settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateEvidenceSearcher creates the web search provider used for evidence.
// Returns nil if the provider is not configured.
func CreateEvidenceSearcher(settings *domain.EvidenceSettings) (driven.EvidenceSearcher, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case "brave":
		searcher, err := brave.New(brave.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return searcher, nil
	}
	return nil, fmt.Errorf("%w: unsupported evidence provider: %s", domain.ErrEvidenceUnavailable, settings.Provider)
}
