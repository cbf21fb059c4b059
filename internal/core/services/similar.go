package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/logger"
)

// primaryIndexKey holds the IDs of every persisted primary thought in
// insertion order.
const primaryIndexKey = "thoughts:index"

// indexPrimary appends id to the primary index.
func (s *TraceService) indexPrimary(ctx context.Context, id string) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids, err := s.store.GetSet(ctx, primaryIndexKey)
	if err != nil {
		return err
	}
	ids = append(ids, []byte(id))
	return s.store.PutSet(ctx, primaryIndexKey, ids)
}

// GetSimilarThoughts embeds text and ranks persisted primary thoughts by
// cosine similarity to it, highest first. Primaries without an embedding,
// or whose dimension differs from the query's, are skipped.
func (s *TraceService) GetSimilarThoughts(ctx context.Context, text string, k int) ([]domain.SimilarThought, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = domain.DefaultSimilarThoughts
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, domain.NewProviderError(stageEmbedding, err)
	}

	ids, err := s.store.GetSet(ctx, primaryIndexKey)
	if err != nil {
		return nil, fmt.Errorf("load primary index: %w", err)
	}

	matches := make([]domain.SimilarThought, 0, len(ids))
	for _, id := range ids {
		primary, err := s.GetPrimaryThought(ctx, string(id))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sim, ok := cosineSimilarity(query, primary.Embedding)
		if !ok {
			logger.Debug("Skipping primary %s: no comparable embedding", primary.ID)
			continue
		}
		matches = append(matches, domain.SimilarThought{PrimaryThought: *primary, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// cosineSimilarity reports false when the vectors cannot be compared.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
