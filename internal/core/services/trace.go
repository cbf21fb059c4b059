package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure TraceService implements the interface.
var _ driving.TraceService = (*TraceService)(nil)

// Pipeline stage names used in ProviderError.
const (
	stageExtraction     = "thought extraction"
	stageEmbedding      = "embedding"
	stageRanking        = "ranking"
	stageEvidence       = "evidence search"
	stageClassification = "classification"
	stagePersistence    = "persistence"
)

const thoughtKeyPrefix = "thought:"

// primaryKey is the store key of a primary thought.
func primaryKey(id string) string {
	return thoughtKeyPrefix + id
}

// secondaryKey is the store key of the secondary set of a primary thought.
func secondaryKey(id string) string {
	return thoughtKeyPrefix + id + ":secondary"
}

// TraceConfig tunes the trace pipeline.
type TraceConfig struct {
	// EvidenceResults caps evidence items attached to the primary thought.
	EvidenceResults int

	// MaxThoughts caps the thoughts kept from extraction. Zero keeps all.
	MaxThoughts int
}

// TraceService turns normalised content into a persisted provenance trace.
type TraceService struct {
	llm      driven.LLMService
	embedder driven.EmbeddingService
	evidence driven.EvidenceSearcher
	store    driven.KeyValueStore
	quota    *QuotaService
	history  driven.HistoryStore
	prompts  driven.PromptStore
	cfg      TraceConfig
	newID    func() string

	// indexMu serialises read-modify-write of the primary index.
	indexMu sync.Mutex
}

// NewTraceService creates a trace service.
// The AI and evidence services may be nil; TraceSearch then fails with the
// matching unavailable error.
func NewTraceService(
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	evidence driven.EvidenceSearcher,
	store driven.KeyValueStore,
	quota *QuotaService,
	cfg TraceConfig,
) *TraceService {
	if cfg.EvidenceResults <= 0 {
		cfg.EvidenceResults = domain.DefaultEvidenceResults
	}
	return &TraceService{
		llm:      llm,
		embedder: embedder,
		evidence: evidence,
		store:    store,
		quota:    quota,
		cfg:      cfg,
		newID:    uuid.NewString,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses built-in prompts.
func (s *TraceService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetHistoryStore enables search history.
func (s *TraceService) SetHistoryStore(store driven.HistoryStore) {
	s.history = store
}

// TraceSearch runs the staged pipeline for one user.
func (s *TraceService) TraceSearch(
	ctx context.Context, userID string, content *domain.NormalizedContent,
) (*domain.TraceResult, error) {
	logger.Section("Trace Pipeline")

	if content == nil || strings.TrimSpace(content.PlainText) == "" {
		return nil, fmt.Errorf("%w: content has no text", domain.ErrInvalidInput)
	}
	if err := s.checkProviders(); err != nil {
		return nil, err
	}

	// 1. Quota. No provider is called when the user is over quota.
	if err := s.quota.Consume(ctx, userID, 1); err != nil {
		return nil, err
	}

	// 2. Thought extraction.
	thoughts, err := s.extractThoughts(ctx, content.PlainText)
	if err != nil {
		return nil, domain.NewProviderError(stageExtraction, err)
	}
	logger.Debug("Extracted %d thoughts", len(thoughts))

	// 3. Embeddings, one call per thought, all concurrent.
	if err := s.embedThoughts(ctx, thoughts); err != nil {
		return nil, domain.NewProviderError(stageEmbedding, err)
	}

	// 4. Ranking.
	if err := s.rankThoughts(ctx, thoughts); err != nil {
		return nil, domain.NewProviderError(stageRanking, err)
	}
	best := primaryIndex(thoughts)
	primary := domain.PrimaryThought{Thought: thoughts[best]}
	secondary := secondaryThoughts(thoughts, best)
	logger.Info("Primary thought (score %.1f): %s", primary.Score, primary.Content)

	// 5. Evidence for the primary thought only.
	logger.Debug("Searching evidence via %s", s.evidence.Name())
	evidence, err := s.evidence.Search(ctx, primary.Content, s.cfg.EvidenceResults)
	if err != nil {
		return nil, domain.NewProviderError(stageEvidence, err)
	}
	primary.Evidence = evidence
	logger.Debug("Evidence items: %d", len(evidence))

	// 6. Classification.
	verdict, err := s.classify(ctx, primary.Content, evidence)
	if err != nil {
		return nil, domain.NewProviderError(stageClassification, err)
	}
	primary.Origin = verdict.Origin
	primary.Viral = verdict.Viral

	// 7. Persistence.
	if err := s.persist(ctx, &primary, secondary); err != nil {
		return nil, domain.NewProviderError(stagePersistence, err)
	}

	s.recordHistory(ctx, userID, content, primary.ID)

	// 8. Result.
	return &domain.TraceResult{
		PrimaryThought: primary,
		SecondaryCount: len(secondary),
	}, nil
}

func (s *TraceService) checkProviders() error {
	switch {
	case s.llm == nil:
		return domain.ErrLLMUnavailable
	case s.embedder == nil:
		return domain.ErrEmbeddingUnavailable
	case s.evidence == nil:
		return domain.ErrEvidenceUnavailable
	case s.store == nil || s.quota == nil:
		return errors.New("trace: store and quota are required")
	}
	return nil
}

func (s *TraceService) extractThoughts(ctx context.Context, text string) ([]domain.Thought, error) {
	out, err := s.llm.Complete(ctx, s.loadPrompt(driven.PromptThoughtExtraction), text,
		driven.CompletionOptions{Temperature: 0.2, MaxTokens: 800})
	if err != nil {
		return nil, err
	}
	claims, err := parseThoughtList(out)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxThoughts > 0 && len(claims) > s.cfg.MaxThoughts {
		claims = claims[:s.cfg.MaxThoughts]
	}

	thoughts := make([]domain.Thought, len(claims))
	for i, c := range claims {
		thoughts[i] = domain.Thought{ID: s.newID(), Content: c}
	}
	return thoughts, nil
}

// embedThoughts fills every thought's embedding. Each goroutine writes only
// its own slice element.
func (s *TraceService) embedThoughts(ctx context.Context, thoughts []domain.Thought) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range thoughts {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, thoughts[i].Content)
			if err != nil {
				return fmt.Errorf("thought %d: %w", i+1, err)
			}
			thoughts[i].Embedding = vec
			return nil
		})
	}
	return g.Wait()
}

func (s *TraceService) rankThoughts(ctx context.Context, thoughts []domain.Thought) error {
	out, err := s.llm.Complete(ctx, s.loadPrompt(driven.PromptThoughtRanking), numberedList(thoughts),
		driven.CompletionOptions{Temperature: 0, MaxTokens: 200})
	if err != nil {
		return err
	}
	scores, err := parseScores(out, len(thoughts))
	if err != nil {
		return err
	}
	for i := range thoughts {
		thoughts[i].Score = scores[i]
	}
	return nil
}

func (s *TraceService) classify(
	ctx context.Context, claim string, evidence []domain.EvidenceItem,
) (domain.Classification, error) {
	out, err := s.llm.Complete(ctx, s.loadPrompt(driven.PromptClassification), evidencePrompt(claim, evidence),
		driven.CompletionOptions{Temperature: 0, MaxTokens: 200, JSONMode: true})
	if err != nil {
		return domain.Classification{}, err
	}
	return parseClassification(out)
}

// secondaryThoughts returns all thoughts except the primary, by descending
// score with extraction order breaking ties.
func secondaryThoughts(thoughts []domain.Thought, primary int) []domain.Thought {
	out := make([]domain.Thought, 0, len(thoughts)-1)
	for i, t := range thoughts {
		if i != primary {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// persist writes the primary thought then its secondary set. If the set
// cannot be written the primary is removed again.
func (s *TraceService) persist(ctx context.Context, primary *domain.PrimaryThought, secondary []domain.Thought) error {
	primaryJSON, err := json.Marshal(primary)
	if err != nil {
		return fmt.Errorf("encode primary: %w", err)
	}
	values := make([][]byte, len(secondary))
	for i := range secondary {
		if values[i], err = json.Marshal(secondary[i]); err != nil {
			return fmt.Errorf("encode secondary: %w", err)
		}
	}

	if err := s.store.Put(ctx, primaryKey(primary.ID), primaryJSON); err != nil {
		return fmt.Errorf("store primary: %w", err)
	}
	if err := s.store.PutSet(ctx, secondaryKey(primary.ID), values); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), primaryKey(primary.ID)); delErr != nil {
			logger.Warn("Rollback of primary %s failed: %v", primary.ID, delErr)
		}
		return fmt.Errorf("store secondary set: %w", err)
	}
	// The trace is complete without the index entry; it is only missed by
	// similarity lookups.
	if err := s.indexPrimary(ctx, primary.ID); err != nil {
		logger.Warn("Failed to index primary %s: %v", primary.ID, err)
	}
	logger.Debug("Persisted primary %s with %d secondary thoughts", primary.ID, len(secondary))
	return nil
}

func (s *TraceService) recordHistory(ctx context.Context, userID string, content *domain.NormalizedContent, ref string) {
	if s.history == nil {
		return
	}
	query := content.URL
	if query == "" {
		query = truncate(content.PlainText, 200)
	}
	entry := domain.HistoryEntry{
		ID:        s.newID(),
		UserID:    userID,
		Kind:      domain.HistoryKindTrace,
		Query:     query,
		ResultRef: ref,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		logger.Warn("Failed to record history: %v", err)
	}
}

// GetPrimaryThought loads a persisted primary thought.
func (s *TraceService) GetPrimaryThought(ctx context.Context, primaryID string) (*domain.PrimaryThought, error) {
	raw, err := s.store.Get(ctx, primaryKey(primaryID))
	if err != nil {
		return nil, fmt.Errorf("get primary thought: %w", err)
	}
	var p domain.PrimaryThought
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode primary thought: %w", err)
	}
	return &p, nil
}

// GetSecondaryThoughts loads the secondary set stored for a primary thought.
func (s *TraceService) GetSecondaryThoughts(ctx context.Context, primaryID string) ([]domain.Thought, error) {
	raw, err := s.store.GetSet(ctx, secondaryKey(primaryID))
	if err != nil {
		return nil, fmt.Errorf("get secondary thoughts: %w", err)
	}
	thoughts := make([]domain.Thought, 0, len(raw))
	for _, r := range raw {
		var t domain.Thought
		if err := json.Unmarshal(r, &t); err != nil {
			return nil, fmt.Errorf("decode secondary thought: %w", err)
		}
		thoughts = append(thoughts, t)
	}
	return thoughts, nil
}

// LegacySearch runs a single evidence query over free text.
// Results keep provider order and are scored by rank.
func (s *TraceService) LegacySearch(ctx context.Context, query domain.LegacyQuery) ([]domain.LegacyResult, error) {
	logger.Section("Legacy Search")

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
	}
	limit := query.MaxResults
	if limit == 0 {
		limit = domain.DefaultLegacyMaxResults
	}
	if limit < 1 || limit > domain.MaxLegacyMaxResults {
		return nil, fmt.Errorf("%w: max results must be between 1 and %d",
			domain.ErrInvalidInput, domain.MaxLegacyMaxResults)
	}
	if s.evidence == nil {
		return nil, domain.ErrEvidenceUnavailable
	}

	var items []driven.DatedItem
	if dated, ok := s.evidence.(driven.DatedEvidence); ok {
		var err error
		if items, err = dated.SearchDated(ctx, text, limit); err != nil {
			return nil, domain.NewProviderError(stageEvidence, err)
		}
	} else {
		plain, err := s.evidence.Search(ctx, text, limit)
		if err != nil {
			return nil, domain.NewProviderError(stageEvidence, err)
		}
		for _, p := range plain {
			items = append(items, driven.DatedItem{EvidenceItem: p})
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}

	results := make([]domain.LegacyResult, 0, len(items))
	for i, it := range items {
		r := domain.LegacyResult{
			Title:         it.Title,
			URL:           it.URL,
			Platform:      platformFromURL(it.URL),
			ViralityScore: float64(len(items)-i) / float64(len(items)),
			Snippet:       it.Snippet,
		}
		if !it.PublishedAt.IsZero() {
			ts := it.PublishedAt
			r.Timestamp = &ts
		}
		results = append(results, r)
	}
	logger.Debug("Legacy results: %d", len(results))
	return results, nil
}

// Search dispatches on the request's explicit mode.
func (s *TraceService) Search(ctx context.Context, req domain.TraceRequest) (*domain.TraceResponse, error) {
	switch req.Mode {
	case domain.TraceModePipeline:
		res, err := s.TraceSearch(ctx, req.UserID, req.Content)
		if err != nil {
			return nil, err
		}
		return &domain.TraceResponse{Mode: req.Mode, Trace: res}, nil
	case domain.TraceModeLegacy:
		res, err := s.LegacySearch(ctx, req.Legacy)
		if err != nil {
			return nil, err
		}
		return &domain.TraceResponse{Mode: req.Mode, Legacy: res}, nil
	default:
		return nil, fmt.Errorf("%w: unknown trace mode %q", domain.ErrInvalidInput, req.Mode)
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *TraceService) loadPrompt(name string) string {
	if s.prompts != nil {
		if p, err := s.prompts.Load(name); err == nil && strings.TrimSpace(p) != "" {
			return p
		}
	}
	return defaultPrompts[name]
}

// platformFromURL names a result's platform after its host, "Web" when unknown.
func platformFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "Web"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
