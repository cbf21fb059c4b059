package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/provena/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/services"
)

var testFirstSeen = time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeSearcher reports one hit for every text or URL input.
type fakeSearcher struct{}

func (fakeSearcher) Platform() string { return "reddit" }

func (fakeSearcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return input.Kind != domain.InputKindMedia
}

func (fakeSearcher) Search(
	_ context.Context, _ domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	return &domain.PlatformSearchResult{
		Platform: "reddit",
		OriginalSource: &domain.OriginalSource{
			URL:             "https://reddit.com/r/test/first",
			Platform:        "reddit",
			Timestamp:       testFirstSeen,
			ConfidenceScore: analysis.Confidence,
		},
		ViralMoments: []domain.ViralMoment{{
			URL:       "https://reddit.com/r/test/first",
			Platform:  "reddit",
			Timestamp: testFirstSeen,
			Metrics:   &domain.EngagementMetrics{Likes: domain.Count(120), Shares: domain.Count(8)},
		}},
		ConfidenceScore: analysis.Confidence,
	}, nil
}

// fakeRouter returns fixed content, or err when set.
type fakeRouter struct {
	err error
}

func (r *fakeRouter) Extract(_ context.Context, rawURL string) (*domain.NormalizedContent, error) {
	if r.err != nil {
		return nil, r.err
	}
	published := testFirstSeen
	return &domain.NormalizedContent{
		Platform:    domain.PlatformArticle,
		URL:         rawURL,
		Title:       "Test Article",
		Author:      "Jane Reporter",
		PublishedAt: &published,
		PlainText:   "Scientists confirmed the claim in a peer reviewed study.",
		MediaURLs:   []string{"https://example.com/lead.jpg"},
	}, nil
}

// fakeTrace answers every call with canned thoughts.
type fakeTrace struct {
	lastRequest domain.TraceRequest
	lastSimilar string
	lastK       int
}

var testPrimary = domain.PrimaryThought{
	Thought:  domain.Thought{ID: "primary-1", Content: "Scientists confirmed the claim", Score: 0.91},
	Origin:   "peer reviewed study",
	Viral:    true,
	Evidence: []domain.EvidenceItem{{URL: "https://journal.example/paper", Title: "The Paper"}},
}

func (f *fakeTrace) TraceSearch(_ context.Context, _ string, _ *domain.NormalizedContent) (*domain.TraceResult, error) {
	return &domain.TraceResult{PrimaryThought: testPrimary, SecondaryCount: 2}, nil
}

func (f *fakeTrace) LegacySearch(_ context.Context, q domain.LegacyQuery) ([]domain.LegacyResult, error) {
	ts := testFirstSeen
	return []domain.LegacyResult{{
		Title:         "Legacy hit for " + q.Text,
		URL:           "https://news.example/story",
		Platform:      "news.example",
		Timestamp:     &ts,
		ViralityScore: 1,
		Snippet:       "snippet",
	}}, nil
}

func (f *fakeTrace) Search(ctx context.Context, req domain.TraceRequest) (*domain.TraceResponse, error) {
	f.lastRequest = req
	if req.Mode == domain.TraceModeLegacy {
		res, err := f.LegacySearch(ctx, req.Legacy)
		return &domain.TraceResponse{Mode: req.Mode, Legacy: res}, err
	}
	res, err := f.TraceSearch(ctx, req.UserID, req.Content)
	return &domain.TraceResponse{Mode: req.Mode, Trace: res}, err
}

func (f *fakeTrace) GetPrimaryThought(_ context.Context, id string) (*domain.PrimaryThought, error) {
	if id != testPrimary.ID {
		return nil, domain.ErrNotFound
	}
	p := testPrimary
	return &p, nil
}

func (f *fakeTrace) GetSecondaryThoughts(_ context.Context, id string) ([]domain.Thought, error) {
	if id != testPrimary.ID {
		return nil, domain.ErrNotFound
	}
	return []domain.Thought{
		{ID: "s-1", Content: "The study ran for ten years", Score: 0.6},
		{ID: "s-2", Content: "Funding came from a university", Score: 0.3},
	}, nil
}

func (f *fakeTrace) GetSimilarThoughts(_ context.Context, text string, k int) ([]domain.SimilarThought, error) {
	f.lastSimilar, f.lastK = text, k
	if text == "nothing traced" {
		return nil, nil
	}
	return []domain.SimilarThought{{PrimaryThought: testPrimary, Similarity: 0.87}}, nil
}

// setupTestServices replaces the package services with in-memory versions
// and returns a cleanup function that restores them.
func setupTestServices() func() {
	prevSettings, prevRouter, prevTrace := settingsService, extractionRouter, traceService
	prevSearch, prevHistory, prevQuota := searchService, historyService, quotaService
	prevRegistry, prevReady := platformRegistry, servicesReady

	history := memory.NewHistoryStore()
	registry := services.NewPlatformRegistry(fakeSearcher{})
	search := services.NewSearchService(
		registry,
		memory.NewResultCache(domain.CacheSettings{TTL: time.Hour, MaxEntries: 10}),
		memory.NewRateLimiter(domain.RateLimitSettings{Requests: 10, Window: time.Hour, Burst: 3}),
	)
	search.SetHistoryStore(history)

	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	extractionRouter = &fakeRouter{}
	traceService = &fakeTrace{}
	searchService = search
	historyService = services.NewHistoryService(history)
	quotaService = services.NewQuotaService(memory.NewQuotaStore(), domain.QuotaSettings{Limit: 5, Window: time.Hour})
	platformRegistry = registry
	servicesReady = true

	return func() {
		settingsService, extractionRouter, traceService = prevSettings, prevRouter, prevTrace
		searchService, historyService, quotaService = prevSearch, prevHistory, prevQuota
		platformRegistry, servicesReady = prevRegistry, prevReady
		resetFlags()
	}
}

// resetFlags restores flag variables that earlier commands may have set.
func resetFlags() {
	extractJSON, extractFull = false, false
	traceJSON, traceUser = false, defaultUser()
	searchJSON, searchKind, searchUser = false, "", ""
	legacyJSON, legacyMax = false, domain.DefaultLegacyMaxResults
	thoughtsJSON, versionJSON = false, false
	similarJSON, similarLimit = false, domain.DefaultSimilarThoughts
	tuiUser = defaultUser()
	historyJSON, historyLimit, historyUser, quotaUser = false, 20, defaultUser(), defaultUser()
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

// executeCommand runs rootCmd with args and returns its combined output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
