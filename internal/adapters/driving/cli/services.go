package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/provena/internal/adapters/driven/ai"
	"github.com/custodia-labs/provena/internal/adapters/driven/config/file"
	"github.com/custodia-labs/provena/internal/adapters/driven/extract"
	"github.com/custodia-labs/provena/internal/adapters/driven/readability"
	"github.com/custodia-labs/provena/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/provena/internal/adapters/driven/storage/redisstore"
	"github.com/custodia-labs/provena/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/core/services"
	"github.com/custodia-labs/provena/internal/logger"
	ghplatform "github.com/custodia-labs/provena/internal/platforms/github"
	"github.com/custodia-labs/provena/internal/platforms/news"
	"github.com/custodia-labs/provena/internal/platforms/reddit"
	"github.com/custodia-labs/provena/internal/platforms/twitter"
	"github.com/custodia-labs/provena/internal/platforms/web"
	"github.com/custodia-labs/provena/internal/platforms/youtube"
)

// Services used by the commands. Tests replace them with fakes.
var (
	settingsService  driving.SettingsService
	extractionRouter driving.ExtractionRouter
	traceService     driving.TraceService
	searchService    driving.SearchService
	historyService   driving.HistoryService
	quotaService     driving.QuotaService
	platformRegistry driving.PlatformRegistry
	promptStore      *file.PromptStore

	servicesReady bool
	closers       []func()
)

// storageSet is the per-backend bundle of stores.
type storageSet struct {
	kv      driven.KeyValueStore
	quota   driven.QuotaStore
	cache   driven.ResultCache
	limiter driven.RateLimiter
	history driven.HistoryStore
	close   func()
}

// initServices builds the service graph from the persisted settings.
func initServices(ctx context.Context) error {
	if servicesReady {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	baseDir, err := resolveConfigDir(configDir)
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	stores, err := openStorage(ctx, settings, baseDir)
	if err != nil {
		return err
	}
	closers = append(closers, stores.close)

	providers := ai.Init(settings, false)
	closers = append(closers, providers.Close)

	promptStore, err = file.NewPromptStore(filepath.Join(baseDir, "prompts"), services.DefaultPrompts())
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	quota := services.NewQuotaService(stores.quota, settings.Quota)
	quotaService = quota

	trace := services.NewTraceService(
		providers.LLMService,
		providers.EmbeddingService,
		providers.Evidence,
		stores.kv,
		quota,
		services.TraceConfig{EvidenceResults: settings.Evidence.MaxResults},
	)
	trace.SetPromptStore(promptStore)
	trace.SetHistoryStore(stores.history)
	traceService = trace

	registry := newPlatformRegistry(ctx, settings, providers.Evidence)
	platformRegistry = registry

	search := services.NewSearchService(registry, stores.cache, stores.limiter)
	search.SetHistoryStore(stores.history)
	search.SetQuotaService(quota)
	searchService = search

	historyService = services.NewHistoryService(stores.history)

	router, closeRouter := newExtractionRouter(settings.Extraction)
	extractionRouter = router
	closers = append(closers, closeRouter)

	servicesReady = true
	logger.Debug("services ready: storage=%s platforms=%v", settings.Storage.Backend, registry.Platforms())
	return nil
}

// closeServices releases everything initServices opened, newest first.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
	servicesReady = false
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".provena"), nil
}

// openStorage opens the configured backend. SQLite has no rate limiter
// table, so it pairs with the in-memory token buckets.
func openStorage(ctx context.Context, settings *domain.AppSettings, baseDir string) (*storageSet, error) {
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		return &storageSet{
			kv:      memory.NewKeyValueStore(),
			quota:   memory.NewQuotaStore(),
			cache:   memory.NewResultCache(settings.Cache),
			limiter: memory.NewRateLimiter(settings.RateLimit),
			history: memory.NewHistoryStore(),
			close:   func() {},
		}, nil

	case domain.StorageRedis:
		store, err := redisstore.NewStore(ctx, settings.Storage)
		if err != nil {
			return nil, fmt.Errorf("opening redis: %w", err)
		}
		return &storageSet{
			kv:      store.KeyValueStore(),
			quota:   store.QuotaStore(),
			cache:   store.ResultCache(settings.Cache),
			limiter: store.RateLimiter(settings.RateLimit),
			history: store.HistoryStore(),
			close:   func() { _ = store.Close() },
		}, nil

	default:
		dataDir := settings.Storage.Path
		if dataDir == "" {
			dataDir = filepath.Join(baseDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return &storageSet{
			kv:      store.KeyValueStore(),
			quota:   store.QuotaStore(),
			cache:   store.ResultCache(settings.Cache),
			limiter: memory.NewRateLimiter(settings.RateLimit),
			history: store.HistoryStore(),
			close:   func() { _ = store.Close() },
		}, nil
	}
}

// newPlatformRegistry registers every enabled platform searcher.
// Searchers without credentials stay registered and decline inputs.
func newPlatformRegistry(
	ctx context.Context, settings *domain.AppSettings, evidence driven.EvidenceSearcher,
) *services.PlatformRegistry {
	p := settings.Platforms
	candidates := []driven.PlatformSearcher{
		reddit.New(reddit.Config{UserAgent: settings.Extraction.UserAgent}),
		youtube.New(youtube.Config{APIKey: p.YouTubeAPIKey}),
		twitter.New(twitter.Config{BearerToken: p.TwitterBearerToken}),
		news.New(news.Config{APIKey: p.NewsAPIKey}),
		ghplatform.New(ghplatform.NewClient(ctx, p.GitHubToken)),
		web.New(evidence, settings.Evidence.MaxResults),
	}

	registry := services.NewPlatformRegistry()
	for _, s := range candidates {
		if p.IsEnabled(s.Platform()) {
			registry.Register(s)
		}
	}
	return registry
}

// newExtractionRouter builds the video, article, browser strategy chain.
func newExtractionRouter(cfg domain.ExtractionSettings) (*services.ExtractionRouter, func()) {
	parser := readability.New()
	renderer := extract.NewRodRenderer(extract.RodConfig{
		RemoteURL: cfg.BrowserRemoteURL,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	})

	router := services.NewExtractionRouter(
		extract.NewVideoExtractor(extract.NewYtDlp(cfg.YtDlpPath, cfg.Timeout)),
		extract.NewArticleExtractor(
			extract.NewHTTPFetcher(extract.FetcherConfig{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}),
			parser,
			cfg.MinContentLength,
		),
		extract.NewBrowserExtractor(renderer, parser, cfg.MinContentLength),
	)

	return router, func() {
		if err := renderer.Close(); err != nil {
			logger.Debug("closing browser: %v", err)
		}
	}
}
