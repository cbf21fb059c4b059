package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where thoughts, quotas and cached results live.
type StorageBackend string

// Available storage backends.
const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EvidenceSettings holds web search provider configuration.
type EvidenceSettings struct {
	// Provider is the evidence search provider, currently "brave".
	Provider string

	// APIKey is the provider subscription token.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// MaxResults caps evidence items per query.
	MaxResults int
}

// IsConfigured returns true if an evidence provider is set up.
func (e EvidenceSettings) IsConfigured() bool {
	return e.Provider != "" && e.APIKey != ""
}

// PlatformSettings holds credentials for the platform searchers.
// A searcher whose credential is empty reports that it cannot handle inputs.
type PlatformSettings struct {
	// Enabled lists searcher names to register. Empty means all.
	Enabled []string

	YouTubeAPIKey      string
	TwitterBearerToken string
	NewsAPIKey         string
	GitHubToken        string
}

// IsEnabled returns true if the named platform should be registered.
func (p PlatformSettings) IsEnabled(name string) bool {
	if len(p.Enabled) == 0 {
		return true
	}
	for _, n := range p.Enabled {
		if n == name {
			return true
		}
	}
	return false
}

// QuotaSettings bounds trace searches per user.
type QuotaSettings struct {
	// Limit is the number of searches allowed per window.
	Limit int

	// Window is the rolling window length.
	Window time.Duration
}

// RateLimitSettings bounds platform searches per user.
type RateLimitSettings struct {
	// Requests is the number of requests allowed per window.
	Requests int

	// Window is the period over which Requests refill.
	Window time.Duration

	// Burst is the number of requests allowed back to back.
	Burst int
}

// CacheSettings bounds the search result cache.
type CacheSettings struct {
	TTL        time.Duration
	MaxEntries int
}

// StorageSettings selects and configures the storage backend.
type StorageSettings struct {
	Backend StorageBackend

	// Path is the SQLite data directory. Empty means <config dir>/data.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ExtractionSettings configures the extraction strategies.
type ExtractionSettings struct {
	// MinContentLength is the minimum plain text length for articles and pages.
	MinContentLength int

	// Timeout bounds a single extraction.
	Timeout time.Duration

	// YtDlpPath is the video metadata tool binary.
	YtDlpPath string

	// BrowserRemoteURL connects to an existing browser instead of launching one.
	BrowserRemoteURL string

	// UserAgent is sent with article fetches.
	UserAgent string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM        LLMSettings
	Embedding  EmbeddingSettings
	Evidence   EvidenceSettings
	Platforms  PlatformSettings
	Quota      QuotaSettings
	RateLimit  RateLimitSettings
	Cache      CacheSettings
	Storage    StorageSettings
	Extraction ExtractionSettings
}

// Default limits.
const (
	DefaultQuotaLimit        = 20
	DefaultQuotaWindow       = 24 * time.Hour
	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Hour
	DefaultRateLimitBurst    = 3
	DefaultCacheTTL          = 24 * time.Hour
	DefaultCacheMaxEntries   = 10000
	DefaultExtractionTimeout = 60 * time.Second
	DefaultEvidenceResults   = 10
	DefaultSimilarThoughts   = 5
	DefaultUserAgent         = "Mozilla/5.0 (compatible; provena/1.0; +https://github.com/custodia-labs/provena)"
)

// DefaultAppSettings returns settings with sensible defaults.
// AI and evidence providers are left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Evidence: EvidenceSettings{
			Provider:   "brave",
			MaxResults: DefaultEvidenceResults,
		},
		Quota: QuotaSettings{
			Limit:  DefaultQuotaLimit,
			Window: DefaultQuotaWindow,
		},
		RateLimit: RateLimitSettings{
			Requests: DefaultRateLimitRequests,
			Window:   DefaultRateLimitWindow,
			Burst:    DefaultRateLimitBurst,
		},
		Cache: CacheSettings{
			TTL:        DefaultCacheTTL,
			MaxEntries: DefaultCacheMaxEntries,
		},
		Storage: StorageSettings{
			Backend:   StorageSQLite,
			RedisAddr: "localhost:6379",
		},
		Extraction: ExtractionSettings{
			MinContentLength: MinContentLength,
			Timeout:          DefaultExtractionTimeout,
			YtDlpPath:        "yt-dlp",
			UserAgent:        DefaultUserAgent,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
