package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEvidenceProvider   = "evidence.provider"
	keyEvidenceAPIKey     = "evidence.api_key"
	keyEvidenceBaseURL    = "evidence.base_url"
	keyEvidenceMax        = "evidence.max_results"
	keyPlatformsEnabled   = "platforms.enabled"
	keyYouTubeAPIKey      = "platforms.youtube_api_key"
	keyTwitterToken       = "platforms.twitter_bearer_token"
	keyNewsAPIKey         = "platforms.news_api_key"
	keyGitHubToken        = "platforms.github_token"
	keyQuotaLimit         = "quota.limit"
	keyQuotaWindow        = "quota.window"
	keyRateRequests       = "rate_limit.requests"
	keyRateWindow         = "rate_limit.window"
	keyRateBurst          = "rate_limit.burst"
	keyCacheTTL           = "cache.ttl"
	keyCacheMaxEntries    = "cache.max_entries"
	keyStorageBackend     = "storage.backend"
	keyStoragePath        = "storage.path"
	keyRedisAddr          = "storage.redis_addr"
	keyRedisPassword      = "storage.redis_password"
	keyRedisDB            = "storage.redis_db"
	keyMinContentLength   = "extraction.min_content_length"
	keyExtractionTimeout  = "extraction.timeout"
	keyYtDlpPath          = "extraction.yt_dlp_path"
	keyBrowserRemoteURL   = "extraction.browser_remote_url"
	keyExtractionUA       = "extraction.user_agent"
	defaultOllamaEndpoint = "http://localhost:11434"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindDuration
	kindList
)

// knownKeys maps every settable key to its value type.
var knownKeys = map[string]valueKind{
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,
	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString, keyEmbedAPIKey: kindString,
	keyEvidenceProvider: kindString, keyEvidenceAPIKey: kindString, keyEvidenceBaseURL: kindString, keyEvidenceMax: kindInt,
	keyPlatformsEnabled: kindList, keyYouTubeAPIKey: kindString, keyTwitterToken: kindString,
	keyNewsAPIKey: kindString, keyGitHubToken: kindString,
	keyQuotaLimit: kindInt, keyQuotaWindow: kindDuration,
	keyRateRequests: kindInt, keyRateWindow: kindDuration, keyRateBurst: kindInt,
	keyCacheTTL: kindDuration, keyCacheMaxEntries: kindInt,
	keyStorageBackend: kindString, keyStoragePath: kindString,
	keyRedisAddr: kindString, keyRedisPassword: kindString, keyRedisDB: kindInt,
	keyMinContentLength: kindInt, keyExtractionTimeout: kindDuration, keyYtDlpPath: kindString,
	keyBrowserRemoteURL: kindString, keyExtractionUA: kindString,
}

// SettingKeys returns every settable key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Evidence: domain.EvidenceSettings{
			Provider:   s.getString(keyEvidenceProvider, d.Evidence.Provider),
			APIKey:     s.configStore.GetString(keyEvidenceAPIKey),
			BaseURL:    s.configStore.GetString(keyEvidenceBaseURL),
			MaxResults: s.getInt(keyEvidenceMax, d.Evidence.MaxResults),
		},
		Platforms: domain.PlatformSettings{
			Enabled:            s.configStore.GetStringSlice(keyPlatformsEnabled),
			YouTubeAPIKey:      s.configStore.GetString(keyYouTubeAPIKey),
			TwitterBearerToken: s.configStore.GetString(keyTwitterToken),
			NewsAPIKey:         s.configStore.GetString(keyNewsAPIKey),
			GitHubToken:        s.configStore.GetString(keyGitHubToken),
		},
		Quota: domain.QuotaSettings{
			Limit:  s.getInt(keyQuotaLimit, d.Quota.Limit),
			Window: s.getDuration(keyQuotaWindow, d.Quota.Window),
		},
		RateLimit: domain.RateLimitSettings{
			Requests: s.getInt(keyRateRequests, d.RateLimit.Requests),
			Window:   s.getDuration(keyRateWindow, d.RateLimit.Window),
			Burst:    s.getInt(keyRateBurst, d.RateLimit.Burst),
		},
		Cache: domain.CacheSettings{
			TTL:        s.getDuration(keyCacheTTL, d.Cache.TTL),
			MaxEntries: s.getInt(keyCacheMaxEntries, d.Cache.MaxEntries),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(d.Storage.Backend),
			Path:          s.configStore.GetString(keyStoragePath),
			RedisAddr:     s.getString(keyRedisAddr, d.Storage.RedisAddr),
			RedisPassword: s.configStore.GetString(keyRedisPassword),
			RedisDB:       s.configStore.GetInt(keyRedisDB),
		},
		Extraction: domain.ExtractionSettings{
			MinContentLength: s.getInt(keyMinContentLength, d.Extraction.MinContentLength),
			Timeout:          s.getDuration(keyExtractionTimeout, d.Extraction.Timeout),
			YtDlpPath:        s.getString(keyYtDlpPath, d.Extraction.YtDlpPath),
			BrowserRemoteURL: s.configStore.GetString(keyBrowserRemoteURL),
			UserAgent:        s.getString(keyExtractionUA, d.Extraction.UserAgent),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Empty secrets are not written so an existing key is never blanked.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key    string
		value  any
		secret bool
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, true},
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, true},
		{keyEvidenceProvider, settings.Evidence.Provider, false},
		{keyEvidenceAPIKey, settings.Evidence.APIKey, true},
		{keyEvidenceMax, settings.Evidence.MaxResults, false},
		{keyPlatformsEnabled, settings.Platforms.Enabled, false},
		{keyYouTubeAPIKey, settings.Platforms.YouTubeAPIKey, true},
		{keyTwitterToken, settings.Platforms.TwitterBearerToken, true},
		{keyNewsAPIKey, settings.Platforms.NewsAPIKey, true},
		{keyGitHubToken, settings.Platforms.GitHubToken, true},
		{keyQuotaLimit, settings.Quota.Limit, false},
		{keyQuotaWindow, settings.Quota.Window.String(), false},
		{keyRateRequests, settings.RateLimit.Requests, false},
		{keyRateWindow, settings.RateLimit.Window.String(), false},
		{keyRateBurst, settings.RateLimit.Burst, false},
		{keyCacheTTL, settings.Cache.TTL.String(), false},
		{keyCacheMaxEntries, settings.Cache.MaxEntries, false},
		{keyStorageBackend, settings.Storage.Backend.String(), false},
		{keyStoragePath, settings.Storage.Path, false},
		{keyRedisAddr, settings.Storage.RedisAddr, false},
		{keyRedisPassword, settings.Storage.RedisPassword, true},
		{keyMinContentLength, settings.Extraction.MinContentLength, false},
		{keyExtractionTimeout, settings.Extraction.Timeout.String(), false},
		{keyYtDlpPath, settings.Extraction.YtDlpPath, false},
	}

	for _, v := range values {
		if v.secret && v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set stores a single key after converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindDuration:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration like 24h", domain.ErrInvalidInput, key)
		}
		typed = d.String()
	case kindList:
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		typed = items
	default:
		typed = value
	}

	switch key {
	case keyLLMProvider, keyEmbedProvider:
		if value != "" && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend %q", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, typed)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaEndpoint
	}
	return current
}

// Validate checks if current settings can run a trace.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var problems []string
	if !settings.LLM.IsConfigured() {
		problems = append(problems, "LLM provider is not configured")
	}
	if !settings.Embedding.IsConfigured() {
		problems = append(problems, "embedding provider is not configured")
	}
	if !settings.Evidence.IsConfigured() {
		problems = append(problems, "evidence provider is not configured")
	}
	if settings.Quota.Limit <= 0 {
		problems = append(problems, "quota.limit must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
