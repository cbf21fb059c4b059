package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, platform credentials, quotas, storage
and extraction options.

Every key can also be overridden with an environment variable, for example
PROVENA_QUOTA_LIMIT overrides quota.limit.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Durations use Go syntax (90s, 24h). Lists are comma separated.
Run 'provena settings keys' to list the available keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
	},
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to rank claims.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used to extract, score and classify claims.`,
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().String("provider", "", "provider name (prompted when empty)")
		c.Flags().String("model", "", "model name (default per provider)")
		c.Flags().String("api-key", "", "API key for cloud providers (prompted when empty)")
		c.Flags().Bool("no-validate", false, "skip the connectivity check")
	}

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Evidence]")
	cmd.Printf("  Provider: %s\n", settings.Evidence.Provider)
	cmd.Printf("  API Key: %s\n", secretStatus(settings.Evidence.APIKey))
	cmd.Printf("  Max Results: %d\n", settings.Evidence.MaxResults)
	cmd.Println()

	cmd.Println("[Platforms]")
	if len(settings.Platforms.Enabled) == 0 {
		cmd.Println("  Enabled: all")
	} else {
		cmd.Printf("  Enabled: %s\n", strings.Join(settings.Platforms.Enabled, ", "))
	}
	cmd.Printf("  YouTube API Key: %s\n", secretStatus(settings.Platforms.YouTubeAPIKey))
	cmd.Printf("  X Bearer Token: %s\n", secretStatus(settings.Platforms.TwitterBearerToken))
	cmd.Printf("  NewsAPI Key: %s\n", secretStatus(settings.Platforms.NewsAPIKey))
	cmd.Printf("  GitHub Token: %s\n", secretStatus(settings.Platforms.GitHubToken))
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  Quota: %d traces per %s\n", settings.Quota.Limit, settings.Quota.Window)
	cmd.Printf("  Rate Limit: %d searches per %s (burst %d)\n",
		settings.RateLimit.Requests, settings.RateLimit.Window, settings.RateLimit.Burst)
	cmd.Printf("  Cache: %s, %d entries\n", settings.Cache.TTL, settings.Cache.MaxEntries)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	switch settings.Storage.Backend {
	case domain.StorageRedis:
		cmd.Printf("  Address: %s (db %d)\n", settings.Storage.RedisAddr, settings.Storage.RedisDB)
	case domain.StorageSQLite:
		if settings.Storage.Path != "" {
			cmd.Printf("  Path: %s\n", settings.Storage.Path)
		}
	}
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Min Content Length: %d\n", settings.Extraction.MinContentLength)
	cmd.Printf("  Timeout: %s\n", settings.Extraction.Timeout)
	cmd.Printf("  yt-dlp: %s\n", settings.Extraction.YtDlpPath)
	if settings.Extraction.BrowserRemoteURL != "" {
		cmd.Printf("  Browser: %s\n", settings.Extraction.BrowserRemoteURL)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'provena settings llm' and 'provena settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}

	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("embedding provider unreachable: %w", err)
	}
	cmd.Println("OK")

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("LLM provider unreachable: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	choice, err := chooseProvider(cmd, "Embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !choice.skipValidate {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	choice, err := chooseProvider(cmd, "LLM", domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !choice.skipValidate {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateLLMConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

type providerChoice struct {
	provider     domain.AIProvider
	model        string
	apiKey       string
	skipValidate bool
}

// chooseProvider reads the provider flags, prompting on the command's
// input for anything left empty.
func chooseProvider(
	cmd *cobra.Command, label string, providers []domain.AIProvider, models map[domain.AIProvider]string,
) (providerChoice, error) {
	var choice providerChoice
	flags := cmd.Flags()
	// Flags are registered in init, so the lookups cannot fail.
	name, _ := flags.GetString("provider")
	choice.model, _ = flags.GetString("model")
	choice.apiKey, _ = flags.GetString("api-key")
	choice.skipValidate, _ = flags.GetBool("no-validate")

	reader := bufio.NewReader(cmd.InOrStdin())

	if name == "" {
		cmd.Printf("Select %s Provider\n", label)
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		idx := parseChoice(readLine(reader), len(providers), 1)
		choice.provider = providers[idx-1]
	} else {
		choice.provider = domain.AIProvider(name)
		if !containsProvider(providers, choice.provider) {
			return choice, fmt.Errorf("%w: %s provider %q", domain.ErrInvalidInput, strings.ToLower(label), name)
		}
	}

	if choice.model == "" {
		choice.model = models[choice.provider]
	}

	if choice.provider.RequiresAPIKey() && choice.apiKey == "" {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if choice.apiKey == "" {
			return choice, errors.New("API key is required for this provider")
		}
	}
	return choice, nil
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func secretStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
