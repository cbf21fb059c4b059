package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".provena", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test_key", "test_value"))

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("string_key", "hello world"))
	assert.Equal(t, "hello world", store.GetString("string_key"))

	// Non-existent key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, "", store.GetString("int_key"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, 42, store.GetInt("int_key"))

	assert.Equal(t, 0, store.GetInt("nonexistent"))

	require.NoError(t, store.Set("numeric_string", " 17 "))
	assert.Equal(t, 17, store.GetInt("numeric_string"))

	require.NoError(t, store.Set("string_key", "not an int"))
	assert.Equal(t, 0, store.GetInt("string_key"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("bool_key", true))
	assert.True(t, store.GetBool("bool_key"))

	require.NoError(t, store.Set("bool_key_false", false))
	assert.False(t, store.GetBool("bool_key_false"))

	assert.False(t, store.GetBool("nonexistent"))

	require.NoError(t, store.Set("string_key", "true"))
	assert.True(t, store.GetBool("string_key"))

	require.NoError(t, store.Set("garbage", "yes please"))
	assert.False(t, store.GetBool("garbage"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("quota.window", "24h"))
	require.NoError(t, store.Set("cache.ttl", 90))
	require.NoError(t, store.Set("rate_limit.window", 30*time.Minute))
	require.NoError(t, store.Set("bad", "soon"))

	// Reload so values come back with their TOML types
	reloaded, err := NewConfigStore(filepath.Dir(store.Path()))
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, reloaded.GetDuration("quota.window"))
	assert.Equal(t, 90*time.Second, reloaded.GetDuration("cache.ttl"))
	assert.Equal(t, 30*time.Minute, reloaded.GetDuration("rate_limit.window"))
	assert.Zero(t, reloaded.GetDuration("bad"))
	assert.Zero(t, reloaded.GetDuration("nonexistent"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("platforms.enabled", []string{"reddit", "web"}))
	assert.Equal(t, []string{"reddit", "web"}, store.GetStringSlice("platforms.enabled"))

	reloaded, err := NewConfigStore(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Equal(t, []string{"reddit", "web"}, reloaded.GetStringSlice("platforms.enabled"))

	require.NoError(t, store.Set("csv", "a, b,,c"))
	assert.Equal(t, []string{"a", "b", "c"}, store.GetStringSlice("csv"))

	assert.Nil(t, store.GetStringSlice("nonexistent"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set("llm.provider", "openai"))
	require.NoError(t, store1.Set("quota.limit", 42))
	require.NoError(t, store1.Set("quota.enabled", true))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store2.GetString("llm.provider"))
	assert.Equal(t, 42, store2.GetInt("quota.limit"))
	assert.True(t, store2.GetBool("quota.enabled"))
}

func TestConfigStore_WritesSectionTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("evidence.api_key", "token"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[evidence]")
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"top":          1,
		"llm.provider": "openai",
		"llm.model":    "gpt-4o-mini",
	})

	assert.Equal(t, 1, nested["top"])
	assert.Equal(t, map[string]any{"provider": "openai", "model": "gpt-4o-mini"}, nested["llm"])
	assert.Equal(t, map[string]any{
		"top":          1,
		"llm.provider": "openai",
		"llm.model":    "gpt-4o-mini",
	}, flattenMap(nested, ""))
}

func TestConfigStore_EnvOverride(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("rate_limit.requests", 10))
	require.NoError(t, store.Set("llm.api_key", "from-file"))

	t.Setenv("PROVENA_RATE_LIMIT_REQUESTS", "25")
	t.Setenv("PROVENA_LLM_API_KEY", "from-env")
	t.Setenv("PROVENA_PLATFORMS_ENABLED", "reddit,github")

	assert.Equal(t, 25, store.GetInt("rate_limit.requests"))
	assert.Equal(t, "from-env", store.GetString("llm.api_key"))
	assert.Equal(t, []string{"reddit", "github"}, store.GetStringSlice("platforms.enabled"))

	// Overrides are never written back
	require.NoError(t, store.Save())
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "from-file")
	assert.NotContains(t, string(data), "from-env")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "PROVENA_QUOTA_LIMIT", EnvName("quota.limit"))
	assert.Equal(t, "PROVENA_RATE_LIMIT_WINDOW", EnvName("rate_limit.window"))
	assert.Equal(t, "PROVENA_PLATFORMS_YOUTUBE_API_KEY", EnvName("platforms.youtube.api_key"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetBool(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
}

// TestNewConfigStore_MkdirAllError tests error handling when directory creation fails
func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

// TestNewConfigStore_LoadCorruptedFile tests error handling when loading corrupted TOML
func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["manual_key"] = "manual_value"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "manual_value", store2.GetString("manual_key"))
}

// TestConfigStore_Save_WriteFileError tests error handling when WriteFile fails
func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
