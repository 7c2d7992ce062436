package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

// unsetForTest clears key for the duration of the test and restores it after.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 54.687157, cfg.Search.Lat, 1e-9)
	assert.InDelta(t, 25.279652, cfg.Search.Lng, 1e-9)
	assert.Equal(t, 10000, cfg.Search.RadiusM)
	assert.Equal(t, "cafe", cfg.Search.Type)
	assert.Equal(t, "coffee", cfg.Search.Keyword)
	assert.Equal(t, 100, cfg.Search.MaxResults)
	assert.InDelta(t, 2.0, cfg.Search.PageDelaySecs, 0.001)
	assert.Equal(t, 5, cfg.Photos.MaxPerPlace)
	assert.Equal(t, 1200, cfg.Photos.MaxWidth)
	assert.Equal(t, "auto", cfg.Storage.Region)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 1000, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.5, cfg.AI.Temperature, 0.001)
	assert.Equal(t, "0 0 * * 0", cfg.Schedule.Cron)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
search:
  keyword: specialty coffee
  max_results: 20
photos:
  max_per_place: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "specialty coffee", cfg.Search.Keyword)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 3, cfg.Photos.MaxPerPlace)
	// Defaults still apply for unset values
	assert.Equal(t, 1200, cfg.Photos.MaxWidth)
	assert.Equal(t, "cafe", cfg.Search.Type)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("COFFEE_STORE_DRIVER", "postgres")
	t.Setenv("COFFEE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOnlyKeys(t *testing.T) {
	chdirTemp(t)

	t.Setenv("COFFEE_GOOGLE_KEY", "AIza-test")
	t.Setenv("COFFEE_STORE_DATABASE_URL", "postgres://localhost/coffee")
	t.Setenv("COFFEE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "AIza-test", cfg.Google.Key)
	assert.Equal(t, "postgres://localhost/coffee", cfg.Store.DatabaseURL)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadDotEnvFiles(t *testing.T) {
	dir := chdirTemp(t)
	unsetForTest(t, "COFFEE_GOOGLE_KEY")
	unsetForTest(t, "COFFEE_AI_OPENAI_KEY")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("COFFEE_GOOGLE_KEY=from-local\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("COFFEE_GOOGLE_KEY=from-env\nCOFFEE_AI_OPENAI_KEY=sk-env\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-local", cfg.Google.Key, ".env.local takes precedence over .env")
	assert.Equal(t, "sk-env", cfg.AI.OpenAIKey)
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("COFFEE_GOOGLE_KEY", "from-process")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COFFEE_GOOGLE_KEY=from-file\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Google.Key)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Search.MaxResults = 100
	cfg.Search.RadiusM = 10000
	cfg.AI.Provider = ProviderOpenAI
	cfg.AI.Model = "gpt-4o-mini"
	cfg.AI.MaxTokens = 1000
	cfg.Server.Port = 8080
	cfg.Schedule.Cron = "0 0 * * 0"
	return cfg
}

func TestValidateFetch_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/coffee"
	cfg.Google.Key = "AIza-test"
	cfg.Storage.Bucket = "coffee-photos"
	cfg.Storage.Endpoint = "https://r2.example.com"
	cfg.Storage.PublicURL = "https://photos.example.com"

	assert.NoError(t, cfg.Validate("fetch"))
	assert.NoError(t, cfg.Validate("schedule"))
}

func TestValidateFetch_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "google.key is required")
	assert.Contains(t, err.Error(), "storage.bucket is required")
	assert.Contains(t, err.Error(), "storage.public_url is required")
}

func TestValidateFetch_SQLiteNeedsNoURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Google.Key = "AIza-test"
	cfg.Storage.Bucket = "coffee-photos"
	cfg.Storage.Endpoint = "https://r2.example.com"
	cfg.Storage.PublicURL = "https://photos.example.com"

	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidateSchedule_MissingCron(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Google.Key = "k"
	cfg.Storage.Bucket = "b"
	cfg.Storage.Endpoint = "e"
	cfg.Storage.PublicURL = "p"
	cfg.Schedule.Cron = ""

	err := cfg.Validate("schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule.cron is required")
}

func TestValidateEnrich_ProviderKeys(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/coffee"

	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai.openai_key is required")

	cfg.AI.OpenAIKey = "sk-test"
	assert.NoError(t, cfg.Validate("enrich"))

	cfg.AI.Provider = ProviderAnthropic
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai.anthropic_key is required")

	cfg.AI.AnthropicKey = "sk-ant-test"
	assert.NoError(t, cfg.Validate("enrich"))
}

func TestValidateEnrich_UnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/coffee"
	cfg.AI.Provider = "mistral"

	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ai.provider "mistral" is not supported`)
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/coffee"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql" is not supported`)
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestMasked(t *testing.T) {
	cfg := validDefaults()
	cfg.Google.Key = "AIzaSyDsecretsecret"
	cfg.AI.OpenAIKey = "short"
	cfg.Store.DatabaseURL = "postgres://user:pw@localhost/coffee"

	m := cfg.Masked()
	assert.Equal(t, "AIza****", m.Google.Key)
	assert.Equal(t, "****", m.AI.OpenAIKey)
	assert.Equal(t, "post****", m.Store.DatabaseURL)
	assert.Equal(t, "", m.AI.AnthropicKey)
	assert.Equal(t, "AIzaSyDsecretsecret", cfg.Google.Key, "original is untouched")
}
