package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Photos   PhotosConfig   `yaml:"photos" mapstructure:"photos"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// GoogleConfig holds the server-side Places API settings.
type GoogleConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig configures the nearby search that seeds a fetch run.
type SearchConfig struct {
	Lat           float64 `yaml:"lat" mapstructure:"lat"`
	Lng           float64 `yaml:"lng" mapstructure:"lng"`
	RadiusM       int     `yaml:"radius_m" mapstructure:"radius_m"`
	Type          string  `yaml:"type" mapstructure:"type"`
	Keyword       string  `yaml:"keyword" mapstructure:"keyword"`
	MaxResults    int     `yaml:"max_results" mapstructure:"max_results"`
	PageDelaySecs float64 `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
}

// PhotosConfig bounds photo migration per place.
type PhotosConfig struct {
	MaxPerPlace int `yaml:"max_per_place" mapstructure:"max_per_place"`
	MaxWidth    int `yaml:"max_width" mapstructure:"max_width"`
}

// StorageConfig configures the S3-compatible photo bucket.
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	Region          string `yaml:"region" mapstructure:"region"`
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	PublicURL       string `yaml:"public_url" mapstructure:"public_url"`
	UsePathStyle    bool   `yaml:"use_path_style" mapstructure:"use_path_style"`
}

// AIConfig selects and configures the text-generation provider.
type AIConfig struct {
	Provider     string  `yaml:"provider" mapstructure:"provider"`
	OpenAIKey    string  `yaml:"openai_key" mapstructure:"openai_key"`
	AnthropicKey string  `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model        string  `yaml:"model" mapstructure:"model"`
	MaxTokens    int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ScheduleConfig configures the recurring fetch run.
type ScheduleConfig struct {
	Cron string `yaml:"cron" mapstructure:"cron"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AI providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// envFiles are loaded in order; a variable set by an earlier file or by the
// process environment is never overwritten.
var envFiles = []string{".env.local", ".env"}

// Load reads configuration from dotenv files, config.yaml and the environment.
func Load() (*Config, error) {
	for _, f := range envFiles {
		// Missing files are fine.
		_ = godotenv.Load(f)
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COFFEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key is registered so env-only values reach Unmarshal.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("search.lat", 54.687157)
	v.SetDefault("search.lng", 25.279652)
	v.SetDefault("search.radius_m", 10000)
	v.SetDefault("search.type", "cafe")
	v.SetDefault("search.keyword", "coffee")
	v.SetDefault("search.max_results", 100)
	v.SetDefault("search.page_delay_secs", 2)
	v.SetDefault("photos.max_per_place", 5)
	v.SetDefault("photos.max_width", 1200)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.public_url", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.anthropic_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("ai.temperature", 0.5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("schedule.cron", "0 0 * * 0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present. mode is
// one of fetch, enrich, serve, schedule or store.
func (c *Config) Validate(mode string) error {
	var errs []string
	require := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	switch mode {
	case "fetch", "schedule":
		c.validateStore(require)
		require(c.Google.Key != "", "google.key is required")
		require(c.Storage.Bucket != "", "storage.bucket is required")
		require(c.Storage.Endpoint != "", "storage.endpoint is required")
		require(c.Storage.PublicURL != "", "storage.public_url is required")
		require(c.Search.MaxResults > 0, "search.max_results must be > 0")
		require(c.Search.RadiusM > 0, "search.radius_m must be > 0")
		if mode == "schedule" {
			require(c.Schedule.Cron != "", "schedule.cron is required")
		}
	case "enrich":
		c.validateStore(require)
		c.validateAI(require)
	case "serve":
		c.validateStore(require)
		require(c.Server.Port > 0, "server.port must be > 0")
	case "store":
		c.validateStore(require)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore(require func(bool, string)) {
	switch c.Store.Driver {
	case "postgres":
		require(c.Store.DatabaseURL != "", "store.database_url is required")
	case "sqlite":
	default:
		require(false, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
}

func (c *Config) validateAI(require func(bool, string)) {
	switch c.AI.Provider {
	case ProviderOpenAI:
		require(c.AI.OpenAIKey != "", "ai.openai_key is required")
	case ProviderAnthropic:
		require(c.AI.AnthropicKey != "", "ai.anthropic_key is required")
	default:
		require(false, fmt.Sprintf("ai.provider %q is not supported", c.AI.Provider))
	}
	require(c.AI.Model != "", "ai.model is required")
	require(c.AI.MaxTokens > 0, "ai.max_tokens must be > 0")
}

// Masked returns a copy with secrets replaced, for display.
func (c Config) Masked() Config {
	c.Store.DatabaseURL = mask(c.Store.DatabaseURL)
	c.Google.Key = mask(c.Google.Key)
	c.Storage.AccessKeyID = mask(c.Storage.AccessKeyID)
	c.Storage.SecretAccessKey = mask(c.Storage.SecretAccessKey)
	c.AI.OpenAIKey = mask(c.AI.OpenAIKey)
	c.AI.AnthropicKey = mask(c.AI.AnthropicKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
