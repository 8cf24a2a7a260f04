// Package config loads embedsim settings from an optional YAML file and
// EMBEDSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EMBEDSIM"

// Config holds process-level settings. It is loaded once at startup and
// passed explicitly; nothing below this package reads the environment.
type Config struct {
	// Model is the default model ID. Empty means the built-in fallback.
	Model string `mapstructure:"model"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`

	ModelDir       string `mapstructure:"model_dir"`
	OnnxRuntimeLib string `mapstructure:"onnxruntime_lib"`

	// CacheSize enables an in-process embedding cache of that many
	// entries when > 0 and RedisURL is empty.
	CacheSize int `mapstructure:"cache_size"`
	// CachePolicy is the in-process eviction policy: lru, fifo or lfu.
	CachePolicy string        `mapstructure:"cache_policy"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ModelDir:    defaultModelDir(),
		CachePolicy: "lru",
		RedisTTL:    24 * time.Hour,
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

func defaultModelDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(dir, "embedsim", "models")
}

// Load reads configuration from configPath, or from embedsim.yaml in the
// working directory or $HOME/.embedsim when configPath is empty, then
// applies environment overrides.
func Load(configPath string) (*Config, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetDefault("model", defaults.Model)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("model_dir", defaults.ModelDir)
	v.SetDefault("onnxruntime_lib", "")
	v.SetDefault("cache_size", defaults.CacheSize)
	v.SetDefault("cache_policy", defaults.CachePolicy)
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_ttl", defaults.RedisTTL)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("embedsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.embedsim")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyCredentialFallbacks(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyCredentialFallbacks fills API keys from the provider SDKs'
// conventional variables when no EMBEDSIM_* value was set.
func applyCredentialFallbacks(cfg *Config) {
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logging.Format)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size: %d (must be >= 0)", c.CacheSize)
	}

	switch c.CachePolicy {
	case "lru", "fifo", "lfu":
	default:
		return fmt.Errorf("invalid cache policy: %s (must be lru, fifo, or lfu)", c.CachePolicy)
	}

	if c.RedisTTL < 0 {
		return fmt.Errorf("invalid redis TTL: %s (must be >= 0)", c.RedisTTL)
	}

	return nil
}
