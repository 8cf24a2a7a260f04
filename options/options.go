// Package options provides functional options for configuring an embedsim Engine.
package options

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/config"
	"github.com/botirk38/embedsim/embcache"
	"github.com/botirk38/embedsim/providers"
	"github.com/botirk38/embedsim/registry"
	"github.com/botirk38/embedsim/types"
)

// redisConnectTimeout bounds the initial Redis ping in WithRedisCache.
const redisConnectTimeout = 5 * time.Second

// Option represents a configuration option for an Engine
type Option func(*Config) error

// Config holds the configuration for building an Engine
type Config struct {
	Settings *config.Config
	Logger   *zap.Logger
	Models   []types.ModelDescriptor

	// Factory builds backends. Nil means providers.NewFactory over Settings.
	Factory providers.Factory

	// Store enables per-text embedding memoization when non-nil.
	Store embcache.Store
	// OwnsStore is true when the Engine must close Store.
	OwnsStore bool

	// DefaultModel overrides Settings.Model.
	DefaultModel string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Settings: config.Defaults(),
		Logger:   zap.NewNop(),
		Models:   registry.BuiltinModels(),
	}
}

// Apply applies all the given options to the config. If an option fails,
// a store created by an earlier option is closed.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			if c.OwnsStore && c.Store != nil {
				_ = c.Store.Close()
				c.Store, c.OwnsStore = nil, false
			}
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Settings == nil {
		return errors.New("settings are required - use WithConfig or WithConfigFile")
	}
	if c.Logger == nil {
		return errors.New("logger cannot be nil")
	}
	if len(c.Models) == 0 {
		return errors.New("at least one model descriptor is required")
	}
	return c.Settings.Validate()
}

// ModelID returns the engine default model: DefaultModel, then
// Settings.Model, then the built-in fallback.
func (c *Config) ModelID() string {
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	if c.Settings != nil && c.Settings.Model != "" {
		return c.Settings.Model
	}
	return registry.DefaultModelID
}

// WithConfig uses already loaded settings
func WithConfig(settings *config.Config) Option {
	return func(cfg *Config) error {
		if settings == nil {
			return errors.New("settings cannot be nil")
		}
		cfg.Settings = settings
		return nil
	}
}

// WithConfigFile loads settings from path and the environment
func WithConfigFile(path string) Option {
	return func(cfg *Config) error {
		settings, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg.Settings = settings
		return nil
	}
}

// WithLogger sets the logger used by the engine and its backends
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithModels replaces the built-in model table
func WithModels(models ...types.ModelDescriptor) Option {
	return func(cfg *Config) error {
		if len(models) == 0 {
			return errors.New("models cannot be empty")
		}
		cfg.Models = models
		return nil
	}
}

// WithFactory allows using a custom backend factory
func WithFactory(factory providers.Factory) Option {
	return func(cfg *Config) error {
		if factory == nil {
			return errors.New("factory cannot be nil")
		}
		cfg.Factory = factory
		return nil
	}
}

// WithDefaultModel sets the model used when a call names none
func WithDefaultModel(modelID string) Option {
	return func(cfg *Config) error {
		if modelID == "" {
			return errors.New("model ID cannot be empty")
		}
		cfg.DefaultModel = modelID
		return nil
	}
}

// WithLRUCache memoizes embeddings in an in-process LRU store
func WithLRUCache(capacity int) Option {
	return func(cfg *Config) error {
		store, err := embcache.NewLRUStore(capacity)
		if err != nil {
			return err
		}
		cfg.setOwnedStore(store)
		return nil
	}
}

// WithMemoryCache memoizes embeddings in process memory with the given
// eviction policy
func WithMemoryCache(policy embcache.Policy, capacity int) Option {
	return func(cfg *Config) error {
		store, err := embcache.NewMemoryStore(policy, capacity)
		if err != nil {
			return err
		}
		cfg.setOwnedStore(store)
		return nil
	}
}

// WithRedisCache memoizes embeddings in Redis
func WithRedisCache(redisConfig embcache.RedisConfig) Option {
	return func(cfg *Config) error {
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()

		store, err := embcache.NewRedisStore(ctx, redisConfig)
		if err != nil {
			return err
		}
		cfg.setOwnedStore(store)
		return nil
	}
}

// WithEmbeddingStore allows using a pre-configured store. The caller keeps
// ownership and closes it.
func WithEmbeddingStore(store embcache.Store) Option {
	return func(cfg *Config) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		cfg.releaseStore()
		cfg.Store = store
		cfg.OwnsStore = false
		return nil
	}
}

func (c *Config) setOwnedStore(store embcache.Store) {
	c.releaseStore()
	c.Store = store
	c.OwnsStore = true
}

func (c *Config) releaseStore() {
	if c.OwnsStore && c.Store != nil {
		_ = c.Store.Close()
	}
	c.Store, c.OwnsStore = nil, false
}
