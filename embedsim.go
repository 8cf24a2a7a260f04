// Package embedsim scores semantic similarity between texts using vector
// embeddings produced by pluggable backends.
//
// PairSim returns the cosine similarity of two texts. GroupSim scores how
// closely each text of a set aligns with the set's centroid. Both resolve
// their backend through a registry that builds each model configuration
// once and reuses it for the life of the Engine.
package embedsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/config"
	"github.com/botirk38/embedsim/embcache"
	"github.com/botirk38/embedsim/logging"
	"github.com/botirk38/embedsim/options"
	"github.com/botirk38/embedsim/providers"
	"github.com/botirk38/embedsim/registry"
	"github.com/botirk38/embedsim/similarity"
	"github.com/botirk38/embedsim/types"
)

// redisConnectTimeout bounds the initial ping of a configured Redis store.
const redisConnectTimeout = 5 * time.Second

// ErrClosed is returned by similarity calls made after Close.
var ErrClosed = registry.ErrClosed

// Engine computes similarity scores over registry-managed backends.
// It is safe for concurrent use.
type Engine struct {
	registry     *registry.Registry
	defaultModel string
	logger       *zap.Logger

	store     embcache.Store
	ownsStore bool
	closeOnce sync.Once
	closeErr  error
}

// New creates an Engine with functional options. Without options it uses
// default settings and the built-in model table.
func New(opts ...options.Option) (*Engine, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		releaseStore(cfg)
		return nil, err
	}

	if cfg.Store == nil {
		store, err := storeFromSettings(cfg.Settings)
		if err != nil {
			return nil, err
		}
		if store != nil {
			cfg.Store, cfg.OwnsStore = store, true
		}
	}

	engine, err := newEngine(cfg)
	if err != nil {
		releaseStore(cfg)
		return nil, err
	}
	return engine, nil
}

func releaseStore(cfg *options.Config) {
	if cfg.OwnsStore && cfg.Store != nil {
		_ = cfg.Store.Close()
	}
}

func newEngine(cfg *options.Config) (*Engine, error) {
	logger := cfg.Logger
	settings := cfg.Settings

	factory := cfg.Factory
	if factory == nil {
		factory = providers.NewFactory(providers.Settings{
			OpenAIAPIKey:  settings.OpenAIAPIKey,
			OpenAIBaseURL: settings.OpenAIBaseURL,
			GeminiAPIKey:  settings.GeminiAPIKey,
			ModelDir:      settings.ModelDir,
			OnnxRuntime:   settings.OnnxRuntimeLib,
			Logger:        logging.Component(logger, "providers"),
		})
	}

	regOpts := []registry.Option{
		registry.WithModels(cfg.Models),
		registry.WithLogger(logging.Component(logger, "registry")),
	}
	if store := cfg.Store; store != nil {
		cacheLogger := logging.Component(logger, "embcache")
		regOpts = append(regOpts, registry.WithWrapper(func(key string, b types.EmbeddingBackend) types.EmbeddingBackend {
			return embcache.Wrap(b, store, key, cacheLogger)
		}))
	}

	reg, err := registry.New(factory, regOpts...)
	if err != nil {
		return nil, err
	}

	modelID := cfg.ModelID()
	if _, err := reg.Descriptor(modelID); err != nil {
		return nil, err
	}

	return &Engine{
		registry:     reg,
		defaultModel: modelID,
		logger:       logger,
		store:        cfg.Store,
		ownsStore:    cfg.OwnsStore,
	}, nil
}

// storeFromSettings builds the embedding store named by the settings:
// Redis when a URL is set, an in-memory store when CacheSize > 0,
// otherwise none.
func storeFromSettings(settings *config.Config) (embcache.Store, error) {
	switch {
	case settings.RedisURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()
		store, err := embcache.NewRedisStore(ctx, embcache.RedisConfig{
			ConnectionString: settings.RedisURL,
			TTL:              settings.RedisTTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case settings.CacheSize > 0:
		return embcache.NewMemoryStore(embcache.Policy(settings.CachePolicy), settings.CacheSize)
	default:
		return nil, nil
	}
}

// DefaultModel returns the model ID used when a call names none.
func (e *Engine) DefaultModel() string {
	return e.defaultModel
}

// Models lists the registered model descriptors sorted by ID.
func (e *Engine) Models() []types.ModelDescriptor {
	return e.registry.Models()
}

// PairSim returns the cosine similarity of a and b.
func (e *Engine) PairSim(ctx context.Context, a, b string, opts ...CallOption) (float64, error) {
	if a == "" || b == "" {
		return 0, types.Invalidf("pairsim requires two non-empty texts")
	}

	m, err := e.encode(ctx, []string{a, b}, opts)
	if err != nil {
		return 0, err
	}
	return similarity.PairScore(m)
}

// GroupSim returns, for each text, the cosine similarity between its
// embedding and the normalized centroid of all embeddings. Scores are in
// input order. A single text scores 1.
func (e *Engine) GroupSim(ctx context.Context, texts []string, opts ...CallOption) ([]float64, error) {
	if len(texts) == 0 {
		return nil, types.Invalidf("groupsim requires at least one text")
	}
	for i, text := range texts {
		if text == "" {
			return nil, types.Invalidf("text %d is empty", i)
		}
	}

	m, err := e.encode(ctx, texts, opts)
	if err != nil {
		return nil, err
	}
	return similarity.CentroidScores(m)
}

// encode resolves the backend for opts and encodes texts in one call.
func (e *Engine) encode(ctx context.Context, texts []string, opts []CallOption) (types.Matrix, error) {
	call := e.callConfig(opts)

	backend, err := e.registry.Resolve(ctx, call.model, call.overrides)
	if err != nil {
		return nil, err
	}

	m, err := backend.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if err := checkShape(call.model, m, len(texts)); err != nil {
		return nil, err
	}

	e.logger.Debug("encoded texts",
		zap.String("model", call.model),
		zap.Int("texts", len(texts)),
		zap.Int("dims", m.Dims()))
	return m, nil
}

// checkShape rejects matrices that break the backend contract.
func checkShape(modelID string, m types.Matrix, rows int) error {
	if len(m) != rows {
		return &types.BackendError{
			ModelID: modelID,
			Op:      "encode",
			Err:     fmt.Errorf("backend returned %d rows for %d texts", len(m), rows),
		}
	}
	dims := m.Dims()
	for i, row := range m {
		if len(row) != dims {
			return &types.BackendError{
				ModelID: modelID,
				Op:      "encode",
				Err:     fmt.Errorf("row %d has %d dimensions, row 0 has %d", i, len(row), dims),
			}
		}
	}
	return nil
}

// Close releases every backend the engine built and the embedding store
// if the engine created it. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.registry.Close()
		if e.ownsStore && e.store != nil {
			if err := e.store.Close(); err != nil && e.closeErr == nil {
				e.closeErr = err
			}
		}
	})
	return e.closeErr
}
