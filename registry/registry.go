// Package registry maps model identifiers to embedding backends and
// memoizes every backend it constructs.
//
// A Registry owns its backends for its whole lifetime: callers receive
// shared instances from Resolve and must not close them. Close releases
// everything at shutdown.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/botirk38/embedsim/providers"
	"github.com/botirk38/embedsim/types"
)

// ErrClosed is returned by Resolve once the Registry has been closed.
var ErrClosed = errors.New("registry: closed")

// Wrapper decorates a freshly constructed backend before it is cached.
// key is the backend's cache key.
type Wrapper func(key string, backend types.EmbeddingBackend) types.EmbeddingBackend

// Option configures a Registry.
type Option func(*Registry)

// WithModels replaces the built-in model table.
func WithModels(models []types.ModelDescriptor) Option {
	return func(r *Registry) { r.models = models }
}

// WithWrapper decorates every constructed backend, e.g. with an embedding cache.
func WithWrapper(w Wrapper) Option {
	return func(r *Registry) { r.wrap = w }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry resolves model identifiers to cached backend instances.
type Registry struct {
	models      []types.ModelDescriptor
	descriptors map[string]types.ModelDescriptor
	factory     providers.Factory
	wrap        Wrapper
	logger      *zap.Logger

	mu       sync.RWMutex
	backends map[string]types.EmbeddingBackend
	closed   bool
	group    singleflight.Group
}

// New creates a Registry that builds backends with factory.
func New(factory providers.Factory, opts ...Option) (*Registry, error) {
	if factory == nil {
		return nil, fmt.Errorf("registry: factory cannot be nil")
	}

	r := &Registry{
		models:   builtinModels,
		factory:  factory,
		logger:   zap.NewNop(),
		backends: make(map[string]types.EmbeddingBackend),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.descriptors = make(map[string]types.ModelDescriptor, len(r.models))
	for _, d := range r.models {
		if _, dup := r.descriptors[d.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate model ID %q", d.ID)
		}
		if _, err := providers.OverrideKeys(d.Kind); err != nil {
			return nil, fmt.Errorf("registry: model %q: %w", d.ID, err)
		}
		d.Defaults = d.Defaults.Clone()
		r.descriptors[d.ID] = d
	}
	return r, nil
}

// Models returns every registered descriptor sorted by ID.
func (r *Registry) Models() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		d.Defaults = d.Defaults.Clone()
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the registered model identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptor looks up the descriptor for modelID.
func (r *Registry) Descriptor(modelID string) (types.ModelDescriptor, error) {
	d, ok := r.descriptors[modelID]
	if !ok {
		return types.ModelDescriptor{}, &types.UnknownModelError{ModelID: modelID, Available: r.IDs()}
	}
	return d, nil
}

// CacheKey identifies a backend by model and overrides. It is independent
// of override order.
func CacheKey(modelID string, overrides types.Overrides) string {
	canon := overrides.Canonical()
	if canon == "" {
		return modelID
	}
	return modelID + "|" + canon
}

// Resolve returns the backend for modelID configured with overrides,
// constructing it on first use. Concurrent callers asking for the same key
// share a single construction, which is not cancelled by any one caller;
// each caller stops waiting when its own ctx is done.
func (r *Registry) Resolve(ctx context.Context, modelID string, overrides types.Overrides) (types.EmbeddingBackend, error) {
	desc, err := r.Descriptor(modelID)
	if err != nil {
		return nil, err
	}
	if err := validateOverrides(desc, overrides); err != nil {
		return nil, err
	}

	key := CacheKey(modelID, overrides)

	r.mu.RLock()
	backend, ok := r.backends[key]
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		r.logger.Debug("backend cache hit", zap.String("key", key))
		return backend, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.construct(buildCtx, desc, overrides, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(types.EmbeddingBackend), nil
	}
}

func (r *Registry) construct(ctx context.Context, desc types.ModelDescriptor, overrides types.Overrides, key string) (types.EmbeddingBackend, error) {
	r.mu.RLock()
	existing, ok := r.backends[key]
	r.mu.RUnlock()
	if ok {
		return existing, nil
	}

	params := mergeParams(desc, overrides)
	b, err := r.factory(ctx, desc.Kind, params)
	if err != nil {
		return nil, err
	}
	if r.wrap != nil {
		b = r.wrap(key, b)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		if err := b.Close(); err != nil {
			r.logger.Warn("failed to close backend", zap.String("key", key), zap.Error(err))
		}
		return nil, ErrClosed
	}
	r.backends[key] = b
	r.mu.Unlock()

	r.logger.Info("constructed embedding backend",
		zap.String("model", desc.ID),
		zap.String("kind", string(desc.Kind)),
		zap.String("model_name", params.ModelName),
		zap.Int("max_seq_length", params.MaxSeqLength),
		zap.String("key", key))
	return b, nil
}

// Len returns the number of cached backends.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}

// Close closes every cached backend. Later Resolve calls fail with
// ErrClosed, and constructions still in flight are closed on completion.
func (r *Registry) Close() error {
	r.mu.Lock()
	backends := r.backends
	r.backends = make(map[string]types.EmbeddingBackend)
	r.closed = true
	r.mu.Unlock()

	var firstErr error
	for key, b := range backends {
		if err := b.Close(); err != nil {
			r.logger.Warn("failed to close backend", zap.String("key", key), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func validateOverrides(desc types.ModelDescriptor, overrides types.Overrides) error {
	allowed, err := providers.OverrideKeys(desc.Kind)
	if err != nil {
		return err
	}
	for key, value := range overrides {
		if !slices.Contains(allowed, key) {
			return types.Invalidf("override %q is not supported by %s backends (allowed: %v)", key, desc.Kind, allowed)
		}
		if err := providers.ValidateOverride(key, value); err != nil {
			return err
		}
	}
	return nil
}

// mergeParams layers overrides over the descriptor. Keys naming a
// descriptor field replace it; the rest land in Options.
func mergeParams(desc types.ModelDescriptor, overrides types.Overrides) types.BackendParams {
	params := types.BackendParams{
		ModelID:      desc.ID,
		ModelName:    desc.ModelName,
		MaxSeqLength: desc.MaxSeqLength,
		Options:      desc.Defaults.Clone(),
	}
	for key, value := range overrides {
		switch key {
		case types.OptModelName:
			params.ModelName = value.(string)
		case types.OptMaxSeqLength:
			params.MaxSeqLength, _ = types.AsInt(value)
		default:
			params.Options[key] = value
		}
	}
	return params
}
