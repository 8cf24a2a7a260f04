// Package embcache memoizes per-text embeddings in front of a backend.
//
// Entries are keyed by a namespace, normally the registry cache key of the
// backend, and the text, so differently configured backends never share
// vectors.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/botirk38/embedsim/types"
)

// Store defines the interface for embedding storage.
type Store interface {
	// Get retrieves the embedding stored under key
	Get(ctx context.Context, key string) ([]float32, bool, error)

	// Set stores an embedding under key
	Set(ctx context.Context, key string, embedding []float32) error

	// Close releases the store's resources
	Close() error
}

// Backend wraps an EmbeddingBackend and serves repeated texts from a Store.
type Backend struct {
	inner     types.EmbeddingBackend
	store     Store
	namespace string
	logger    *zap.Logger
}

// Wrap returns inner decorated with store. Closing the returned backend
// closes inner but not store, which may be shared.
func Wrap(inner types.EmbeddingBackend, store Store, namespace string, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{inner: inner, store: store, namespace: namespace, logger: logger}
}

// Key returns the store key for text within namespace.
func Key(namespace, text string) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Encode returns cached rows where available and encodes the remaining
// texts with a single call to the wrapped backend. Store failures degrade
// to cache misses.
func (b *Backend) Encode(ctx context.Context, texts []string) (types.Matrix, error) {
	out := make(types.Matrix, len(texts))
	keys := make([]string, len(texts))

	// Distinct missing texts, and the output rows each one fills.
	var missing []string
	rowsFor := make(map[string][]int)

	for i, text := range texts {
		keys[i] = Key(b.namespace, text)
		if rows, pending := rowsFor[text]; pending {
			rowsFor[text] = append(rows, i)
			continue
		}

		vec, found, err := b.store.Get(ctx, keys[i])
		if err != nil {
			b.logger.Warn("embedding cache read failed", zap.String("namespace", b.namespace), zap.Error(err))
		}
		if found {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		rowsFor[text] = []int{i}
	}

	if len(missing) == 0 {
		b.logger.Debug("embedding cache hit", zap.String("namespace", b.namespace), zap.Int("texts", len(texts)))
		return out, nil
	}

	encoded, err := b.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(missing) {
		return nil, &types.BackendError{
			ModelID: b.namespace,
			Op:      "encode",
			Err:     fmt.Errorf("backend returned %d embeddings for %d texts", len(encoded), len(missing)),
		}
	}

	for j, text := range missing {
		rows := rowsFor[text]
		for _, i := range rows {
			out[i] = encoded[j]
		}
		if err := b.store.Set(ctx, keys[rows[0]], encoded[j]); err != nil {
			b.logger.Warn("embedding cache write failed", zap.String("namespace", b.namespace), zap.Error(err))
		}
	}

	b.logger.Debug("embedding cache partial hit",
		zap.String("namespace", b.namespace),
		zap.Int("texts", len(texts)),
		zap.Int("encoded", len(missing)))
	return out, nil
}

// Close closes the wrapped backend.
func (b *Backend) Close() error {
	return b.inner.Close()
}
