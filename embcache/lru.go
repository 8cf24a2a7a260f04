package embcache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore keeps embeddings in process memory with LRU eviction.
type LRUStore struct {
	cache *lru.Cache[string, []float32]
}

// NewLRUStore creates an LRU store holding at most capacity embeddings.
func NewLRUStore(capacity int) (*LRUStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: cache}, nil
}

// Get retrieves an embedding from the LRU cache
func (s *LRUStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	vec, ok := s.cache.Get(key)
	return vec, ok, nil
}

// Set stores an embedding in the LRU cache
func (s *LRUStore) Set(ctx context.Context, key string, embedding []float32) error {
	s.cache.Add(key, embedding)
	return nil
}

// Len returns the number of entries in the LRU cache
func (s *LRUStore) Len() int {
	return s.cache.Len()
}

// Close clears all entries from the LRU cache
func (s *LRUStore) Close() error {
	s.cache.Purge()
	return nil
}
