package embcache

import (
	"context"
	"math"
	"sync"
)

type lfuEntry struct {
	embedding []float32
	frequency int
}

// LFUStore keeps embeddings in process memory and evicts the least
// frequently read entry first.
type LFUStore struct {
	mu       sync.Mutex
	entries  map[string]*lfuEntry
	capacity int
}

// NewLFUStore creates an LFU store holding at most capacity embeddings.
func NewLFUStore(capacity int) (*LFUStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &LFUStore{
		entries:  make(map[string]*lfuEntry),
		capacity: capacity,
	}, nil
}

// Get retrieves an embedding from the LFU store and increments its frequency
func (s *LFUStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.frequency++
		return entry.embedding, true, nil
	}
	return nil, false, nil
}

// Set stores an embedding in the LFU store
func (s *LFUStore) Set(ctx context.Context, key string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.entries[key]; exists {
		entry.embedding = embedding
		entry.frequency++
		return nil
	}

	if len(s.entries) >= s.capacity {
		s.evictLFU()
	}

	s.entries[key] = &lfuEntry{embedding: embedding, frequency: 1}
	return nil
}

// evictLFU removes the least frequently used entry
func (s *LFUStore) evictLFU() {
	var lfuKey string
	minFreq := math.MaxInt

	for key, entry := range s.entries {
		if entry.frequency < minFreq {
			minFreq = entry.frequency
			lfuKey = key
		}
	}

	delete(s.entries, lfuKey)
}

// Len returns the number of entries in the LFU store
func (s *LFUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Close clears all entries from the LFU store
func (s *LFUStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*lfuEntry)
	return nil
}
