package embcache

import (
	"context"
	"sync"
)

// FIFOStore keeps embeddings in process memory and evicts the oldest
// insertion first.
type FIFOStore struct {
	mu       sync.RWMutex
	entries  map[string][]float32
	queue    []string
	capacity int
}

// NewFIFOStore creates a FIFO store holding at most capacity embeddings.
func NewFIFOStore(capacity int) (*FIFOStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &FIFOStore{
		entries:  make(map[string][]float32),
		queue:    make([]string, 0, capacity),
		capacity: capacity,
	}, nil
}

// Get retrieves an embedding from the FIFO store
func (s *FIFOStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vec, ok := s.entries[key]
	return vec, ok, nil
}

// Set stores an embedding in the FIFO store
func (s *FIFOStore) Set(ctx context.Context, key string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Updating an existing key keeps its queue position
	if _, exists := s.entries[key]; exists {
		s.entries[key] = embedding
		return nil
	}

	if len(s.entries) >= s.capacity {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.entries, oldest)
	}

	s.entries[key] = embedding
	s.queue = append(s.queue, key)
	return nil
}

// Len returns the number of entries in the FIFO store
func (s *FIFOStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Close clears all entries from the FIFO store
func (s *FIFOStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]float32)
	s.queue = make([]string, 0, s.capacity)
	return nil
}
