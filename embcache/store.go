package embcache

import (
	"errors"
	"fmt"
)

// Policy names an in-memory eviction policy.
type Policy string

const (
	PolicyLRU  Policy = "lru"
	PolicyFIFO Policy = "fifo"
	PolicyLFU  Policy = "lfu"
)

var (
	ErrUnsupportedPolicy = errors.New("unsupported cache policy")
	ErrInvalidCapacity   = errors.New("cache capacity must be positive")
)

// NewMemoryStore creates an in-process store with the given eviction policy.
func NewMemoryStore(policy Policy, capacity int) (Store, error) {
	var (
		store Store
		err   error
	)
	switch policy {
	case PolicyLRU, "":
		store, err = NewLRUStore(capacity)
	case PolicyFIFO:
		store, err = NewFIFOStore(capacity)
	case PolicyLFU:
		store, err = NewLFUStore(capacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, policy)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
