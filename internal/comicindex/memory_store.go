package comicindex

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"vulncomics/internal/types"
)

const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 24 * time.Hour
)

// MemoryStore is a bounded, expiring in-process index. Entries past the TTL
// or evicted by size behave as never stored.
type MemoryStore struct {
	lru *expirable.LRU[string, types.Comic]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{lru: expirable.NewLRU[string, types.Comic](maxEntries, nil, ttl)}
}

func (s *MemoryStore) Put(_ context.Context, c types.Comic) error {
	hash, err := normalizeHash(c.Hash)
	if err != nil {
		return err
	}
	s.lru.Add(hash, cloneComic(c))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, hash string) (types.Comic, error) {
	hash, err := normalizeHash(hash)
	if err != nil {
		return types.Comic{}, err
	}
	c, ok := s.lru.Get(hash)
	if !ok {
		return types.Comic{}, ErrNotFound
	}
	return cloneComic(c), nil
}

func (s *MemoryStore) Len() int { return s.lru.Len() }
