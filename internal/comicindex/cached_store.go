package comicindex

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"vulncomics/internal/types"
)

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        10 * time.Minute,
		MaxEntries: 512,
	}
}

type MetricsSnapshot struct {
	Hits           uint64
	Misses         uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:           m.hits.Load(),
		Misses:         m.misses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore reads through to origin and writes through on Put.
type CachedStore struct {
	origin  Store
	cache   *expirable.LRU[string, types.Comic]
	metrics Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		cache:  expirable.NewLRU[string, types.Comic](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, c types.Comic) error {
	hash, err := normalizeHash(c.Hash)
	if err != nil {
		return err
	}
	s.metrics.originWrites.Add(1)
	if err := s.origin.Put(ctx, c); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	s.cache.Add(hash, cloneComic(c))
	return nil
}

func (s *CachedStore) Get(ctx context.Context, hash string) (types.Comic, error) {
	hash, err := normalizeHash(hash)
	if err != nil {
		return types.Comic{}, err
	}
	if c, ok := s.cache.Get(hash); ok {
		s.metrics.hits.Add(1)
		return cloneComic(c), nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	c, err := s.origin.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.metrics.originReadErr.Add(1)
		}
		return types.Comic{}, err
	}
	s.cache.Add(hash, cloneComic(c))
	return c, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot { return s.metrics.snapshot() }
