// Package rankcache caches semantic ranking results in a key-value store.
package rankcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/markstash-cloud/markstash/internal/db"
	"github.com/markstash-cloud/markstash/internal/domain"
	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

func cacheKeyPrefix() string {
	return domain.KeyPrefix + "rank_cache:"
}

// store is the consumer interface for the ranking cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ranker is the inner semantic ranker being decorated.
type ranker interface {
	Rank(ctx context.Context, query string, candidates []bookmark.Bookmark) ([]string, error)
}

// CachedRanker caches ranking responses keyed by query and candidate set.
// A rate-limit error from the inner ranker is never cached.
type CachedRanker struct {
	inner      ranker
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner ranker,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRanker {
	return &CachedRanker{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Rank returns a cached ordering or calls the inner ranker.
func (c *CachedRanker) Rank(
	ctx context.Context, query string, candidates []bookmark.Bookmark,
) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	key := c.cacheKey(query, candidates)

	if ids, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return ids, nil
	}

	c.incCache("miss")

	ids, err := c.inner.Rank(ctx, query, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	c.putToCache(ctx, key, ids)
	return ids, nil
}

func (c *CachedRanker) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the query together with the ordered candidate IDs, so
// any change to the candidate set invalidates the entry.
func (c *CachedRanker) cacheKey(query string, candidates []bookmark.Bookmark) string {
	var b strings.Builder
	b.WriteString(query)
	for _, bm := range candidates {
		b.WriteByte(0)
		b.WriteString(bm.ID())
	}
	h := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix() + hex.EncodeToString(h[:])
}

func (c *CachedRanker) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached ranking", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		c.logger.Warn("Corrupt cached ranking", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return ids, true
}

func (c *CachedRanker) putToCache(ctx context.Context, key string, ids []string) {
	data, err := json.Marshal(ids)
	if err != nil {
		c.logger.Warn("Failed to encode ranking for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache ranking", zap.String("key", key), zap.Error(err))
	}
}
