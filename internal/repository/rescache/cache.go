package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
)

// DefaultPrefix namespaces result keys in a shared key-value store.
const DefaultPrefix = "stockdex:result:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// searcher is the decorated search pipeline.
type searcher interface {
	Search(ctx context.Context, in intent.Intent) (*result.Envelope, error)
}

// aliasStatus exposes the alias generation so reloads invalidate old keys.
type aliasStatus interface {
	Status() brand.Status
}

// Options tune the cache.
type Options struct {
	TTL    time.Duration
	Prefix string
}

// entry is the cached form of one response plus the trace facts needed to
// reproduce response headers.
type entry struct {
	Envelope   *result.Envelope `json:"envelope"`
	Candidates int              `json:"candidates"`
	Fallback   bool             `json:"fallback"`
}

// CachedSearcher caches search envelopes in a key-value store.
type CachedSearcher struct {
	inner      searcher
	store      store
	aliases    aliasStatus
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	group      singleflight.Group
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	s store,
	aliases aliasStatus,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		aliases:    aliases,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached envelope or runs the inner pipeline.
// Debug requests always bypass the cache. Concurrent misses on the same key
// share one pipeline run, which is detached from the first caller's cancellation.
func (c *CachedSearcher) Search(ctx context.Context, in intent.Intent) (*result.Envelope, error) {
	if in.Debug {
		return c.inner.Search(ctx, in)
	}

	key, err := c.cacheKey(in)
	if err != nil {
		c.logger.Warn("Failed to build result cache key", zap.Error(err))
		return c.inner.Search(ctx, in)
	}

	if e, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		tr := domain.TraceFromContext(ctx)
		tr.MarkCacheHit()
		tr.RecordCandidates(e.Candidates, e.Fallback)
		return e.Envelope, nil
	}

	c.incCache("miss")

	v, err, _ := c.group.Do(key, func() (any, error) {
		runCtx, tr := domain.NewContextWithTrace(context.WithoutCancel(ctx))
		env, err := c.inner.Search(runCtx, in)
		if err != nil {
			return nil, err
		}
		e := &entry{Envelope: env, Candidates: tr.Candidates, Fallback: tr.Fallback}
		c.putToCache(runCtx, key, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	e := v.(*entry)
	domain.TraceFromContext(ctx).RecordCandidates(e.Candidates, e.Fallback)
	return e.Envelope, nil
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the canonical intent together with the alias generation.
func (c *CachedSearcher) cacheKey(in intent.Intent) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal intent: %w", err)
	}
	var gen uint64
	if c.aliases != nil {
		gen = c.aliases.Status().Generation
	}

	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatUint(gen, 10)))
	return c.opts.Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) (*entry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Envelope == nil {
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &e, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, e *entry) {
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.opts.TTL); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}
