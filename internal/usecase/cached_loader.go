package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/pkg/metrics"
)

// CachedLoader serves page bodies from a PageCache and falls back to the
// wrapped loader on a miss. Cache failures never fail a load.
type CachedLoader struct {
	next    repository.DocumentLoader
	cache   repository.PageCache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCachedLoader wraps next with cache. Bodies are kept for ttl.
func NewCachedLoader(next repository.DocumentLoader, cache repository.PageCache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLoader{next: next, cache: cache, ttl: ttl, metrics: m, logger: logger}
}

// Load implements repository.DocumentLoader.
func (l *CachedLoader) Load(ctx context.Context, url string) (*entity.RawDocument, error) {
	body, err := l.cache.Get(ctx, url)
	switch {
	case err == nil:
		l.metrics.IncCacheLookup("hit")
		l.logger.Debug("page served from cache", zap.String("url", url))
		return &entity.RawDocument{
			URL:        url,
			Body:       body,
			StatusCode: http.StatusOK,
			FetchedAt:  time.Now(),
			Source:     "cache",
		}, nil
	case errors.Is(err, repository.ErrCacheMiss):
		l.metrics.IncCacheLookup("miss")
	default:
		l.metrics.IncCacheLookup("error")
		l.logger.Warn("page cache lookup failed", zap.String("url", url), zap.Error(err))
	}

	doc, err := l.next.Load(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Put(ctx, url, doc.Body, l.ttl); err != nil {
		l.logger.Warn("failed to cache page", zap.String("url", url), zap.Error(err))
	}
	return doc, nil
}

// Evict drops url from the cache so the next Load refetches it.
func (l *CachedLoader) Evict(ctx context.Context, url string) error {
	return l.cache.Evict(ctx, url)
}
