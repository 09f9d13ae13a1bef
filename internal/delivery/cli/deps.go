package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/adapter/chromedp_loader"
	"github.com/user/memorial-extractor/internal/adapter/httploader"
	"github.com/user/memorial-extractor/internal/adapter/postgres"
	redis_adapter "github.com/user/memorial-extractor/internal/adapter/redis"
	"github.com/user/memorial-extractor/internal/delivery/http/handler"
	"github.com/user/memorial-extractor/internal/proxy"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/internal/usecase"
	"github.com/user/memorial-extractor/pkg/config"
	"github.com/user/memorial-extractor/pkg/metrics"
)

// deps holds the collaborators built from configuration. The page cache
// and the archive are optional: a missing or unreachable backend is logged
// and the run continues without it.
type deps struct {
	loader  repository.DocumentLoader
	cache   *usecase.CachedLoader
	archive *postgres.RecordArchiveImpl
	checks  map[string]handler.HealthCheck
	closers []func()
}

func (d *deps) archives() []repository.RecordSink {
	if d.archive == nil {
		return nil
	}
	return []repository.RecordSink{d.archive}
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *deps {
	d := &deps{checks: map[string]handler.HealthCheck{}}
	pm := proxy.NewManager(cfg.ProxyURLs, cfg.UserAgent)

	switch cfg.Loader {
	case config.LoaderChrome:
		proxyServer := ""
		if u := pm.GetProxy(); u != nil {
			proxyServer = u.String()
		}
		cl := chromedp_loader.NewChromedpLoader(cfg.Timeout(), pm.GetUserAgent(), proxyServer, logger)
		d.loader = cl
		d.closers = append(d.closers, cl.Close)
	default:
		d.loader = httploader.NewHTTPLoader(cfg.Timeout(), pm, logger)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := ping(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
			logger.Warn("Redis unavailable, page cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
			d.cache = usecase.NewCachedLoader(d.loader, redis_adapter.NewPageCache(rdb), cfg.CacheTTL(), m, logger)
			d.loader = d.cache
			d.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			d.closers = append(d.closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.PostgresURL != "" {
		archive, pool, err := connectArchive(ctx, cfg.PostgresURL, logger)
		if err != nil {
			logger.Warn("PostgreSQL unavailable, record archive disabled", zap.Error(err))
		} else {
			logger.Info("PostgreSQL connection pool established")
			d.archive = archive
			d.checks["postgres"] = pool.Ping
			d.closers = append(d.closers, pool.Close)
		}
	}

	return d
}

func connectArchive(ctx context.Context, connString string, logger *zap.Logger) (*postgres.RecordArchiveImpl, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := ping(ctx, pool.Ping); err != nil {
		pool.Close()
		return nil, nil, err
	}
	archive := postgres.NewRecordArchive(pool, logger)
	if err := archive.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return archive, pool, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return fn(ctx)
}
