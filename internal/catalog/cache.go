package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// Cached 在 Catalog 前加一层 redis 读穿缓存。redis 异常时直接回源。
type Cached struct {
	next        Catalog
	rdb         *redis.Client
	trendingTTL time.Duration
	similarTTL  time.Duration
	detailTTL   time.Duration
}

// NewCached rdb 为 nil 时原样返回 next
func NewCached(next Catalog, rdb *redis.Client, cfg config.CatalogConfig) Catalog {
	if rdb == nil {
		return next
	}
	return &Cached{
		next:        next,
		rdb:         rdb,
		trendingTTL: cfg.TrendingTTL,
		similarTTL:  cfg.SimilarTTL,
		detailTTL:   cfg.DetailTTL,
	}
}

func (c *Cached) Recommendations(ctx context.Context, id int64, kind MediaKind, page int) (*Results, error) {
	key := fmt.Sprintf("catalog:recs:%s:%d:%d", kind, id, page)
	return readThrough(ctx, c.rdb, "recommendations", key, c.similarTTL, func() (*Results, error) {
		return c.next.Recommendations(ctx, id, kind, page)
	})
}

func (c *Cached) Trending(ctx context.Context, media MediaKind, window Window) (*Results, error) {
	key := fmt.Sprintf("catalog:trending:%s:%s", media, window)
	return readThrough(ctx, c.rdb, "trending", key, c.trendingTTL, func() (*Results, error) {
		return c.next.Trending(ctx, media, window)
	})
}

func (c *Cached) Details(ctx context.Context, id int64, kind MediaKind) (*Detail, error) {
	key := fmt.Sprintf("catalog:detail:%s:%d", kind, id)
	return readThrough(ctx, c.rdb, "details", key, c.detailTTL, func() (*Detail, error) {
		return c.next.Details(ctx, id, kind)
	})
}

func readThrough[T any](ctx context.Context, rdb *redis.Client, endpoint, key string, ttl time.Duration, load func() (*T, error)) (*T, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out T
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			metrics.CatalogCacheLookups.WithLabelValues(endpoint, "hit").Inc()
			return &out, nil
		}
		metrics.CatalogCacheLookups.WithLabelValues(endpoint, "error").Inc()
	case err == redis.Nil:
		metrics.CatalogCacheLookups.WithLabelValues(endpoint, "miss").Inc()
	default:
		metrics.CatalogCacheLookups.WithLabelValues(endpoint, "error").Inc()
		logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if payload, mErr := json.Marshal(out); mErr == nil {
		if sErr := rdb.Set(ctx, key, payload, ttl).Err(); sErr != nil {
			logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(sErr))
		}
	}
	return out, nil
}
