package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// FolloweeLister 关注列表读取
type FolloweeLister interface {
	ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error)
}

// SocialGraph 解析信息流相关用户：自己 + 已确认关注的人。
// 关注 ID 列表缓存在 redis list 中，关系变更时由调用方 Invalidate。
type SocialGraph struct {
	follows FolloweeLister
	cache   *redis.Client
	ttl     time.Duration
}

// NewSocialGraph cache 为 nil 时每次直接查库
func NewSocialGraph(follows FolloweeLister, cache *redis.Client, ttl time.Duration) *SocialGraph {
	return &SocialGraph{follows: follows, cache: cache, ttl: ttl}
}

func followeeKey(viewerID string) string {
	return fmt.Sprintf("graph:followees:%s", viewerID)
}

// RelevantUserIDs 返回 {viewer} ∪ followees，viewer 恒在首位且不重复
func (g *SocialGraph) RelevantUserIDs(ctx context.Context, viewerID string) ([]string, error) {
	ids, err := g.followees(ctx, viewerID)
	if err != nil {
		return nil, apperr.Storage(err, "load followees")
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, viewerID)
	for _, id := range ids {
		if id != viewerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (g *SocialGraph) followees(ctx context.Context, viewerID string) ([]string, error) {
	if g.cache == nil {
		return g.follows.ListFolloweeIDs(ctx, viewerID)
	}

	key := followeeKey(viewerID)
	ids, err := g.cache.LRange(ctx, key, 0, -1).Result()
	switch {
	case err != nil:
		metrics.GraphCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("followee cache read failed", zap.String("viewer_id", viewerID), zap.Error(err))
	case len(ids) > 0:
		metrics.GraphCacheLookups.WithLabelValues("hit").Inc()
		return ids, nil
	default:
		metrics.GraphCacheLookups.WithLabelValues("miss").Inc()
	}

	ids, err = g.follows.ListFolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	// 空列表不缓存，redis 无法表示空 list
	if len(ids) > 0 {
		pipe := g.cache.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, g.ttl)
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			logger.Warn("followee cache write failed", zap.String("viewer_id", viewerID), zap.Error(pErr))
		}
	}
	return ids, nil
}

// Invalidate 丢弃 viewer 的关注缓存
func (g *SocialGraph) Invalidate(ctx context.Context, viewerID string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Del(ctx, followeeKey(viewerID)).Err(); err != nil {
		logger.Warn("followee cache invalidate failed", zap.String("viewer_id", viewerID), zap.Error(err))
	}
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}
