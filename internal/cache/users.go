// Package cache 用户摘要的 redis 缓存，供关注/粉丝列表批量回填作者信息。
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// UserLoader 批量读取用户
type UserLoader interface {
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// UserSummaries MGET 命中缓存，缺失部分一次回库并回写
type UserSummaries struct {
	users UserLoader
	cache *redis.Client
	ttl   time.Duration
}

// NewUserSummaries cache 为 nil 时直接查库
func NewUserSummaries(users UserLoader, cache *redis.Client, ttl time.Duration) *UserSummaries {
	return &UserSummaries{users: users, cache: cache, ttl: ttl}
}

func userKey(id string) string { return fmt.Sprintf("user:summary:%s", id) }

// Load 按 ids 顺序返回摘要，不存在的用户被跳过
func (s *UserSummaries) Load(ctx context.Context, ids []string) ([]*model.UserSummary, error) {
	if len(ids) == 0 {
		return []*model.UserSummary{}, nil
	}

	cached := make(map[string]*model.UserSummary, len(ids))
	if s.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = userKey(id)
		}
		vals, err := s.cache.MGet(ctx, keys...).Result()
		if err != nil {
			logger.Warn("user summary cache read failed", zap.Error(err))
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var snap model.UserSummary
			if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
				cached[ids[i]] = &snap
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		users, err := s.users.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			snap := u.Summary()
			cached[u.ID] = snap
			if s.cache == nil {
				continue
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if err := s.cache.Set(ctx, userKey(u.ID), payload, s.ttl).Err(); err != nil {
				logger.Warn("user summary cache write failed", zap.String("user_id", u.ID), zap.Error(err))
			}
		}
	}

	result := make([]*model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// Forget 用户资料变更后丢弃缓存
func (s *UserSummaries) Forget(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userKey(id)).Err(); err != nil {
		logger.Warn("user summary cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}
