package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// WatchHistory 查询用户最近观看的一条记录（按 watched_at）
type WatchHistory interface {
	LatestWatched(ctx context.Context, userID string) (*model.Entry, error)
}

// SuggestionSource 生成推荐候选：最近观看的相似推荐 + 本周趋势，失败时退化为仅趋势
type SuggestionSource struct {
	catalog      catalog.Catalog
	history      WatchHistory
	maxPerSource int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSuggestionSource rng 为 nil 时使用按时间播种的随机源
func NewSuggestionSource(cat catalog.Catalog, history WatchHistory, maxPerSource int, rng *rand.Rand) *SuggestionSource {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if maxPerSource <= 0 {
		maxPerSource = 10
	}
	return &SuggestionSource{catalog: cat, history: history, maxPerSource: maxPerSource, rng: rng}
}

func contextualReason(title string) string {
	return fmt.Sprintf("Because you watched %s", title)
}

// Candidates 返回去重后的候选列表。主路径失败时回退到趋势；回退也失败时返回 UpstreamUnavailable。
func (s *SuggestionSource) Candidates(ctx context.Context, viewerID string) ([]Suggestion, error) {
	out, err := s.primary(ctx, viewerID)
	if err == nil {
		metrics.SuggestionOutcomes.WithLabelValues("primary").Inc()
		return out, nil
	}
	logger.Warn("suggestions degraded to trending fallback",
		zap.String("viewer_id", viewerID), zap.Error(err))

	res, err := s.catalog.Trending(ctx, catalog.MediaAll, catalog.WindowWeek)
	if err != nil {
		return nil, apperr.Upstream(err, "trending fallback")
	}
	metrics.SuggestionOutcomes.WithLabelValues("fallback").Inc()
	return dedupe(label(res.Results, ReasonTrendingNow, 0)), nil
}

func (s *SuggestionSource) primary(ctx context.Context, viewerID string) ([]Suggestion, error) {
	var contextual, trending []Suggestion

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		last, err := s.history.LatestWatched(gctx, viewerID)
		if err != nil {
			return apperr.Storage(err, "latest watched entry")
		}
		if last == nil {
			return nil
		}
		res, err := s.catalog.Recommendations(gctx, last.CatalogID, catalog.KindForEntry(last.Kind), 1)
		if err != nil {
			return err
		}
		contextual = label(res.Results, contextualReason(last.Title), s.maxPerSource)
		return nil
	})
	g.Go(func() error {
		res, err := s.catalog.Trending(gctx, catalog.MediaAll, catalog.WindowWeek)
		if err != nil {
			return err
		}
		trending = label(res.Results, ReasonTrendingWeek, s.maxPerSource)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := dedupe(append(contextual, trending...))
	s.shuffle(out)
	return out, nil
}

func (s *SuggestionSource) shuffle(items []Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

// label 为条目打上推荐理由；limit <= 0 表示不截断
func label(items []catalog.Item, reason string, limit int) []Suggestion {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]Suggestion, 0, len(items))
	for _, it := range items {
		out = append(out, Suggestion{Item: it, Reason: reason})
	}
	return out
}

// dedupe 按目录 ID 去重，保留首次出现
func dedupe(items []Suggestion) []Suggestion {
	seen := make(map[int64]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, ok := seen[it.Item.ID]; ok {
			continue
		}
		seen[it.Item.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
