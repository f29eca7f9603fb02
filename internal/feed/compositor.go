package feed

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/metrics"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/watchhive/internal/feed")

type GraphReader interface {
	RelevantUserIDs(ctx context.Context, viewerID string) ([]string, error)
}

type EntryPager interface {
	Page(ctx context.Context, viewerID string, ownerIDs []string, page, size int) ([]ScoredEntry, bool, error)
}

type SuggestionProvider interface {
	Candidates(ctx context.Context, viewerID string) ([]Suggestion, error)
}

// WatchedLister 用户记录过的全部目录 ID
type WatchedLister interface {
	WatchedCatalogIDs(ctx context.Context, userID string) ([]int64, error)
}

// Service 信息流组装。每次请求独立计算，不保留跨请求状态。
type Service struct {
	graph       GraphReader
	entries     EntryPager
	suggestions SuggestionProvider
	watched     WatchedLister
	cfg         config.FeedConfig
	now         func() time.Time
}

func NewService(graph GraphReader, entries EntryPager, suggestions SuggestionProvider, watched WatchedLister, cfg config.FeedConfig) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.InterleaveEvery <= 0 {
		cfg.InterleaveEvery = 3
	}
	if cfg.EmptyFeedSuggestions <= 0 {
		cfg.EmptyFeedSuggestions = 15
	}
	return &Service{
		graph:       graph,
		entries:     entries,
		suggestions: suggestions,
		watched:     watched,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Normalize 规范化分页参数：page < 1 取 1，limit 非正取默认值并截断到上限
func (s *Service) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return page, limit
}

// Page 组装 viewer 的第 page 页信息流。
// 关系图与记录读取失败直接返回错误；推荐失败只降级为无推荐。
func (s *Service) Page(ctx context.Context, viewerID string, page, limit int) (result *Page, err error) {
	page, limit = s.Normalize(page, limit)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "feed.Page")
	span.SetAttributes(
		attribute.String("feed.viewer_id", viewerID),
		attribute.Int("feed.page", page),
		attribute.Int("feed.limit", limit),
	)
	defer func() {
		entries, suggestions := 0, 0
		if result != nil {
			for _, it := range result.Items {
				if it.Type == ItemEntry {
					entries++
				} else {
					suggestions++
				}
			}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.RecordFeedPage(entries, suggestions, time.Since(start), err)
	}()

	var (
		entries     []ScoredEntry
		exact       bool
		suggestions []Suggestion
		watchedIDs  []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.graph.RelevantUserIDs(gctx, viewerID)
		if err != nil {
			return err
		}
		entries, exact, err = s.entries.Page(gctx, viewerID, ids, page, limit)
		return err
	})
	g.Go(func() error {
		var err error
		watchedIDs, err = s.watched.WatchedCatalogIDs(gctx, viewerID)
		if err != nil {
			return apperr.Storage(err, "load watched catalog ids")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		suggestions, err = s.suggestions.Candidates(gctx, viewerID)
		if err != nil {
			metrics.SuggestionOutcomes.WithLabelValues("degraded").Inc()
			logger.Warn("feed served without suggestions",
				zap.String("viewer_id", viewerID), zap.Error(err))
			suggestions = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Storage(err, "compose feed")
		}
		return nil, err
	}

	watched := make(map[int64]bool, len(watchedIDs))
	for _, id := range watchedIDs {
		watched[id] = true
	}

	if len(entries) == 0 {
		out := &Page{Items: []Item{}}
		if page == 1 {
			out.Items = s.suggestionsOnly(suggestions, watched)
		}
		return out, nil
	}

	out := &Page{Items: s.interleave(entries, suggestions, watched, page), HasMore: exact}
	if exact {
		next := page + 1
		out.NextPage = &next
	}
	return out, nil
}

func (s *Service) suggestionsOnly(suggestions []Suggestion, watched map[int64]bool) []Item {
	n := min(len(suggestions), s.cfg.EmptyFeedSuggestions)
	now := s.now()
	items := make([]Item, 0, n)
	for _, sg := range suggestions[:n] {
		items = append(items, suggestionItem(sg, fmt.Sprintf("suggestion-%d", sg.Item.ID), now, watched))
	}
	return items
}

// interleave 每 InterleaveEvery 条记录后插入一条推荐；推荐下标从 (page-1)*2 开始循环取用
func (s *Service) interleave(entries []ScoredEntry, suggestions []Suggestion, watched map[int64]bool, page int) []Item {
	every := s.cfg.InterleaveEvery
	items := make([]Item, 0, len(entries)+len(entries)/every)
	cursor := (page - 1) * 2

	for i, se := range entries {
		e := se.Entry
		items = append(items, Item{
			Type:      ItemEntry,
			ID:        e.ID,
			Timestamp: e.CreatedAt,
			Entry:     &EntryView{Entry: e, User: e.User.Summary()},
			IsLiked:   se.IsLiked,
			IsWatched: watched[e.CatalogID],
		})

		if (i+1)%every != 0 || len(suggestions) == 0 {
			continue
		}
		sg := suggestions[cursor%len(suggestions)]
		cursor++
		id := fmt.Sprintf("suggestion-%d-%d-%d", sg.Item.ID, page, i)
		items = append(items, suggestionItem(sg, id, e.CreatedAt, watched))
	}
	return items
}

func suggestionItem(sg Suggestion, id string, ts time.Time, watched map[int64]bool) Item {
	cand := sg.Item
	return Item{
		Type:      ItemSuggestion,
		ID:        id,
		Timestamp: ts,
		Candidate: &cand,
		Reason:    sg.Reason,
		IsWatched: watched[cand.ID],
	}
}
