package feed

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/model"
)

// EntryStore 信息流所需的记录读取
type EntryStore interface {
	ListByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]*model.Entry, error)
	Engagement(ctx context.Context, entryIDs []string) (map[string]model.Engagement, error)
}

// LikeChecker 查询 viewer 已点赞的记录
type LikeChecker interface {
	LikedEntryIDs(ctx context.Context, userID string, entryIDs []string) (map[string]bool, error)
}

// EntrySource 按创建时间分页取记录，再在页内按热度重排
type EntrySource struct {
	entries EntryStore
	likes   LikeChecker
	scorer  Scorer
	now     func() time.Time
}

func NewEntrySource(entries EntryStore, likes LikeChecker, scorer Scorer) *EntrySource {
	return &EntrySource{entries: entries, likes: likes, scorer: scorer, now: time.Now}
}

// Page 返回第 page 页（从 1 开始）的记录，以及该页是否取满 size 条
func (s *EntrySource) Page(ctx context.Context, viewerID string, ownerIDs []string, page, size int) ([]ScoredEntry, bool, error) {
	raw, err := s.entries.ListByOwners(ctx, ownerIDs, (page-1)*size, size)
	if err != nil {
		return nil, false, apperr.Storage(err, "list feed entries")
	}
	exact := len(raw) == size
	if len(raw) == 0 {
		return nil, exact, nil
	}

	ids := make([]string, len(raw))
	for i, e := range raw {
		ids[i] = e.ID
	}

	var (
		counts map[string]model.Engagement
		liked  map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.entries.Engagement(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = s.likes.LikedEntryIDs(gctx, viewerID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, apperr.Storage(err, "load feed engagement")
	}

	now := s.now()
	out := make([]ScoredEntry, len(raw))
	for i, e := range raw {
		c := counts[e.ID]
		e.LikeCount = c.Likes
		e.CommentCount = c.Comments
		out[i] = ScoredEntry{
			Entry:   e,
			IsLiked: liked[e.ID],
			Score:   s.scorer.Score(c.Likes, c.Comments, e.CreatedAt, now),
		}
	}
	// 同分保持原有的时间倒序
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, exact, nil
}
