package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/model"
)

var errBoom = errors.New("boom")

type fakeFollows struct {
	mu    sync.Mutex
	edges map[string][]string
	calls int
	err   error
}

func (f *fakeFollows) ListFolloweeIDs(_ context.Context, followerID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.edges[followerID]...), nil
}

// fakeStore 内存版记录存储，ListByOwners 按 created_at 倒序
type fakeStore struct {
	entries    []*model.Entry
	engagement map[string]model.Engagement
	liked      map[string]map[string]bool
	latest     map[string]*model.Entry
	listErr    error
	engErr     error
}

func (s *fakeStore) ListByOwners(_ context.Context, ownerIDs []string, offset, limit int) ([]*model.Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var matched []*model.Entry
	for _, e := range s.entries {
		if owners[e.UserID] {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func (s *fakeStore) Engagement(_ context.Context, ids []string) (map[string]model.Engagement, error) {
	if s.engErr != nil {
		return nil, s.engErr
	}
	out := make(map[string]model.Engagement)
	for _, id := range ids {
		if e, ok := s.engagement[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (s *fakeStore) LikedEntryIDs(_ context.Context, userID string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range ids {
		if s.liked[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (s *fakeStore) LatestWatched(_ context.Context, userID string) (*model.Entry, error) {
	return s.latest[userID], nil
}

func (s *fakeStore) WatchedCatalogIDs(_ context.Context, userID string) ([]int64, error) {
	var ids []int64
	for _, e := range s.entries {
		if e.UserID == userID {
			ids = append(ids, e.CatalogID)
		}
	}
	return ids, nil
}

type fakeCatalog struct {
	mu          sync.Mutex
	recs        map[int64][]catalog.Item
	recKinds    []catalog.MediaKind
	trending    []catalog.Item
	recErr      error
	trendingErr []error // 依次消费，耗尽后返回 nil
	trendCalls  int
}

func (c *fakeCatalog) Recommendations(_ context.Context, id int64, kind catalog.MediaKind, _ int) (*catalog.Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recKinds = append(c.recKinds, kind)
	if c.recErr != nil {
		return nil, c.recErr
	}
	return &catalog.Results{Results: c.recs[id]}, nil
}

func (c *fakeCatalog) Trending(context.Context, catalog.MediaKind, catalog.Window) (*catalog.Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trendCalls++
	if len(c.trendingErr) > 0 {
		err := c.trendingErr[0]
		c.trendingErr = c.trendingErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return &catalog.Results{Results: c.trending}, nil
}

func (c *fakeCatalog) Details(_ context.Context, id int64, _ catalog.MediaKind) (*catalog.Detail, error) {
	return &catalog.Detail{ID: id}, nil
}

func items(from, n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		id := int64(from + i)
		out[i] = catalog.Item{ID: id, Title: fmt.Sprintf("title-%d", id)}
	}
	return out
}

func entryAt(id, owner string, catalogID int64, createdAt time.Time) *model.Entry {
	return &model.Entry{
		ID: id, UserID: owner, CatalogID: catalogID, Title: id,
		Kind: model.EntryKindMovie, CreatedAt: createdAt, WatchedAt: createdAt,
		User: &model.User{ID: owner, Username: owner},
	}
}
