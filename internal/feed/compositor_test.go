package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/model"
)

type stubSuggestions struct {
	out []Suggestion
	err error
}

func (s stubSuggestions) Candidates(context.Context, string) ([]Suggestion, error) {
	return s.out, s.err
}

func feedConfig() config.FeedConfig {
	return config.FeedConfig{
		DefaultPageSize:      20,
		MaxPageSize:          100,
		InterleaveEvery:      3,
		MaxPerSource:         10,
		EmptyFeedSuggestions: 15,
	}
}

type fixture struct {
	follows *fakeFollows
	store   *fakeStore
}

func newFixture() *fixture {
	return &fixture{
		follows: &fakeFollows{edges: map[string][]string{}},
		store:   &fakeStore{},
	}
}

func (f *fixture) service(sugs SuggestionProvider) *Service {
	graph := NewSocialGraph(f.follows, nil, time.Minute)
	entries := NewEntrySource(f.store, f.store, DefaultScorer())
	return NewService(graph, entries, sugs, f.store, feedConfig())
}

func (f *fixture) addEntries(owner string, n int, newest time.Time) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%02d", owner, i)
		f.store.entries = append(f.store.entries, entryAt(id, owner, int64(1000+len(f.store.entries)), newest.Add(-time.Duration(i)*time.Hour)))
	}
}

func suggestionList(n int, reason string) []Suggestion {
	return label(items(1, n), reason, 0)
}

func countTypes(p *Page) (entries, suggestions int) {
	for _, it := range p.Items {
		if it.Type == ItemEntry {
			entries++
		} else {
			suggestions++
		}
	}
	return
}

func TestService_EmptyFirstPageShowsSuggestionsOnly(t *testing.T) {
	f := newFixture()
	svc := f.service(stubSuggestions{out: suggestionList(20, ReasonTrendingWeek)})

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)
	e, s := countTypes(page)
	assert.Zero(t, e)
	assert.Equal(t, 15, s)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextPage)
	assert.Equal(t, "suggestion-1", page.Items[0].ID)
	assert.Equal(t, ReasonTrendingWeek, page.Items[0].Reason)
}

func TestService_EmptyLaterPageIsEmpty(t *testing.T) {
	f := newFixture()
	svc := f.service(stubSuggestions{out: suggestionList(5, ReasonTrendingWeek)})

	page, err := svc.Page(context.Background(), "v", 2, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestService_FollowedUserWithFiveEntries(t *testing.T) {
	f := newFixture()
	f.follows.edges["v"] = []string{"x"}
	f.addEntries("x", 5, time.Now())
	f.addEntries("stranger", 4, time.Now())
	svc := f.service(stubSuggestions{out: suggestionList(4, ReasonTrendingWeek)})

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)

	require.Len(t, page.Items, 6)
	types := make([]ItemType, len(page.Items))
	for i, it := range page.Items {
		types[i] = it.Type
	}
	assert.Equal(t, []ItemType{ItemEntry, ItemEntry, ItemEntry, ItemSuggestion, ItemEntry, ItemEntry}, types)
	for _, it := range page.Items {
		if it.Type == ItemEntry {
			assert.Equal(t, "x", it.Entry.UserID)
			require.NotNil(t, it.Entry.User)
			assert.Equal(t, "x", it.Entry.User.Username)
		}
	}
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextPage)
	assert.Equal(t, "suggestion-1-1-2", page.Items[3].ID)
	assert.Equal(t, page.Items[2].Timestamp, page.Items[3].Timestamp)
}

func TestService_InterleavingCadence(t *testing.T) {
	f := newFixture()
	f.addEntries("v", 20, time.Now())
	svc := f.service(stubSuggestions{out: suggestionList(2, ReasonTrendingWeek)})

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)

	run := 0
	for _, it := range page.Items {
		if it.Type == ItemEntry {
			run++
			assert.LessOrEqual(t, run, 3, "more than 3 entries without a suggestion")
		} else {
			assert.Equal(t, 3, run)
			run = 0
		}
	}
	e, s := countTypes(page)
	assert.Equal(t, 20, e)
	assert.Equal(t, 6, s)

	// 两条推荐循环复用，ID 仍唯一
	seen := make(map[string]bool)
	for _, it := range page.Items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
}

func TestService_SuggestionCursorStartsByPage(t *testing.T) {
	f := newFixture()
	f.addEntries("v", 12, time.Now())
	svc := f.service(stubSuggestions{out: suggestionList(5, ReasonTrendingWeek)})

	page, err := svc.Page(context.Background(), "v", 2, 6)
	require.NoError(t, err)

	var got []string
	for _, it := range page.Items {
		if it.Type == ItemSuggestion {
			got = append(got, it.ID)
		}
	}
	// 第 2 页从下标 2 开始：目录 ID 3、4
	assert.Equal(t, []string{"suggestion-3-2-2", "suggestion-4-2-5"}, got)
}

func TestService_PaginationExactness(t *testing.T) {
	f := newFixture()
	f.addEntries("v", 7, time.Now())
	svc := f.service(stubSuggestions{})
	ctx := context.Background()

	full, err := svc.Page(ctx, "v", 1, 7)
	require.NoError(t, err)
	assert.True(t, full.HasMore)
	require.NotNil(t, full.NextPage)
	assert.Equal(t, 2, *full.NextPage)

	short, err := svc.Page(ctx, "v", 2, 5)
	require.NoError(t, err)
	e, _ := countTypes(short)
	assert.Equal(t, 2, e)
	assert.False(t, short.HasMore)
	assert.Nil(t, short.NextPage)
}

func TestService_NoSuggestionsStillServesEntries(t *testing.T) {
	f := newFixture()
	f.addEntries("v", 6, time.Now())
	svc := f.service(stubSuggestions{err: apperr.Upstream(errBoom, "catalog down")})

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)
	e, s := countTypes(page)
	assert.Equal(t, 6, e)
	assert.Zero(t, s)
}

func TestService_CatalogOutageDegradesToTrendingNow(t *testing.T) {
	f := newFixture()
	f.addEntries("v", 6, time.Now())
	last := f.store.entries[0]
	f.store.latest = map[string]*model.Entry{"v": last}
	cat := &fakeCatalog{
		recErr:      errBoom,
		trending:    items(50, 3),
		trendingErr: []error{errBoom},
	}
	sugs := NewSuggestionSource(cat, f.store, 10, seeded(9))
	svc := f.service(sugs)

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)
	_, s := countTypes(page)
	assert.Equal(t, 2, s)
	for _, it := range page.Items {
		if it.Type == ItemSuggestion {
			assert.Equal(t, ReasonTrendingNow, it.Reason)
		}
	}
}

func TestService_WatchedAndLikedFlags(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.follows.edges["v"] = []string{"x"}
	f.store.entries = []*model.Entry{
		entryAt("mine", "v", 77, now.Add(-3*time.Hour)),
		entryAt("theirs-1", "x", 77, now.Add(-1*time.Hour)),
		entryAt("theirs-2", "x", 88, now.Add(-2*time.Hour)),
	}
	f.store.liked = map[string]map[string]bool{"v": {"theirs-2": true}}
	svc := f.service(stubSuggestions{out: []Suggestion{
		{Item: catalog.Item{ID: 77, Title: "seen"}, Reason: ReasonTrendingWeek},
	}})

	page, err := svc.Page(context.Background(), "v", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	byID := make(map[string]Item)
	for _, it := range page.Items {
		byID[it.ID] = it
	}
	assert.True(t, byID["theirs-1"].IsWatched)
	assert.False(t, byID["theirs-2"].IsWatched)
	assert.True(t, byID["theirs-2"].IsLiked)
	assert.False(t, byID["theirs-1"].IsLiked)
	assert.True(t, page.Items[3].IsWatched)
	assert.Equal(t, ItemSuggestion, page.Items[3].Type)
}

func TestService_GraphFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.follows.err = errBoom
	svc := f.service(stubSuggestions{out: suggestionList(3, ReasonTrendingWeek)})

	_, err := svc.Page(context.Background(), "v", 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}

func TestService_EntryFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.store.listErr = errBoom
	svc := f.service(stubSuggestions{out: suggestionList(3, ReasonTrendingWeek)})

	_, err := svc.Page(context.Background(), "v", 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}

func TestService_Normalize(t *testing.T) {
	svc := newFixture().service(stubSuggestions{})
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, 5, 1, 5},
		{2, 500, 2, 100},
		{4, 20, 4, 20},
	}
	for _, tt := range tests {
		p, l := svc.Normalize(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantLimit, l)
	}
}
