package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/api/handler"
	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/cache"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/feed"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/jwtutil"
	"github.com/d60-Lab/watchhive/pkg/response"
)

type stubCatalog struct {
	trending []catalog.Item
	err      error
}

func (s *stubCatalog) Recommendations(context.Context, int64, catalog.MediaKind, int) (*catalog.Results, error) {
	return &catalog.Results{Results: []catalog.Item{{ID: 900, Title: "Similar"}}}, s.err
}

func (s *stubCatalog) Trending(context.Context, catalog.MediaKind, catalog.Window) (*catalog.Results, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Results{Page: 1, Results: s.trending}, nil
}

func (s *stubCatalog) Details(context.Context, int64, catalog.MediaKind) (*catalog.Detail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Detail{Genres: []catalog.Genre{{Name: "Thriller"}}}, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	tokens *jwtutil.Manager
	users  repository.UserRepository
}

func newTestServer(t *testing.T, cat catalog.Catalog, checks ...handler.HealthCheck) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Tracing: config.TracingConfig{ServiceName: "watchhive-test"},
		Feed: config.FeedConfig{
			DefaultPageSize: 20, MaxPageSize: 100, InterleaveEvery: 3,
			MaxPerSource: 10, EmptyFeedSuggestions: 15,
		},
	}

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	requests := repository.NewFollowRequestRepository(db)
	entries := repository.NewEntryRepository(db)
	likes := repository.NewLikeRepository(db)

	summaries := cache.NewUserSummaries(users, nil, time.Minute)
	graph := feed.NewSocialGraph(follows, nil, time.Minute)
	visibility := service.NewVisibility(users, follows)
	feedSvc := feed.NewService(
		graph,
		feed.NewEntrySource(entries, likes, feed.NewScorer(cfg.Feed)),
		feed.NewSuggestionSource(cat, entries, cfg.Feed.MaxPerSource, rand.New(rand.NewPCG(1, 2))),
		entries,
		cfg.Feed,
	)

	h := handler.New(handler.Services{
		Feed:      feedSvc,
		Entries:   service.NewEntryService(entries, visibility, cat),
		Likes:     service.NewLikeService(entries, likes, visibility),
		Relations: service.NewRelationshipService(users, follows, fans, requests, nil, graph, summaries),
		Users:     service.NewUserService(users, follows, summaries),
		Catalog:   cat,
		Checks:    checks,
	})
	tokens := jwtutil.NewManager("router-test-secret-0123", "watchhive", time.Hour)
	return &testServer{t: t, router: NewRouter(cfg, h, tokens, nil), tokens: tokens, users: users}
}

func (s *testServer) user(id string, private bool) {
	s.t.Helper()
	require.NoError(s.t, s.users.Create(context.Background(), &model.User{
		ID: id, Username: id, Email: id + "@example.com", IsPrivate: private,
	}))
}

func (s *testServer) do(userID, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		tok, err := s.tokens.Issue(userID, "")
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func trendingItems(n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Item{ID: int64(100 + i), Title: fmt.Sprintf("Trending %d", i), MediaType: "movie"}
	}
	return out
}

func TestPrivateAccountVisibilityEndToEnd(t *testing.T) {
	s := newTestServer(t, &stubCatalog{trending: trendingItems(5)})
	s.user("a", false)
	s.user("c", true)
	s.user("d", false)

	w := s.do("c", http.MethodPost, "/api/v1/entries", map[string]any{
		"catalogId": 603, "title": "The Matrix", "type": "MOVIE", "rating": 9, "tags": []string{"sci-fi"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Entry](t, w)
	assert.Equal(t, []string{"sci-fi", "Thriller"}, created.Tags)

	w = s.do("d", http.MethodGet, "/api/v1/entries?userId=c", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "private_account", decode[response.Response](t, w).Code)

	w = s.do("a", http.MethodPost, "/api/v1/follows/c", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode[map[string]string](t, w)["status"])

	w = s.do("a", http.MethodGet, "/api/v1/entries?userId=c", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "pending request must not grant access")

	w = s.do("c", http.MethodGet, "/api/v1/follows/requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[struct {
		List []model.FollowRequest `json:"list"`
	}](t, w)
	require.Len(t, pending.List, 1)

	w = s.do("d", http.MethodPost, "/api/v1/follows/requests/"+pending.List[0].ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do("c", http.MethodPost, "/api/v1/follows/requests/"+pending.List[0].ID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do("a", http.MethodGet, "/api/v1/entries?userId=c", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[service.EntryList](t, w)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "The Matrix", list.Entries[0].Title)

	w = s.do("a", http.MethodGet, "/api/v1/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do("d", http.MethodGet, "/api/v1/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 关注者的信息流包含私密账号的记录，未关注者看不到
	w = s.do("a", http.MethodGet, "/api/v1/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[feed.Page](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, feed.ItemEntry, page.Items[0].Type)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextPage)

	w = s.do("d", http.MethodGet, "/api/v1/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[feed.Page](t, w)
	require.Len(t, page.Items, 5)
	for _, it := range page.Items {
		assert.Equal(t, feed.ItemSuggestion, it.Type)
		assert.Equal(t, feed.ReasonTrendingWeek, it.Reason)
	}
}

func TestFeed_Pagination(t *testing.T) {
	s := newTestServer(t, &stubCatalog{trending: trendingItems(4)})
	s.user("a", false)
	s.user("b", false)
	require.Equal(t, http.StatusOK, s.do("a", http.MethodPost, "/api/v1/follows/b", nil).Code)

	for i := 0; i < 7; i++ {
		w := s.do("b", http.MethodPost, "/api/v1/entries", map[string]any{
			"catalogId": 1 + i, "title": fmt.Sprintf("Film %d", i), "type": "MOVIE",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do("a", http.MethodGet, "/api/v1/feed?page=1&limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[feed.Page](t, w)
	require.Len(t, page.Items, 4)
	assert.Equal(t, feed.ItemSuggestion, page.Items[3].Type)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 2, *page.NextPage)

	w = s.do("a", http.MethodGet, "/api/v1/feed?page=3&limit=3", nil)
	page = decode[feed.Page](t, w)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	w = s.do("a", http.MethodGet, "/api/v1/feed?page=9&limit=3", nil)
	page = decode[feed.Page](t, w)
	assert.Empty(t, page.Items)

	w = s.do("a", http.MethodGet, "/api/v1/feed?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeed_CatalogOutageStillServesEntries(t *testing.T) {
	s := newTestServer(t, &stubCatalog{err: apperr.Upstream(errors.New("catalog down"), "trending")})
	s.user("a", false)
	for i := 0; i < 3; i++ {
		w := s.do("a", http.MethodPost, "/api/v1/entries", map[string]any{
			"catalogId": 10 + i, "title": "x", "type": "TV_SHOW",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do("a", http.MethodGet, "/api/v1/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[feed.Page](t, w)
	assert.Len(t, page.Items, 3)
	for _, it := range page.Items {
		assert.Equal(t, feed.ItemEntry, it.Type)
		assert.True(t, it.IsWatched)
	}

	w = s.do("a", http.MethodGet, "/api/v1/catalog/trending", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t, &stubCatalog{})
	for _, path := range []string{"/api/v1/feed", "/api/v1/entries", "/api/v1/catalog/trending"} {
		w := s.do("", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestEntries_CRUD(t *testing.T) {
	s := newTestServer(t, &stubCatalog{})
	s.user("u", false)
	s.user("v", false)

	w := s.do("u", http.MethodPost, "/api/v1/entries", map[string]any{"catalogId": 1, "title": "x", "type": "PODCAST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("u", http.MethodPost, "/api/v1/entries", map[string]any{"catalogId": 1, "title": "x", "type": "MOVIE", "rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, "rating must be within 1..10")
	w = s.do("u", http.MethodPost, "/api/v1/entries", map[string]any{"catalogId": 1, "title": "x", "type": "MOVIE", "rating": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("u", http.MethodPost, "/api/v1/entries", map[string]any{"catalogId": 2, "title": "Up", "type": "MOVIE", "rating": 8})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[model.Entry](t, w).ID

	w = s.do("v", http.MethodPut, "/api/v1/entries/"+id, map[string]any{"title": "Down"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do("u", http.MethodPut, "/api/v1/entries/"+id, map[string]any{"title": "Up!", "catalogId": 99})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[model.Entry](t, w)
	assert.Equal(t, "Up!", updated.Title)
	assert.Equal(t, int64(2), updated.CatalogID)

	w = s.do("u", http.MethodGet, "/api/v1/entries?rating=8&sortBy=title&order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[service.EntryList](t, w).Entries, 1)

	w = s.do("u", http.MethodGet, "/api/v1/entries/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[service.EntryStats](t, w)
	assert.Equal(t, int64(1), stats.TotalEntries)
	assert.Equal(t, int64(1), stats.MovieCount)
	assert.InDelta(t, 8.0, stats.AverageRating, 1e-9)

	w = s.do("v", http.MethodPost, "/api/v1/likes/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"likeCount":1}`, w.Body.String())
	w = s.do("v", http.MethodPost, "/api/v1/likes/"+id, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do("v", http.MethodDelete, "/api/v1/likes/"+id, nil)
	assert.JSONEq(t, `{"liked":false,"likeCount":0}`, w.Body.String())

	w = s.do("u", http.MethodDelete, "/api/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do("u", http.MethodGet, "/api/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowsAndUsers(t *testing.T) {
	s := newTestServer(t, &stubCatalog{})
	s.user("a", false)
	s.user("b", false)

	assert.Equal(t, http.StatusBadRequest, s.do("a", http.MethodPost, "/api/v1/follows/a", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("a", http.MethodPost, "/api/v1/follows/ghost", nil).Code)

	w := s.do("a", http.MethodPost, "/api/v1/follows/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"following"}`, w.Body.String())
	assert.Equal(t, http.StatusConflict, s.do("a", http.MethodPost, "/api/v1/follows/b", nil).Code)

	w = s.do("a", http.MethodGet, "/api/v1/follows/b/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.RelationStatus](t, w).IsFollowing)

	w = s.do("a", http.MethodGet, "/api/v1/follows/stats/b", nil)
	assert.JSONEq(t, `{"followers":1,"following":0}`, w.Body.String())

	w = s.do("a", http.MethodGet, "/api/v1/follows/a/following?page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	following := decode[struct {
		Page int                  `json:"page"`
		List []*model.UserSummary `json:"list"`
	}](t, w)
	require.Len(t, following.List, 1)
	assert.Equal(t, "b", following.List[0].ID)

	w = s.do("a", http.MethodGet, "/api/v1/users/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[service.Profile](t, w)
	assert.Equal(t, int64(1), profile.Followers)
	assert.True(t, profile.IsFollowing)

	w = s.do("b", http.MethodPut, "/api/v1/users/me/privacy", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("b", http.MethodPut, "/api/v1/users/me/privacy", map[string]any{"isPrivate": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.UserSummary](t, w).IsPrivate)

	assert.Equal(t, http.StatusOK, s.do("a", http.MethodDelete, "/api/v1/follows/b", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("a", http.MethodDelete, "/api/v1/follows/b", nil).Code)
}

func TestCatalogTrending(t *testing.T) {
	s := newTestServer(t, &stubCatalog{trending: trendingItems(2)})
	s.user("u", false)

	w := s.do("u", http.MethodGet, "/api/v1/catalog/trending?mediaType=tv&window=day", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[catalog.Results](t, w).Results, 2)

	assert.Equal(t, http.StatusBadRequest, s.do("u", http.MethodGet, "/api/v1/catalog/trending?mediaType=book", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("u", http.MethodGet, "/api/v1/catalog/trending?window=year", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ok := handler.HealthCheck{Name: "database", Ping: func(context.Context) error { return nil }}
	s := newTestServer(t, &stubCatalog{}, ok)

	w := s.do("", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())

	w = s.do("", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "watchhive_http_requests_total")

	down := handler.HealthCheck{Name: "redis", Ping: func(context.Context) error { return fmt.Errorf("connection refused") }}
	s = newTestServer(t, &stubCatalog{}, ok, down)
	w = s.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimitedGroup(t *testing.T) {
	s := newTestServer(t, &stubCatalog{})
	s.user("u", false)
	limiter := middleware.NewRateLimiter(0.001, 1)
	s.router = NewRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}, handler.New(handler.Services{
		Catalog: &stubCatalog{},
	}), s.tokens, limiter)

	assert.Equal(t, http.StatusOK, s.do("u", http.MethodGet, "/api/v1/catalog/trending", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do("u", http.MethodGet, "/api/v1/catalog/trending", nil).Code)
}
