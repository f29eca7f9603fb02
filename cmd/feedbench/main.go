package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/feed"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/pkg/database"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// offlineCatalog 未配置 API key 时使用的固定目录，避免压测打到外部服务
type offlineCatalog struct{ items []catalog.Item }

func newOfflineCatalog(n int) *offlineCatalog {
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{ID: int64(10000 + i), Title: fmt.Sprintf("Trending %d", i), MediaType: "movie", Popularity: float64(n - i)}
	}
	return &offlineCatalog{items: items}
}

func (c *offlineCatalog) Recommendations(context.Context, int64, catalog.MediaKind, int) (*catalog.Results, error) {
	return &catalog.Results{Page: 1, Results: c.items[len(c.items)/2:]}, nil
}

func (c *offlineCatalog) Trending(context.Context, catalog.MediaKind, catalog.Window) (*catalog.Results, error) {
	return &catalog.Results{Page: 1, Results: c.items}, nil
}

func (c *offlineCatalog) Details(_ context.Context, id int64, _ catalog.MediaKind) (*catalog.Detail, error) {
	return &catalog.Detail{ID: id, Genres: []catalog.Genre{{ID: 18, Name: "Drama"}}}, nil
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init("warn", cfg.Log.Format)
	db := must(database.InitDB(cfg))
	rdb := must(database.InitRedis(cfg))

	AUTHORS := envInt("AUTHORS", 200)   // viewer 关注的人数
	ENTRIES := envInt("ENTRIES", 50)    // 每人记录数
	ROUNDS := envInt("ROUNDS", 200)     // 每页请求次数
	PAGES := envInt("PAGES", 5)         // 压测的页数
	LIMIT := envInt("LIMIT", 20)        // 每页大小
	ENGAGERS := envInt("ENGAGERS", 100) // 点赞/评论用户数

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 7))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	viewer := &model.User{Username: "viewer-" + uuid.NewString()[:8]}
	viewer.Email = viewer.Username + "@example.com"
	check(userRepo.Create(ctx, viewer))

	engagers := make([]string, ENGAGERS)
	for i := range engagers {
		u := &model.User{Username: "eng-" + uuid.NewString()[:8]}
		u.Email = u.Username + "@example.com"
		check(userRepo.Create(ctx, u))
		engagers[i] = u.ID
	}

	// 作者与记录：创建时间分布在过去 7 天内，互动数随机
	seedStart := time.Now()
	now := time.Now()
	for a := 0; a < AUTHORS; a++ {
		author := &model.User{Username: "author-" + uuid.NewString()[:8]}
		author.Email = author.Username + "@example.com"
		check(userRepo.Create(ctx, author))
		check(followRepo.Create(ctx, viewer.ID, author.ID))

		for e := 0; e < ENTRIES; e++ {
			entry := &model.Entry{
				UserID:    author.ID,
				CatalogID: int64(rng.IntN(20000) + 1),
				Title:     fmt.Sprintf("Entry %d-%d", a, e),
				Kind:      model.EntryKindMovie,
				WatchedAt: now.Add(-time.Duration(rng.IntN(7*24*60)) * time.Minute),
			}
			entry.CreatedAt = entry.WatchedAt
			check(entryRepo.Create(ctx, entry))
			for l := rng.IntN(8); l > 0; l-- {
				_, _ = likeRepo.Create(ctx, engagers[rng.IntN(len(engagers))], entry.ID)
			}
			for c := rng.IntN(3); c > 0; c-- {
				_ = commentRepo.Create(ctx, &model.Comment{UserID: engagers[rng.IntN(len(engagers))], EntryID: entry.ID, Content: "nice"})
			}
		}
	}
	seedDur := time.Since(seedStart)

	var cat catalog.Catalog = newOfflineCatalog(40)
	if cfg.Catalog.APIKey != "" {
		cat = catalog.NewCached(catalog.NewClient(cfg.Catalog), rdb, cfg.Catalog)
	}
	svc := feed.NewService(
		feed.NewSocialGraph(followRepo, rdb, cfg.Feed.GraphCacheTTL),
		feed.NewEntrySource(entryRepo, likeRepo, feed.NewScorer(cfg.Feed)),
		feed.NewSuggestionSource(cat, entryRepo, cfg.Feed.MaxPerSource, nil),
		entryRepo,
		cfg.Feed,
	)

	fmt.Printf("AUTHORS=%d ENTRIES=%d ROUNDS=%d PAGES=%d LIMIT=%d seed=%v\n", AUTHORS, ENTRIES, ROUNDS, PAGES, LIMIT, seedDur)
	for p := 1; p <= PAGES; p++ {
		lat := make([]time.Duration, 0, ROUNDS)
		items, suggestions := 0, 0
		for r := 0; r < ROUNDS; r++ {
			st := time.Now()
			page, err := svc.Page(ctx, viewer.ID, p, LIMIT)
			if err != nil {
				panic(err)
			}
			lat = append(lat, time.Since(st))
			if r == 0 {
				items = len(page.Items)
				for _, it := range page.Items {
					if it.Type == feed.ItemSuggestion {
						suggestions++
					}
				}
			}
		}
		fmt.Printf("page=%d items=%d suggestions=%d p50=%v p95=%v p99=%v\n",
			p, items, suggestions, pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	}
}
