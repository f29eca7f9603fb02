package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/cache"
	"github.com/d60-Lab/watchhive/internal/feed"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/database"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
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

func main() {
	cfg := must(config.Load())
	_ = logger.Init("warn", cfg.Log.Format)
	db := must(database.InitDB(cfg))
	rdb := must(database.InitRedis(cfg))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	replicator := service.NewFanReplicator(fanRepo, 100000)
	stop := replicator.Start(8)
	relSvc := service.NewRelationshipService(
		userRepo, followRepo, fanRepo,
		repository.NewFollowRequestRepository(db),
		replicator,
		feed.NewSocialGraph(followRepo, rdb, cfg.Feed.GraphCacheTTL),
		cache.NewUserSummaries(userRepo, rdb, time.Hour),
	)

	ctx := context.Background()
	N := envInt("N", 10000)
	CONC := envInt("CONC", 1)
	PAGE := envInt("PAGE", 50)

	// u0 为被关注的热门账号，其余用户都关注它
	celeb := model.User{ID: "u0", Username: "u0", Email: "u0@example.com"}
	_ = db.Where("id = ?", celeb.ID).FirstOrCreate(&celeb).Error
	users := make([]model.User, N)
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@example.com"}
	}
	_ = db.CreateInBatches(&users, 1000).Error

	asyncRecs := make([]time.Duration, 0, N)
	asyncCh := make(chan time.Duration, N)
	repMetrics := replicator.Metrics()
	repRecs := make([]time.Duration, 0, N)
	doneRep := make(chan struct{})
	repDone := make(chan struct{})
	go func() {
		defer close(repDone)
		timeout := time.NewTimer(5 * time.Minute)
		defer timeout.Stop()
		for {
			select {
			case d := <-repMetrics:
				repRecs = append(repRecs, d)
			case <-doneRep:
				return
			case <-timeout.C:
				return
			}
		}
	}()

	maxQ := 0
	quitSample := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if q := replicator.QueueLen(); q > maxQ {
					maxQ = q
				}
			case <-quitSample:
				return
			}
		}
	}()

	t0 := time.Now()
	workers := min(CONC, N)
	jobs := make(chan int, N)
	for i := 0; i < N; i++ {
		jobs <- i
	}
	close(jobs)
	failures := make(chan int, workers)
	for w := 0; w < workers; w++ {
		go func() {
			failed := 0
			for i := range jobs {
				st := time.Now()
				if _, err := relSvc.Follow(ctx, users[i].ID, celeb.ID); err != nil {
					failed++
				}
				asyncCh <- time.Since(st)
			}
			failures <- failed
		}()
	}
	failed := 0
	for w := 0; w < workers; w++ {
		failed += <-failures
	}
	close(asyncCh)
	for d := range asyncCh {
		asyncRecs = append(asyncRecs, d)
	}
	asyncDur := time.Since(t0)
	close(quitSample)

	// 同步双写对照：follows + fans 两次写入
	drainStart := time.Now()
	t1 := time.Now()
	for i := 0; i < N; i++ {
		_ = followRepo.Create(ctx, celeb.ID, users[i].ID)
		_ = fanRepo.Create(ctx, users[i].ID, celeb.ID)
	}
	syncDur := time.Since(t1)

	q0 := time.Now()
	_, _ = relSvc.ListFans(ctx, celeb.ID, 1, PAGE)
	fansDur := time.Since(q0)

	q1 := time.Now()
	_, _ = relSvc.ListFollowing(ctx, celeb.ID, 1, PAGE)
	follDur := time.Since(q1)

	_ = stop(context.Background())
	drainDur := time.Since(drainStart)
	close(doneRep)
	<-repDone

	fmt.Printf("N=%d, CONC=%d, PAGE=%d, failed=%d\n", N, CONC, PAGE, failed)
	fmt.Printf("Async follow latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		asyncDur, asyncDur/time.Duration(N), pct(asyncRecs, 0.50), pct(asyncRecs, 0.95), pct(asyncRecs, 0.99))
	fmt.Printf("Sync (2 writes) total: %v, per op: %v\n", syncDur, syncDur/time.Duration(N))
	fmt.Printf("Query fans(%d) latency: %v\n", PAGE, fansDur)
	fmt.Printf("Query following(%d) latency: %v\n", PAGE, follDur)
	if len(repRecs) > 0 {
		fmt.Printf("Replication landing: samples=%d, p50=%v, p95=%v, p99=%v, maxQueue=%d, drain=%v\n",
			len(repRecs), pct(repRecs, 0.50), pct(repRecs, 0.95), pct(repRecs, 0.99), maxQ, drainDur)
	}
}
