package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/config"
	"github.com/d60-Lab/watchhive/internal/api"
	"github.com/d60-Lab/watchhive/internal/api/handler"
	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/internal/cache"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/feed"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/database"
	"github.com/d60-Lab/watchhive/pkg/jwtutil"
	"github.com/d60-Lab/watchhive/pkg/logger"
	"github.com/d60-Lab/watchhive/pkg/tracing"
)

// @title WatchHive API
// @version 1.0
// @description 信息流排序与内容混排服务
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	rdb, err := database.InitRedis(cfg)
	if err != nil {
		// 缓存不可用时降级为直接查库
		logger.Warn("redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	requestRepo := repository.NewFollowRequestRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	cat := catalog.NewCached(catalog.NewClient(cfg.Catalog), rdb, cfg.Catalog)
	summaries := cache.NewUserSummaries(userRepo, rdb, time.Hour)
	graph := feed.NewSocialGraph(followRepo, rdb, cfg.Feed.GraphCacheTTL)
	visibility := service.NewVisibility(userRepo, followRepo)

	replicator := service.NewFanReplicator(fanRepo, 10000)
	stopReplicator := replicator.Start(4)

	feedSvc := feed.NewService(
		graph,
		feed.NewEntrySource(entryRepo, likeRepo, feed.NewScorer(cfg.Feed)),
		feed.NewSuggestionSource(cat, entryRepo, cfg.Feed.MaxPerSource, nil),
		entryRepo,
		cfg.Feed,
	)

	checks := []handler.HealthCheck{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	h := handler.New(handler.Services{
		Feed:      feedSvc,
		Entries:   service.NewEntryService(entryRepo, visibility, cat),
		Likes:     service.NewLikeService(entryRepo, likeRepo, visibility),
		Relations: service.NewRelationshipService(userRepo, followRepo, fanRepo, requestRepo, replicator, graph, summaries),
		Users:     service.NewUserService(userRepo, followRepo, summaries),
		Catalog:   cat,
		Checks:    checks,
	})

	tokens := jwtutil.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst)
	if limiter != nil {
		go limiter.Run(ctx, 10*time.Minute)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(cfg, h, tokens, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// 先停止接收请求，再排空粉丝表复制队列
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := stopReplicator(shutdownCtx); err != nil {
		logger.Error("replicator drain", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("shutdown complete")
	return nil
}
