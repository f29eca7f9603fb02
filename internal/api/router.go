// Package api 组装 HTTP 路由与中间件
package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/config"
	_ "github.com/d60-Lab/watchhive/docs"
	"github.com/d60-Lab/watchhive/internal/api/handler"
	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// NewRouter limiter 为 nil 时不限流
func NewRouter(cfg *config.Config, h *handler.Handler, tokens middleware.TokenParser, limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := service.RegisterValidations(v); err != nil {
			logger.Error("register validations", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		otelgin.Middleware(cfg.Tracing.ServiceName),
		middleware.Logger(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1", middleware.Auth(tokens))
	if limiter != nil {
		v1.Use(limiter.Handler())
	}

	v1.GET("/feed", h.GetFeed)

	entries := v1.Group("/entries")
	{
		entries.GET("", h.ListEntries)
		entries.POST("", h.CreateEntry)
		entries.GET("/stats/summary", h.EntryStats)
		entries.GET("/:id", h.GetEntry)
		entries.PUT("/:id", h.UpdateEntry)
		entries.DELETE("/:id", h.DeleteEntry)
	}

	follows := v1.Group("/follows")
	{
		follows.GET("/requests", h.PendingRequests)
		follows.POST("/requests/:id/accept", h.AcceptRequest)
		follows.POST("/requests/:id/reject", h.RejectRequest)
		follows.GET("/stats/:userId", h.RelationStats)
		follows.POST("/:userId", h.Follow)
		follows.DELETE("/:userId", h.Unfollow)
		follows.GET("/:userId/following", h.ListFollowing)
		follows.GET("/:userId/followers", h.ListFans)
		follows.GET("/:userId/status", h.RelationStatus)
	}

	users := v1.Group("/users")
	{
		users.GET("/:id", h.GetUser)
		users.PUT("/me/privacy", h.UpdatePrivacy)
	}

	likes := v1.Group("/likes")
	{
		likes.POST("/:entryId", h.LikeEntry)
		likes.DELETE("/:entryId", h.UnlikeEntry)
	}

	v1.GET("/catalog/trending", h.Trending)

	return r
}
