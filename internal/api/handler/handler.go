package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/feed"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// FeedService 信息流组装
type FeedService interface {
	Page(ctx context.Context, viewerID string, page, limit int) (*feed.Page, error)
}

// HealthCheck 健康检查依赖项
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Services 处理器依赖的全部服务
type Services struct {
	Feed      FeedService
	Entries   service.EntryService
	Likes     service.LikeService
	Relations service.RelationshipService
	Users     service.UserService
	Catalog   catalog.Catalog
	Checks    []HealthCheck
}

type Handler struct {
	feedService  FeedService
	entryService service.EntryService
	likeService  service.LikeService
	relService   service.RelationshipService
	userService  service.UserService
	catalog      catalog.Catalog
	checks       []HealthCheck
}

func New(s Services) *Handler {
	return &Handler{
		feedService:  s.Feed,
		entryService: s.Entries,
		likeService:  s.Likes,
		relService:   s.Relations,
		userService:  s.Users,
		catalog:      s.Catalog,
		checks:       s.Checks,
	}
}

// queryInt 读取整数查询参数，缺省返回 def，非法值渲染 400 并返回 false
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, key+" must be an integer")
		return 0, false
	}
	return v, true
}
