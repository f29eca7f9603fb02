package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// GetFeed 首页信息流
// @Summary 获取信息流（关注者记录按热度排序并穿插推荐）
// @Tags 信息流
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} feed.Page
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	p, err := h.feedService.Page(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}
