package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// Trending 目录趋势
// @Summary 查询目录趋势（缓存 + 重试）
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param mediaType query string false "all | movie | tv" default(all)
// @Param window query string false "day | week" default(week)
// @Success 200 {object} catalog.Results
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response "目录服务不可用"
// @Router /api/v1/catalog/trending [get]
func (h *Handler) Trending(c *gin.Context) {
	media := catalog.MediaKind(c.DefaultQuery("mediaType", string(catalog.MediaAll)))
	window := catalog.Window(c.DefaultQuery("window", string(catalog.WindowWeek)))
	if !media.Valid() {
		response.BadRequest(c, "mediaType must be one of all, movie, tv")
		return
	}
	if !window.Valid() {
		response.BadRequest(c, "window must be day or week")
		return
	}
	res, err := h.catalog.Trending(c.Request.Context(), media, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
