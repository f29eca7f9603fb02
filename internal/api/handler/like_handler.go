package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/pkg/response"
)

type likeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// LikeEntry 点赞
// @Summary 点赞观看记录
// @Tags 点赞
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "记录ID"
// @Success 200 {object} likeResponse
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response "已点赞"
// @Router /api/v1/likes/{entryId} [post]
func (h *Handler) LikeEntry(c *gin.Context) {
	n, err := h.likeService.Like(c.Request.Context(), middleware.UserID(c), c.Param("entryId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, likeResponse{Liked: true, LikeCount: n})
}

// UnlikeEntry 取消点赞
// @Summary 取消点赞
// @Tags 点赞
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "记录ID"
// @Success 200 {object} likeResponse
// @Failure 404 {object} response.Response
// @Router /api/v1/likes/{entryId} [delete]
func (h *Handler) UnlikeEntry(c *gin.Context) {
	n, err := h.likeService.Unlike(c.Request.Context(), middleware.UserID(c), c.Param("entryId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, likeResponse{Liked: false, LikeCount: n})
}
