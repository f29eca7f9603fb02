package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/pkg/response"
)

type privacyRequest struct {
	IsPrivate *bool `json:"isPrivate" binding:"required"`
}

// GetUser 用户主页
// @Summary 查询用户资料及关注数
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} service.Profile
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	p, err := h.userService.Profile(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdatePrivacy 切换私密账号
// @Summary 设置账号是否私密
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body privacyRequest true "私密设置"
// @Success 200 {object} model.UserSummary
// @Failure 400 {object} response.Response
// @Router /api/v1/users/me/privacy [put]
func (h *Handler) UpdatePrivacy(c *gin.Context) {
	var req privacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.userService.SetPrivacy(c.Request.Context(), middleware.UserID(c), *req.IsPrivate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}
