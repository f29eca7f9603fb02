package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/pkg/response"
)

func (h *Handler) pageParams(c *gin.Context) (page, pageSize int, ok bool) {
	if page, ok = queryInt(c, "page", 1); !ok {
		return
	}
	pageSize, ok = queryInt(c, "page_size", 10)
	return
}

// Follow 关注用户
// @Summary 关注用户（私密账号生成待处理申请）
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param userId path string true "目标用户ID"
// @Success 200 {object} map[string]string "status: following | pending"
// @Failure 400 {object} response.Response "不能关注自己"
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response "已关注或申请待处理"
// @Router /api/v1/follows/{userId} [post]
func (h *Handler) Follow(c *gin.Context) {
	state, err := h.relService.Follow(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": state})
}

// Unfollow 取消关注
// @Summary 取消关注（同时撤回待处理申请）
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param userId path string true "目标用户ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{userId} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.relService.Unfollow(c.Request.Context(), middleware.UserID(c), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// PendingRequests 收到的待处理关注申请
// @Summary 查询收到的关注申请
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/follows/requests [get]
func (h *Handler) PendingRequests(c *gin.Context) {
	page, pageSize, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, err := h.relService.PendingRequests(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// AcceptRequest 同意关注申请
// @Summary 同意关注申请（仅接收者）
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param id path string true "申请ID"
// @Success 200 {object} model.FollowRequest
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response "申请已处理"
// @Router /api/v1/follows/requests/{id}/accept [post]
func (h *Handler) AcceptRequest(c *gin.Context) {
	req, err := h.relService.AcceptRequest(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, req)
}

// RejectRequest 拒绝关注申请
// @Summary 拒绝关注申请（仅接收者）
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param id path string true "申请ID"
// @Success 200 {object} model.FollowRequest
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response "申请已处理"
// @Router /api/v1/follows/requests/{id}/reject [post]
func (h *Handler) RejectRequest(c *gin.Context) {
	req, err := h.relService.RejectRequest(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, req)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Security BearerAuth
// @Param userId path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/follows/{userId}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, pageSize, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, err := h.relService.ListFollowing(c.Request.Context(), c.Param("userId"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFans 查询某用户的粉丝
// @Summary 查询粉丝列表（来自冗余表）
// @Tags 关系链
// @Security BearerAuth
// @Param userId path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/follows/{userId}/followers [get]
func (h *Handler) ListFans(c *gin.Context) {
	page, pageSize, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, err := h.relService.ListFans(c.Request.Context(), c.Param("userId"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// RelationStatus 当前用户与目标用户的关系
// @Summary 查询关注状态
// @Tags 关系链
// @Security BearerAuth
// @Param userId path string true "目标用户ID"
// @Success 200 {object} service.RelationStatus
// @Router /api/v1/follows/{userId}/status [get]
func (h *Handler) RelationStatus(c *gin.Context) {
	st, err := h.relService.Status(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}

// RelationStats 关注/粉丝数
// @Summary 查询关注数与粉丝数
// @Tags 关系链
// @Security BearerAuth
// @Param userId path string true "用户ID"
// @Success 200 {object} service.RelationStats
// @Router /api/v1/follows/stats/{userId} [get]
func (h *Handler) RelationStats(c *gin.Context) {
	st, err := h.relService.Stats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}
