package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/internal/api/middleware"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/internal/service"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// ListEntries 观看记录列表
// @Summary 查询观看记录（他人私密账号需已关注）
// @Tags 观看记录
// @Produce json
// @Security BearerAuth
// @Param userId query string false "用户ID，默认当前用户"
// @Param type query string false "MOVIE | TV_SHOW | EPISODE"
// @Param rating query int false "评分"
// @Param tag query string false "标签"
// @Param search query string false "标题/短评关键字"
// @Param sortBy query string false "watchedAt | createdAt | rating | title" default(watchedAt)
// @Param order query string false "asc | desc" default(desc)
// @Param limit query int false "每页数量" default(20)
// @Param offset query int false "偏移" default(0)
// @Success 200 {object} service.EntryList
// @Failure 403 {object} response.Response "私密账号"
// @Failure 404 {object} response.Response
// @Router /api/v1/entries [get]
func (h *Handler) ListEntries(c *gin.Context) {
	f := repository.EntryFilter{
		UserID: c.Query("userId"),
		Kind:   model.EntryKind(c.Query("type")),
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	}
	var ok bool
	if f.Limit, ok = queryInt(c, "limit", 20); !ok {
		return
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return
	}
	if _, set := c.GetQuery("rating"); set {
		rating, ok := queryInt(c, "rating", 0)
		if !ok {
			return
		}
		f.Rating = &rating
	}

	list, err := h.entryService.List(c.Request.Context(), middleware.UserID(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetEntry 单条记录
// @Summary 查询单条观看记录
// @Tags 观看记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录ID"
// @Success 200 {object} service.EntryWithUser
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/entries/{id} [get]
func (h *Handler) GetEntry(c *gin.Context) {
	e, err := h.entryService.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, e)
}

// CreateEntry 新建观看记录
// @Summary 新建观看记录（自动合并目录类型标签）
// @Tags 观看记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateEntryInput true "记录内容"
// @Success 201 {object} model.Entry
// @Failure 400 {object} response.Response
// @Router /api/v1/entries [post]
func (h *Handler) CreateEntry(c *gin.Context) {
	var in service.CreateEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.entryService.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// UpdateEntry 修改观看记录
// @Summary 修改观看记录（仅本人，catalogId 不可修改）
// @Tags 观看记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录ID"
// @Param request body service.UpdateEntryInput true "修改内容"
// @Success 200 {object} model.Entry
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/entries/{id} [put]
func (h *Handler) UpdateEntry(c *gin.Context) {
	var in service.UpdateEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.entryService.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, e)
}

// DeleteEntry 删除观看记录
// @Summary 删除观看记录（仅本人）
// @Tags 观看记录
// @Security BearerAuth
// @Param id path string true "记录ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /api/v1/entries/{id} [delete]
func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := h.entryService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EntryStats 个人统计
// @Summary 当前用户的观看统计
// @Tags 观看记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.EntryStats
// @Router /api/v1/entries/stats/summary [get]
func (h *Handler) EntryStats(c *gin.Context) {
	st, err := h.entryService.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}
