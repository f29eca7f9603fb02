package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

// Response 错误响应体
type Response struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Message 简单消息响应
type Message struct {
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	if data == nil {
		data = Message{Message: "ok"}
	}
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: msg, Code: apperr.KindInvalid.String()})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Error: msg, Code: apperr.KindUnauthorized.String()})
}

// InternalError 记录并上报 5xx，不向客户端暴露内部细节
func InternalError(c *gin.Context, err error) {
	serverError(c, http.StatusInternalServerError, err)
}

func serverError(c *gin.Context, status int, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("kind", apperr.KindOf(err).String()),
	)
	if hub := sentry.CurrentHub(); hub != nil && hub.Client() != nil {
		hub.CaptureException(err)
	}
	msg := "internal server error"
	if status == http.StatusBadGateway {
		msg = "upstream service unavailable"
	}
	c.AbortWithStatusJSON(status, Response{Error: msg, Code: apperr.CodeOf(err)})
}

// StatusOf 错误分类 -> HTTP 状态码
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error 按错误分类渲染响应
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		serverError(c, status, err)
		return
	}
	c.AbortWithStatusJSON(status, Response{Error: err.Error(), Code: apperr.CodeOf(err)})
}
