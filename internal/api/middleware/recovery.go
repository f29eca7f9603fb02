package middleware

import (
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/pkg/logger"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// Recovery 捕获 panic，记录堆栈并上报 sentry
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		logger.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		if hub := sentry.CurrentHub(); hub.Client() != nil {
			hub.Recover(rec)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: "internal server error",
			Code:  apperr.KindInternal.String(),
		})
	})
}
