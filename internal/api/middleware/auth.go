package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/watchhive/pkg/jwtutil"
	"github.com/d60-Lab/watchhive/pkg/response"
)

// ContextUserID 认证通过后写入 gin.Context 的用户 ID 键
const ContextUserID = "userID"

// TokenParser 校验访问令牌
type TokenParser interface {
	Parse(token string) (*jwtutil.Claims, error)
}

// Auth 校验 Bearer 令牌并把用户 ID 放入上下文
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing Authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			response.Unauthorized(c, "invalid Authorization header format, expected 'Bearer <token>'")
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserID 当前请求的用户，未认证时为空
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
