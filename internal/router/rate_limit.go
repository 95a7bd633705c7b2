package router

import (
	"fmt"
	"strings"

	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

// RateLimitKeyFunc 生成限流身份的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitMiddleware 固定窗口限流中间件
// 每个类别独立计数；拒绝时返回 429 并携带重试等待秒数。
func RateLimitMiddleware(svc *service.RateLimitService, category string, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.Next()
			return
		}

		identity := ""
		if keyFunc != nil {
			identity = strings.TrimSpace(keyFunc(c))
		}
		if identity == "" {
			identity = c.ClientIP()
		}

		result := svc.Check(c.Request.Context(), category, identity)
		if !result.Allowed {
			response.TooManyRequests(c, result.RetryAfterSeconds)
			c.Abort()
			return
		}
		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流身份
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByAuthOrIP 已认证请求按用户身份计数，匿名请求按 IP 计数
func KeyByAuthOrIP(c *gin.Context) string {
	authCtx := AuthFromContext(c)
	if authCtx.Authenticated && authCtx.UserID != 0 {
		return fmt.Sprintf("u%d", authCtx.UserID)
	}
	return c.ClientIP()
}
