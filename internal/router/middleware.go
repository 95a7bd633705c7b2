package router

import (
	"strings"
	"time"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/guard"
	handlershared "github.com/veluxe-market/internal/http/handlers/shared"
	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// SessionAuthMiddleware 钱包会话解析中间件
// 无凭证或凭证无效时写入未认证上下文，由守卫规则决定是否放行。
func SessionAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			handlershared.SetAuthContext(c, guard.AuthContext{})
			c.Next()
			return
		}
		authCtx, err := authService.ParseSessionToken(token)
		if err != nil {
			handlershared.SetAuthContext(c, guard.AuthContext{})
			c.Next()
			return
		}
		handlershared.SetAuthContext(c, *authCtx)
		c.Next()
	}
}

// AdminJWTMiddleware 管理端鉴权中间件
func AdminJWTMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			response.Unauthorized(c, "authorization header missing")
			c.Abort()
			return
		}
		claims, err := authService.ParseAdminToken(token)
		if err != nil || claims.AdminID == 0 {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)
		handlershared.SetAuthContext(c, guard.AuthContext{
			Authenticated: true,
			Role:          constants.RoleAdmin,
		})
		c.Next()
	}
}

// Guard 授权守卫中间件，按判定结果映射 401/403
func Guard(rule func(guard.AuthContext) guard.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := rule(AuthFromContext(c))
		if !decision.Allowed {
			applyDecision(c, decision)
			return
		}
		c.Next()
	}
}

// AuthFromContext 读取请求的认证上下文
func AuthFromContext(c *gin.Context) guard.AuthContext {
	return handlershared.AuthFromContext(c)
}

func applyDecision(c *gin.Context, decision guard.Decision) {
	switch decision.Status {
	case response.CodeForbidden:
		response.Forbidden(c, decision.Reason)
	default:
		response.Unauthorized(c, decision.Reason)
	}
	c.Abort()
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
