package shared

import (
	"github.com/veluxe-market/internal/guard"

	"github.com/gin-gonic/gin"
)

// AuthContextKey 认证上下文在 gin.Context 中的键
const AuthContextKey = "auth_context"

// SetAuthContext 写入请求认证上下文
func SetAuthContext(c *gin.Context, authCtx guard.AuthContext) {
	c.Set(AuthContextKey, authCtx)
}

// AuthFromContext 读取请求认证上下文，缺失时返回未认证上下文
func AuthFromContext(c *gin.Context) guard.AuthContext {
	value, ok := c.Get(AuthContextKey)
	if !ok {
		return guard.AuthContext{}
	}
	if authCtx, ok := value.(guard.AuthContext); ok {
		return authCtx
	}
	return guard.AuthContext{}
}
