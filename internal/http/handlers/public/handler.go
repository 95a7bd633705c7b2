package public

import "github.com/veluxe-market/internal/provider"

// Handler 公开/用户侧接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
