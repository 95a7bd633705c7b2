package admin

import (
	"errors"

	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将业务错误映射为统一响应
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid credentials")
	case errors.Is(err, service.ErrInvalidAddress):
		response.BadRequest(c, "invalid wallet address")
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, "invalid amount")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "record not found")
	case errors.Is(err, service.ErrInvalidStateTransition):
		response.BadRequest(c, "invalid state transition")
	case errors.Is(err, service.ErrTxHashRequired):
		response.BadRequest(c, "transaction hash required")
	default:
		logger.Errorw("admin_request_failed", "path", c.Request.URL.Path, "error", err)
		response.Error(c, response.CodeInternal, "internal error")
	}
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
