package public

import (
	"strconv"
	"strings"

	handlershared "github.com/veluxe-market/internal/http/handlers/shared"
	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetBrokerDashboard 查询我的经纪人仪表盘
func (h *Handler) GetBrokerDashboard(c *gin.Context) {
	authCtx := handlershared.AuthFromContext(c)
	overview, err := h.BrokerService.Overview(authCtx.BrokerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, overview)
}

// ListMyCommissions 查询我的佣金记录
func (h *Handler) ListMyCommissions(c *gin.Context) {
	authCtx := handlershared.AuthFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.CommissionService.List(repository.CommissionListFilter{
		BrokerID: authCtx.BrokerID,
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListMySellers 查询我名下的卖家
func (h *Handler) ListMySellers(c *gin.Context) {
	authCtx := handlershared.AuthFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.BrokerService.ListSellers(authCtx.BrokerID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListMyNotifications 查询我的通知
func (h *Handler) ListMyNotifications(c *gin.Context) {
	authCtx := handlershared.AuthFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.NotificationService.ListByBroker(authCtx.BrokerID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListTiers 查询层级表
func (h *Handler) ListTiers(c *gin.Context) {
	tiers, err := h.TierService.ListTiers()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, tiers)
}
