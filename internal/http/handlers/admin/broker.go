package admin

import (
	"strconv"
	"strings"

	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListBrokers 分页查询经纪人
func (h *Handler) ListBrokers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.BrokerListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	}
	if v, err := strconv.ParseUint(c.Query("tier_id"), 10, 64); err == nil {
		filter.TierID = uint(v)
	}

	rows, total, err := h.BrokerService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetBrokerOverview 查询指定经纪人概览
func (h *Handler) GetBrokerOverview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid broker id")
		return
	}

	overview, err := h.BrokerService.Overview(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, overview)
}

// UpdateBrokerStatusRequest 经纪人状态更新请求
type UpdateBrokerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBrokerStatus 更新经纪人状态
func (h *Handler) UpdateBrokerStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid broker id")
		return
	}

	var req UpdateBrokerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	broker, err := h.BrokerService.UpdateStatus(uint(id), strings.TrimSpace(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, broker)
}
