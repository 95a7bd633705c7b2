package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordSaleRequest 销售入账请求
type RecordSaleRequest struct {
	SellerWallet string       `json:"seller_wallet" binding:"required"`
	Amount       models.Money `json:"amount" binding:"required"`
}

// RecordSale 记录一笔销售并结算佣金
func (h *Handler) RecordSale(c *gin.Context) {
	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	commission, err := h.CommissionService.RecordSale(req.SellerWallet, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if commission == nil {
		// 卖家无有效归因，销售正常入账但不产生佣金
		response.Success(c, gin.H{
			"wallet":     service.RedactWallet(req.SellerWallet),
			"commission": nil,
		})
		return
	}
	response.Success(c, commission)
}

// UpdateCommissionStatusRequest 佣金状态更新请求
type UpdateCommissionStatusRequest struct {
	Status string `json:"status" binding:"required"`
	TxHash string `json:"tx_hash"`
}

// UpdateCommissionStatus 更新佣金发放状态
func (h *Handler) UpdateCommissionStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid commission id")
		return
	}

	var req UpdateCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	commission, err := h.CommissionService.UpdateStatus(uint(id), strings.TrimSpace(req.Status), strings.TrimSpace(req.TxHash))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, commission)
}

// ListCommissions 分页查询佣金记录
func (h *Handler) ListCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.CommissionListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}
	if v, err := strconv.ParseUint(c.Query("broker_id"), 10, 64); err == nil {
		filter.BrokerID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("seller_id"), 10, 64); err == nil {
		filter.SellerID = uint(v)
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	rows, total, err := h.CommissionService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
