package public

import (
	handlershared "github.com/veluxe-market/internal/http/handlers/shared"
	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

// ReferralClickRequest 推荐点击记录请求
type ReferralClickRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
	VisitorKey   string `json:"visitor_key"`
}

// TrackReferralClick 记录推荐链接点击
// 无效推荐码同样返回成功，避免暴露码表。
func (h *Handler) TrackReferralClick(c *gin.Context) {
	var req ReferralClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.ReferralService.TrackClick(req.ReferralCode, req.VisitorKey); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// TrackReferralLink 记录推荐链接访问（短链形式，visitor_key 缺省回落到 IP）
func (h *Handler) TrackReferralLink(c *gin.Context) {
	visitorKey := c.Query("visitor_key")
	if visitorKey == "" {
		visitorKey = c.ClientIP()
	}
	if err := h.ReferralService.TrackClick(c.Param("code"), visitorKey); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// SellerRegisterRequest 卖家注册请求
type SellerRegisterRequest struct {
	Wallet       string `json:"wallet" binding:"required"`
	ReferralCode string `json:"referral_code"`
	VisitorKey   string `json:"visitor_key"`
}

// RegisterSeller 卖家注册并归因
func (h *Handler) RegisterSeller(c *gin.Context) {
	var req SellerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	seller, err := h.ReferralService.AttributeSeller(req.Wallet, req.ReferralCode, req.VisitorKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"seller_id":  seller.ID,
		"wallet":     service.RedactWallet(seller.WalletAddress),
		"attributed": seller.ReferredBy != nil,
	})
}

// RegisterBroker 开通经纪人档案
func (h *Handler) RegisterBroker(c *gin.Context) {
	authCtx := handlershared.AuthFromContext(c)
	broker, err := h.ReferralService.RegisterBroker(authCtx.UserID, authCtx.WalletAddress)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"broker_id":     broker.ID,
		"referral_code": broker.ReferralCode,
		"status":        broker.Status,
	})
}
