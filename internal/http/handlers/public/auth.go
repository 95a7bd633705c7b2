package public

import (
	"github.com/veluxe-market/internal/http/response"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthChallengeRequest 登录挑战请求
type AuthChallengeRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// Challenge 签发钱包登录挑战
func (h *Handler) Challenge(c *gin.Context) {
	var req AuthChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	nonce, ttl, err := h.AuthService.Challenge(c.Request.Context(), req.Wallet)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"nonce":              nonce,
		"expires_in_seconds": int64(ttl.Seconds()),
	})
}

// AuthVerifyRequest 登录验证请求
type AuthVerifyRequest struct {
	Wallet    string `json:"wallet" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Verify 消费挑战并签发会话令牌
func (h *Handler) Verify(c *gin.Context) {
	var req AuthVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, authCtx, err := h.AuthService.VerifyWallet(c.Request.Context(), req.Wallet, req.Nonce, req.Signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token":  token,
		"role":   authCtx.Role,
		"wallet": service.RedactWallet(authCtx.WalletAddress),
	})
}
