package admin

import (
	"github.com/veluxe-market/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, err := h.AuthService.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}
