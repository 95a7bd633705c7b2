package guard

import (
	"net/http"
	"strings"

	"github.com/veluxe-market/internal/constants"
)

// AuthContext 单次请求的认证上下文
type AuthContext struct {
	Authenticated bool
	UserID        uint
	WalletAddress string
	Role          string
	BrokerID      uint
	SellerID      uint
}

// IsAdmin 判断是否管理员
func (c AuthContext) IsAdmin() bool {
	return c.Authenticated && c.Role == constants.RoleAdmin
}

// Decision 授权判定结果，拒绝时携带对外状态码与原因
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

// Allow 允许访问
func Allow() Decision {
	return Decision{Allowed: true}
}

// DenyUnauthenticated 拒绝未认证请求
func DenyUnauthenticated() Decision {
	return Decision{Allowed: false, Status: http.StatusUnauthorized, Reason: "authentication required"}
}

// DenyForbidden 拒绝权限不足请求
func DenyForbidden(reason string) Decision {
	if strings.TrimSpace(reason) == "" {
		reason = "insufficient permissions"
	}
	return Decision{Allowed: false, Status: http.StatusForbidden, Reason: reason}
}

// RequireAuthenticated 要求请求已认证
func RequireAuthenticated(c AuthContext) Decision {
	if !c.Authenticated {
		return DenyUnauthenticated()
	}
	return Allow()
}

// RequireRole 要求角色落在允许集合内，管理员一律放行
func RequireRole(c AuthContext, roles ...string) Decision {
	if !c.Authenticated {
		return DenyUnauthenticated()
	}
	if c.IsAdmin() {
		return Allow()
	}
	current := strings.TrimSpace(strings.ToLower(c.Role))
	for _, role := range roles {
		if current == strings.TrimSpace(strings.ToLower(role)) {
			return Allow()
		}
	}
	return DenyForbidden("role not permitted")
}

// RequireBroker 要求经纪人身份
func RequireBroker(c AuthContext) Decision {
	return RequireRole(c, constants.RoleBroker)
}

// RequireAdmin 要求管理员身份
func RequireAdmin(c AuthContext) Decision {
	if !c.Authenticated {
		return DenyUnauthenticated()
	}
	if !c.IsAdmin() {
		return DenyForbidden("admin required")
	}
	return Allow()
}

// RequireOwnership 要求访问者即资源归属人，管理员一律放行
func RequireOwnership(c AuthContext, ownerUserID uint, ownerWallet string) Decision {
	if !c.Authenticated {
		return DenyUnauthenticated()
	}
	if c.IsAdmin() {
		return Allow()
	}
	if ownerUserID != 0 && c.UserID == ownerUserID {
		return Allow()
	}
	wallet := strings.ToLower(strings.TrimSpace(ownerWallet))
	if wallet != "" && strings.ToLower(strings.TrimSpace(c.WalletAddress)) == wallet {
		return Allow()
	}
	return DenyForbidden("resource belongs to another account")
}

// RequireBrokerOwnership 要求访问者即目标经纪人本人，管理员一律放行
func RequireBrokerOwnership(c AuthContext, brokerID uint) Decision {
	if !c.Authenticated {
		return DenyUnauthenticated()
	}
	if c.IsAdmin() {
		return Allow()
	}
	if brokerID != 0 && c.BrokerID == brokerID {
		return Allow()
	}
	return DenyForbidden("resource belongs to another broker")
}
