package service

import "errors"

// 业务错误定义，处理层据此映射对外状态码
var (
	ErrNotFound                = errors.New("record not found")
	ErrInvalidAddress          = errors.New("invalid wallet address")
	ErrReferralCodeNotFound    = errors.New("referral code not found")
	ErrBrokerSuspended         = errors.New("broker suspended")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrTxHashRequired          = errors.New("transaction hash required")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrRateLimitExceeded       = errors.New("rate limit exceeded")
	ErrNonceInvalidOrExpired   = errors.New("nonce invalid or expired")
	ErrInvalidTierTable        = errors.New("invalid tier table")
	ErrAttributionInconsistent = errors.New("attributed broker not found")
	ErrInvalidAmount           = errors.New("invalid amount")
)
