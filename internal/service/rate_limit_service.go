package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/kv"
	"github.com/veluxe-market/internal/logger"
)

// RateLimitRule 单类别限流规则
type RateLimitRule struct {
	Window      time.Duration
	MaxRequests int
}

// RateLimitResult 限流判定结果
type RateLimitResult struct {
	Allowed           bool
	Remaining         int64
	RetryAfterSeconds int64
}

// RateLimitService 固定窗口限流，按类别独立计数
type RateLimitService struct {
	store kv.Store
	rules map[string]RateLimitRule
}

// NewRateLimitService 创建限流服务
func NewRateLimitService(store kv.Store, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		store: store,
		rules: map[string]RateLimitRule{
			constants.RateLimitCategoryAuth:      ruleFromConfig(cfg.Auth, 60, 5),
			constants.RateLimitCategoryRead:      ruleFromConfig(cfg.Read, 60, 60),
			constants.RateLimitCategorySensitive: ruleFromConfig(cfg.Sensitive, 60, 3),
		},
	}
}

func ruleFromConfig(cfg config.RateLimitRuleConfig, defaultWindowSec, defaultMax int) RateLimitRule {
	windowSec := cfg.WindowSeconds
	if windowSec <= 0 {
		windowSec = defaultWindowSec
	}
	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMax
	}
	return RateLimitRule{
		Window:      time.Duration(windowSec) * time.Second,
		MaxRequests: maxRequests,
	}
}

// Rule 返回指定类别的规则，未知类别回落到读类别
func (s *RateLimitService) Rule(category string) RateLimitRule {
	if rule, ok := s.rules[strings.TrimSpace(strings.ToLower(category))]; ok {
		return rule
	}
	return s.rules[constants.RateLimitCategoryRead]
}

// Check 记录一次请求并判定是否放行
// 同一身份在不同类别下计数互不影响；存储故障时放行并记录日志。
func (s *RateLimitService) Check(ctx context.Context, category, identity string) RateLimitResult {
	rule := s.Rule(category)
	key := fmt.Sprintf("rl:%s:%s", strings.ToLower(strings.TrimSpace(category)), strings.TrimSpace(identity))

	count, ttlSeconds, err := s.store.Incr(ctx, key, rule.Window)
	if err != nil {
		logger.Warnw("rate_limit_store_unavailable", "category", category, "error", err)
		return RateLimitResult{Allowed: true, Remaining: int64(rule.MaxRequests)}
	}

	remaining := int64(rule.MaxRequests) - count
	if remaining < 0 {
		remaining = 0
	}
	if count > int64(rule.MaxRequests) {
		return RateLimitResult{
			Allowed:           false,
			Remaining:         0,
			RetryAfterSeconds: ttlSeconds,
		}
	}
	return RateLimitResult{Allowed: true, Remaining: remaining}
}
