package service

import (
	"context"
	"testing"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/kv"
)

func newTestRateLimitService() *RateLimitService {
	cfg := config.RateLimitConfig{
		Auth:      config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 3},
		Read:      config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 10},
		Sensitive: config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 2},
	}
	return NewRateLimitService(kv.NewMemoryStore(time.Minute), cfg)
}

func TestRateLimitAllowsUpToMax(t *testing.T) {
	svc := newTestRateLimitService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := svc.Check(ctx, constants.RateLimitCategoryAuth, "1.2.3.4")
		if !result.Allowed {
			t.Fatalf("request %d: expected allowed, got %+v", i+1, result)
		}
	}

	result := svc.Check(ctx, constants.RateLimitCategoryAuth, "1.2.3.4")
	if result.Allowed {
		t.Fatal("expected fourth request denied")
	}
	if result.RetryAfterSeconds < 1 || result.RetryAfterSeconds > 60 {
		t.Fatalf("expected retry-after within window, got %d", result.RetryAfterSeconds)
	}
}

func TestRateLimitCategoriesIndependent(t *testing.T) {
	svc := newTestRateLimitService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if result := svc.Check(ctx, constants.RateLimitCategorySensitive, "0xwallet"); !result.Allowed {
			t.Fatalf("sensitive request %d: expected allowed", i+1)
		}
	}
	if result := svc.Check(ctx, constants.RateLimitCategorySensitive, "0xwallet"); result.Allowed {
		t.Fatal("expected sensitive category exhausted")
	}

	// 同身份在其他类别下不受影响
	if result := svc.Check(ctx, constants.RateLimitCategoryRead, "0xwallet"); !result.Allowed {
		t.Fatal("expected read category unaffected by sensitive exhaustion")
	}
	if result := svc.Check(ctx, constants.RateLimitCategoryAuth, "0xwallet"); !result.Allowed {
		t.Fatal("expected auth category unaffected by sensitive exhaustion")
	}
}

func TestRateLimitIdentitiesIndependent(t *testing.T) {
	svc := newTestRateLimitService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Check(ctx, constants.RateLimitCategoryAuth, "1.1.1.1")
	}
	if result := svc.Check(ctx, constants.RateLimitCategoryAuth, "1.1.1.1"); result.Allowed {
		t.Fatal("expected first identity denied")
	}
	if result := svc.Check(ctx, constants.RateLimitCategoryAuth, "2.2.2.2"); !result.Allowed {
		t.Fatal("expected second identity unaffected")
	}
}

func TestRateLimitUnknownCategoryFallsBackToRead(t *testing.T) {
	svc := newTestRateLimitService()
	rule := svc.Rule("bogus")
	if rule.MaxRequests != 10 {
		t.Fatalf("expected fallback to read rule, got %+v", rule)
	}
}

func TestRateLimitRemainingCountsDown(t *testing.T) {
	svc := newTestRateLimitService()
	ctx := context.Background()

	first := svc.Check(ctx, constants.RateLimitCategoryAuth, "9.9.9.9")
	second := svc.Check(ctx, constants.RateLimitCategoryAuth, "9.9.9.9")
	if first.Remaining != 2 || second.Remaining != 1 {
		t.Fatalf("expected remaining 2 then 1, got %d then %d", first.Remaining, second.Remaining)
	}
}
