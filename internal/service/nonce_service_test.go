package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/veluxe-market/internal/kv"
)

func testWallet(seed string) string {
	return "0x" + strings.Repeat(seed, 40/len(seed))
}

func TestNonceIssueAndConsume(t *testing.T) {
	svc := NewNonceService(kv.NewMemoryStore(time.Minute), 5*time.Minute)
	ctx := context.Background()
	wallet := testWallet("a1")

	nonce, err := svc.Issue(ctx, wallet)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if nonce == "" {
		t.Fatal("expected non-empty nonce")
	}

	if err := svc.Consume(ctx, wallet, nonce); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	// 重复消费同一挑战必须失败
	if err := svc.Consume(ctx, wallet, nonce); !errors.Is(err, ErrNonceInvalidOrExpired) {
		t.Fatalf("expected ErrNonceInvalidOrExpired on replay, got %v", err)
	}
}

func TestNonceReissueInvalidatesPrevious(t *testing.T) {
	svc := NewNonceService(kv.NewMemoryStore(time.Minute), 5*time.Minute)
	ctx := context.Background()
	wallet := testWallet("b2")

	first, err := svc.Issue(ctx, wallet)
	if err != nil {
		t.Fatalf("Issue first: %v", err)
	}
	second, err := svc.Issue(ctx, wallet)
	if err != nil {
		t.Fatalf("Issue second: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct nonces")
	}

	if err := svc.Consume(ctx, wallet, first); !errors.Is(err, ErrNonceInvalidOrExpired) {
		t.Fatalf("expected stale nonce rejected, got %v", err)
	}
	// 旧挑战的消费尝试不得影响新挑战
	if err := svc.Consume(ctx, wallet, second); err == nil {
		t.Fatal("expected second nonce consumed by failed attempt on stale value")
	}
}

func TestNonceWalletKeyCaseInsensitive(t *testing.T) {
	svc := NewNonceService(kv.NewMemoryStore(time.Minute), 5*time.Minute)
	ctx := context.Background()
	wallet := testWallet("c3")

	nonce, err := svc.Issue(ctx, wallet)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Consume(ctx, strings.ToUpper(wallet), nonce); err != nil {
		t.Fatalf("expected case-insensitive wallet key, got %v", err)
	}
}

func TestNonceExpired(t *testing.T) {
	svc := NewNonceService(kv.NewMemoryStore(time.Minute), 10*time.Millisecond)
	ctx := context.Background()
	wallet := testWallet("d4")

	nonce, err := svc.Issue(ctx, wallet)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := svc.Consume(ctx, wallet, nonce); !errors.Is(err, ErrNonceInvalidOrExpired) {
		t.Fatalf("expected expired nonce rejected, got %v", err)
	}
}

func TestNonceInvalidWallet(t *testing.T) {
	svc := NewNonceService(kv.NewMemoryStore(time.Minute), 5*time.Minute)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "not-a-wallet"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}
