package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDel(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "nonce:0xabc", "value-1", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok, err := store.GetDel(ctx, "nonce:0xabc")
	if err != nil {
		t.Fatalf("GetDel: %v", err)
	}
	if !ok || val != "value-1" {
		t.Fatalf("expected value-1, got %q ok=%v", val, ok)
	}

	// 一次性消费，第二次读取应落空
	_, ok, err = store.GetDel(ctx, "nonce:0xabc")
	if err != nil {
		t.Fatalf("GetDel second: %v", err)
	}
	if ok {
		t.Fatal("expected key consumed after first GetDel")
	}
}

func TestMemoryStoreSetOverwrites(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "nonce:0xabc", "old", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "nonce:0xabc", "new", time.Minute); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	val, ok, _ := store.GetDel(ctx, "nonce:0xabc")
	if !ok || val != "new" {
		t.Fatalf("expected overwritten value, got %q ok=%v", val, ok)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected expired key to miss")
	}
	if _, ok, _ := store.GetDel(ctx, "k"); ok {
		t.Fatal("expected expired key to miss on GetDel")
	}
}

func TestMemoryStoreIncrWindow(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := store.Incr(ctx, "rl:auth:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
		if ttl < 1 || ttl > 60 {
			t.Fatalf("unexpected ttl %d", ttl)
		}
	}
}

func TestMemoryStoreIncrResetsAfterExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, _, err := store.Incr(ctx, "rl:k", 10*time.Millisecond); err != nil {
		t.Fatalf("Incr: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	count, _, err := store.Incr(ctx, "rl:k", time.Minute)
	if err != nil {
		t.Fatalf("Incr after expiry: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected fresh window count 1, got %d", count)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_ = store.Set(ctx, "live", "v", time.Minute)
	_ = store.Set(ctx, "dead", "v", -time.Second)

	store.sweep(time.Now())
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry after sweep, got %d", store.Len())
	}
}
