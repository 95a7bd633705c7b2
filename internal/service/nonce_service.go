package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/veluxe-market/internal/kv"

	"github.com/google/uuid"
)

// NonceService 一次性登录挑战管理
// 同一钱包重复申请时直接覆盖旧挑战，消费成功即删除。
type NonceService struct {
	store kv.Store
	ttl   time.Duration
}

// NewNonceService 创建挑战服务
func NewNonceService(store kv.Store, ttl time.Duration) *NonceService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NonceService{store: store, ttl: ttl}
}

// TTL 返回挑战有效期
func (s *NonceService) TTL() time.Duration {
	return s.ttl
}

// Issue 为钱包签发新挑战，覆盖该钱包的历史挑战
func (s *NonceService) Issue(ctx context.Context, wallet string) (string, error) {
	if err := ValidateWalletAddress(wallet); err != nil {
		return "", err
	}
	nonce := uuid.NewString()
	if err := s.store.Set(ctx, s.key(wallet), nonce, s.ttl); err != nil {
		return "", err
	}
	return nonce, nil
}

// Consume 消费挑战；不存在、过期或不匹配均视为无效
// 挑战读取即删除，同一挑战不可能二次通过。
func (s *NonceService) Consume(ctx context.Context, wallet, nonce string) error {
	if err := ValidateWalletAddress(wallet); err != nil {
		return err
	}
	if nonce == "" {
		return ErrNonceInvalidOrExpired
	}
	stored, ok, err := s.store.GetDel(ctx, s.key(wallet))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonceInvalidOrExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(nonce)) != 1 {
		return ErrNonceInvalidOrExpired
	}
	return nil
}

func (s *NonceService) key(wallet string) string {
	return fmt.Sprintf("nonce:%s", NormalizeWallet(wallet))
}
