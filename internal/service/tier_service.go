package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"

	"github.com/shopspring/decimal"
)

// TierService 佣金层级管理
// 层级表在启动时加载校验，运行期只读；评估规则见 EvaluateTier。
type TierService struct {
	tierRepo repository.TierRepository
}

// NewTierService 创建层级服务
func NewTierService(tierRepo repository.TierRepository) *TierService {
	return &TierService{tierRepo: tierRepo}
}

// ValidateTierTable 校验层级配置
// 要求按 Level 严格升序，且门槛与费率同步严格递增，避免同一档出现并列费率。
func ValidateTierTable(tiers []config.TierConfig) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidTierTable)
	}
	for i, tier := range tiers {
		if strings.TrimSpace(tier.Code) == "" {
			return fmt.Errorf("%w: tier %d missing code", ErrInvalidTierTable, i)
		}
		if tier.Level <= 0 {
			return fmt.Errorf("%w: tier %s level must be positive", ErrInvalidTierTable, tier.Code)
		}
		if tier.MinReferrals < 0 || tier.MinSalesVolume < 0 {
			return fmt.Errorf("%w: tier %s has negative threshold", ErrInvalidTierTable, tier.Code)
		}
		if tier.RatePercent <= 0 || tier.RatePercent > 100 {
			return fmt.Errorf("%w: tier %s rate out of range", ErrInvalidTierTable, tier.Code)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if tier.Level <= prev.Level {
			return fmt.Errorf("%w: tier %s level not ascending", ErrInvalidTierTable, tier.Code)
		}
		if tier.MinReferrals < prev.MinReferrals || tier.MinSalesVolume < prev.MinSalesVolume {
			return fmt.Errorf("%w: tier %s thresholds not ascending", ErrInvalidTierTable, tier.Code)
		}
		if tier.RatePercent <= prev.RatePercent {
			return fmt.Errorf("%w: tier %s rate not strictly ascending", ErrInvalidTierTable, tier.Code)
		}
	}
	return nil
}

// SyncFromConfig 校验并将层级配置写入存储
func (s *TierService) SyncFromConfig(tiers []config.TierConfig) error {
	if err := ValidateTierTable(tiers); err != nil {
		return err
	}
	now := time.Now()
	for _, cfg := range tiers {
		tier := &models.Tier{
			Code:           strings.ToLower(strings.TrimSpace(cfg.Code)),
			Name:           strings.TrimSpace(cfg.Name),
			Level:          cfg.Level,
			MinReferrals:   cfg.MinReferrals,
			MinSalesVolume: models.NewMoneyFromDecimal(decimal.NewFromFloat(cfg.MinSalesVolume)),
			RatePercent:    models.NewMoneyFromDecimal(decimal.NewFromFloat(cfg.RatePercent)),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.tierRepo.Upsert(tier); err != nil {
			return err
		}
	}
	return nil
}

// ListTiers 返回全部层级（按层级升序）
func (s *TierService) ListTiers() ([]models.Tier, error) {
	return s.tierRepo.ListAll()
}

// EvaluateTier 评估经纪人达标的最高层级
// 两项门槛须同时满足；多档同时达标时取费率最高的一档。
func EvaluateTier(tiers []models.Tier, referredSellers int64, salesVolume decimal.Decimal) *models.Tier {
	var best *models.Tier
	for i := range tiers {
		tier := &tiers[i]
		if referredSellers < tier.MinReferrals {
			continue
		}
		if salesVolume.LessThan(tier.MinSalesVolume.Decimal) {
			continue
		}
		if best == nil || tier.RatePercent.Decimal.GreaterThan(best.RatePercent.Decimal) {
			best = tier
		}
	}
	return best
}

// ShouldUpgrade 判定是否升级
// 只升不降：候选层级必须严格高于当前层级。
func ShouldUpgrade(current, candidate *models.Tier) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return candidate.Level > current.Level
}

// CommissionFor 按费率百分比计算佣金金额
func CommissionFor(saleAmount decimal.Decimal, ratePercent decimal.Decimal) models.Money {
	amount := saleAmount.Mul(ratePercent).Div(decimal.NewFromInt(100))
	return models.NewMoneyFromDecimal(amount)
}
