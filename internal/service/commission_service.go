package service

import (
	"strings"
	"time"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// commissionTransitions 佣金状态流转表
var commissionTransitions = map[string][]string{
	constants.CommissionStatusPending: {
		constants.CommissionStatusPaid,
		constants.CommissionStatusFailed,
		constants.CommissionStatusCancelled,
	},
}

// CommissionService 佣金账本服务
// 佣金金额与费率在成交时按经纪人当前层级冻结，层级升级不回溯历史记录。
type CommissionService struct {
	brokerRepo     repository.BrokerRepository
	sellerRepo     repository.SellerRepository
	commissionRepo repository.CommissionRepository
	tierRepo       repository.TierRepository
	notifier       *NotificationService
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	brokerRepo repository.BrokerRepository,
	sellerRepo repository.SellerRepository,
	commissionRepo repository.CommissionRepository,
	tierRepo repository.TierRepository,
	notifier *NotificationService,
) *CommissionService {
	return &CommissionService{
		brokerRepo:     brokerRepo,
		sellerRepo:     sellerRepo,
		commissionRepo: commissionRepo,
		tierRepo:       tierRepo,
		notifier:       notifier,
	}
}

// RecordSale 记录归因卖家的一笔成交并生成佣金
// 卖家未归因或经纪人停用时正常返回 nil 佣金，不视为错误。
// 锁定期只约束归因改绑，不限制后续成交的佣金入账。
func (s *CommissionService) RecordSale(sellerWallet string, saleAmount models.Money) (*models.Commission, error) {
	if err := ValidateWalletAddress(sellerWallet); err != nil {
		return nil, err
	}
	if !saleAmount.Decimal.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	var commission *models.Commission
	var previousTier, upgradedTier *models.Tier
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		sellerTx := s.sellerRepo.WithTx(tx)
		brokerTx := s.brokerRepo.WithTx(tx)
		commissionTx := s.commissionRepo.WithTx(tx)
		tierTx := s.tierRepo.WithTx(tx)

		seller, err := sellerTx.GetByWallet(sellerWallet)
		if err != nil {
			return err
		}
		if seller == nil {
			return ErrNotFound
		}
		if seller.ReferredBy == nil {
			return nil
		}

		broker, err := brokerTx.GetByIDForUpdate(*seller.ReferredBy)
		if err != nil {
			return err
		}
		if broker == nil {
			logger.Errorw("commission_attributed_broker_missing", "seller_id", seller.ID, "broker_id", *seller.ReferredBy)
			return ErrAttributionInconsistent
		}
		if broker.Status != constants.BrokerStatusActive {
			logger.Infow("commission_skipped_inactive_broker", "broker_id", broker.ID, "status", broker.Status)
			return nil
		}

		tier, err := tierTx.GetByID(broker.TierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return ErrInvalidTierTable
		}

		record := &models.Commission{
			BrokerID:         broker.ID,
			SellerID:         seller.ID,
			SaleAmount:       saleAmount,
			RatePercent:      tier.RatePercent,
			CommissionAmount: CommissionFor(saleAmount.Decimal, tier.RatePercent.Decimal),
			Status:           constants.CommissionStatusPending,
		}
		if err := commissionTx.Create(record); err != nil {
			return err
		}
		if err := brokerTx.AccumulateSale(broker.ID, saleAmount, record.CommissionAmount); err != nil {
			return err
		}

		// 用累加后的最新计数做层级评估，只升不降
		refreshed, err := brokerTx.GetByID(broker.ID)
		if err != nil {
			return err
		}
		if refreshed != nil {
			tiers, err := tierTx.ListAll()
			if err != nil {
				return err
			}
			candidate := EvaluateTier(tiers, refreshed.ReferredSellerCount, refreshed.TotalSalesVolume.Decimal)
			if ShouldUpgrade(tier, candidate) {
				if err := brokerTx.UpdateTier(broker.ID, candidate.ID, time.Now()); err != nil {
					return err
				}
				previousTier = tier
				upgradedTier = candidate
			}
		}

		commission = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, nil
	}

	logger.Infow("commission_recorded",
		"commission_id", commission.ID,
		"broker_id", commission.BrokerID,
		"seller_id", commission.SellerID,
		"amount", commission.CommissionAmount.String(),
		"rate_percent", commission.RatePercent.String(),
	)
	s.notifier.NotifyCommissionEarned(commission)
	if upgradedTier != nil {
		logger.Infow("broker_tier_upgraded", "broker_id", commission.BrokerID, "tier", upgradedTier.Code)
		s.notifier.NotifyTierUpgrade(commission.BrokerID, previousTier, upgradedTier)
	}
	return commission, nil
}

// UpdateStatus 推进佣金状态
// paid 必须携带交易哈希并写入支付时间；不在流转表中的跳转一律拒绝。
func (s *CommissionService) UpdateStatus(id uint, status, txHash string) (*models.Commission, error) {
	target := strings.TrimSpace(strings.ToLower(status))
	var commission *models.Commission
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		commissionTx := s.commissionRepo.WithTx(tx)

		record, err := commissionTx.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrNotFound
		}
		if !transitionAllowed(record.Status, target) {
			return ErrInvalidStateTransition
		}

		if target == constants.CommissionStatusPaid {
			hash := strings.TrimSpace(txHash)
			if hash == "" {
				return ErrTxHashRequired
			}
			now := time.Now()
			record.TxHash = hash
			record.PaidAt = &now
		}
		record.Status = target
		if err := commissionTx.Update(record); err != nil {
			return err
		}
		commission = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("commission_status_updated", "commission_id", commission.ID, "status", commission.Status)
	return commission, nil
}

// GetByID 查询佣金记录
func (s *CommissionService) GetByID(id uint) (*models.Commission, error) {
	return s.commissionRepo.GetByID(id)
}

// List 查询佣金列表
func (s *CommissionService) List(filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	return s.commissionRepo.List(filter)
}

// PendingTotal 统计经纪人待结算佣金总额
func (s *CommissionService) PendingTotal(brokerID uint) (decimal.Decimal, error) {
	return s.commissionRepo.SumByBroker(brokerID, []string{constants.CommissionStatusPending})
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range commissionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
