package service

import (
	"strings"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralService 推荐归因服务
// 卖家归因在注册时一次性写入，90 天锁定期内不可变更，重复注册幂等返回既有归因。
type ReferralService struct {
	brokerRepo   repository.BrokerRepository
	sellerRepo   repository.SellerRepository
	clickRepo    repository.ReferralClickRepository
	tierRepo     repository.TierRepository
	lockDuration time.Duration
	dedupeWindow time.Duration
}

// NewReferralService 创建推荐归因服务
func NewReferralService(
	brokerRepo repository.BrokerRepository,
	sellerRepo repository.SellerRepository,
	clickRepo repository.ReferralClickRepository,
	tierRepo repository.TierRepository,
	cfg config.ReferralConfig,
) *ReferralService {
	lockDays := cfg.AttributionLockDays
	if lockDays <= 0 {
		lockDays = 90
	}
	dedupeMinutes := cfg.ClickDedupeMinutes
	if dedupeMinutes <= 0 {
		dedupeMinutes = 10
	}
	return &ReferralService{
		brokerRepo:   brokerRepo,
		sellerRepo:   sellerRepo,
		clickRepo:    clickRepo,
		tierRepo:     tierRepo,
		lockDuration: time.Duration(lockDays) * 24 * time.Hour,
		dedupeWindow: time.Duration(dedupeMinutes) * time.Minute,
	}
}

// RegisterBroker 创建经纪人档案并签发推荐码
func (s *ReferralService) RegisterBroker(userID uint, wallet string) (*models.Broker, error) {
	if err := ValidateWalletAddress(wallet); err != nil {
		return nil, err
	}
	existing, err := s.brokerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tiers, err := s.tierRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, ErrInvalidTierTable
	}

	broker := &models.Broker{
		UserID:        userID,
		WalletAddress: NormalizeWallet(wallet),
		ReferralCode:  generateReferralCode(),
		TierID:        tiers[0].ID,
		Status:        constants.BrokerStatusActive,
	}
	if err := s.brokerRepo.Create(broker); err != nil {
		return nil, err
	}
	logger.Infow("broker_registered",
		"broker_id", broker.ID,
		"wallet", RedactWallet(broker.WalletAddress),
		"code", broker.ReferralCode,
	)
	return broker, nil
}

// TrackClick 记录推荐链接点击，窗口内同访客重复点击去重
func (s *ReferralService) TrackClick(code, visitorKey string) error {
	broker, err := s.brokerRepo.GetByReferralCode(code)
	if err != nil {
		return err
	}
	if broker == nil {
		// 无效推荐码静默丢弃，不向点击方暴露码表
		logger.Infow("referral_click_dropped_unknown_code", "code", strings.TrimSpace(code))
		return nil
	}
	if broker.Status != constants.BrokerStatusActive {
		logger.Infow("referral_click_dropped_inactive_broker", "broker_id", broker.ID)
		return nil
	}

	key := strings.TrimSpace(visitorKey)
	if key != "" {
		duplicate, err := s.clickRepo.HasRecentClick(broker.ID, key, time.Now().Add(-s.dedupeWindow))
		if err != nil {
			return err
		}
		if duplicate {
			return nil
		}
	}

	return s.clickRepo.Create(&models.ReferralClick{
		BrokerID:     broker.ID,
		ReferralCode: broker.ReferralCode,
		VisitorKey:   key,
	})
}

// AttributeSeller 卖家注册并归因
// 同一钱包归因至多写入一次；推荐码无效、经纪人停用或自我推荐时卖家照常注册但不归因。
func (s *ReferralService) AttributeSeller(wallet, referralCode, visitorKey string) (*models.Seller, error) {
	if err := ValidateWalletAddress(wallet); err != nil {
		return nil, err
	}
	normalized := NormalizeWallet(wallet)

	var seller *models.Seller
	err := s.sellerRepo.Transaction(func(tx *gorm.DB) error {
		sellerTx := s.sellerRepo.WithTx(tx)
		brokerTx := s.brokerRepo.WithTx(tx)

		existing, err := sellerTx.GetByWalletForUpdate(normalized)
		if err != nil {
			return err
		}
		if existing != nil {
			// 重复注册幂等：已有归因原样返回，不产生第二次计数
			seller = existing
			return nil
		}

		broker := s.resolveAttributableBroker(brokerTx, normalized, referralCode)

		now := time.Now()
		record := &models.Seller{WalletAddress: normalized}
		if broker != nil {
			lockExpires := now.Add(s.lockDuration)
			record.ReferredBy = &broker.ID
			record.LockExpiresAt = &lockExpires
		}
		if err := sellerTx.Create(record); err != nil {
			return err
		}
		if broker != nil {
			if err := brokerTx.IncrementReferredSellerCount(broker.ID, 1); err != nil {
				return err
			}
		}
		seller = record
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// 并发注册撞唯一索引：收敛到先写入的那条归因记录
			existing, lookupErr := s.sellerRepo.GetByWallet(normalized)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if seller.ReferredBy != nil {
		s.markClickConverted(*seller.ReferredBy, visitorKey)
		logger.Infow("seller_attributed",
			"seller_id", seller.ID,
			"broker_id", *seller.ReferredBy,
			"wallet", RedactWallet(seller.WalletAddress),
		)
	}
	return seller, nil
}

// resolveAttributableBroker 解析可归因的经纪人，任何不满足条件的情形都返回 nil
func (s *ReferralService) resolveAttributableBroker(brokerRepo repository.BrokerRepository, sellerWallet, referralCode string) *models.Broker {
	code := strings.TrimSpace(referralCode)
	if code == "" {
		return nil
	}
	broker, err := brokerRepo.GetByReferralCode(code)
	if err != nil {
		logger.Warnw("attribution_broker_lookup_failed", "code", code, "error", err)
		return nil
	}
	if broker == nil {
		logger.Infow("attribution_dropped_unknown_code", "code", code)
		return nil
	}
	if broker.Status != constants.BrokerStatusActive {
		logger.Infow("attribution_dropped_inactive_broker", "broker_id", broker.ID)
		return nil
	}
	if NormalizeWallet(broker.WalletAddress) == sellerWallet {
		logger.Infow("attribution_dropped_self_referral", "broker_id", broker.ID)
		return nil
	}
	return broker
}

// markClickConverted 将最近一条未转化点击标记为已转化（尽力而为）
// 优先按访客标识定位，缺失时退回同推荐码下最近一条未转化点击。
func (s *ReferralService) markClickConverted(brokerID uint, visitorKey string) {
	key := strings.TrimSpace(visitorKey)
	var click *models.ReferralClick
	var err error
	if key != "" {
		click, err = s.clickRepo.GetLatestUnconverted(brokerID, key)
	} else {
		click, err = s.clickRepo.GetLatestUnconvertedByBroker(brokerID)
	}
	if err != nil || click == nil {
		return
	}
	if err := s.clickRepo.MarkConverted(click.ID, time.Now()); err != nil {
		logger.Warnw("click_conversion_mark_failed", "click_id", click.ID, "error", err)
	}
}

// generateReferralCode 生成推荐码
func generateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VX" + strings.ToUpper(raw[:8])
}

// isUniqueViolation 判定是否唯一索引冲突（跨驱动按错误文本识别）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
