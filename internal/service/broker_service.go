package service

import (
	"strings"
	"time"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"

	"github.com/shopspring/decimal"
)

// brokerStatusTransitions 经纪人状态流转表
var brokerStatusTransitions = map[string][]string{
	constants.BrokerStatusPending:   {constants.BrokerStatusActive, constants.BrokerStatusSuspended},
	constants.BrokerStatusActive:    {constants.BrokerStatusSuspended},
	constants.BrokerStatusSuspended: {constants.BrokerStatusActive},
}

// BrokerOverview 经纪人仪表盘汇总
type BrokerOverview struct {
	Broker            *models.Broker  `json:"broker"`
	ClickCount        int64           `json:"click_count"`
	ConvertedClicks   int64           `json:"converted_clicks"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	PaidCommission    decimal.Decimal `json:"paid_commission"`
}

// BrokerService 经纪人档案与仪表盘服务
type BrokerService struct {
	brokerRepo     repository.BrokerRepository
	sellerRepo     repository.SellerRepository
	clickRepo      repository.ReferralClickRepository
	commissionRepo repository.CommissionRepository
}

// NewBrokerService 创建经纪人服务
func NewBrokerService(
	brokerRepo repository.BrokerRepository,
	sellerRepo repository.SellerRepository,
	clickRepo repository.ReferralClickRepository,
	commissionRepo repository.CommissionRepository,
) *BrokerService {
	return &BrokerService{
		brokerRepo:     brokerRepo,
		sellerRepo:     sellerRepo,
		clickRepo:      clickRepo,
		commissionRepo: commissionRepo,
	}
}

// GetByID 查询经纪人档案
func (s *BrokerService) GetByID(id uint) (*models.Broker, error) {
	return s.brokerRepo.GetByID(id)
}

// GetByUserID 按用户查询经纪人档案
func (s *BrokerService) GetByUserID(userID uint) (*models.Broker, error) {
	return s.brokerRepo.GetByUserID(userID)
}

// List 查询经纪人列表
func (s *BrokerService) List(filter repository.BrokerListFilter) ([]models.Broker, int64, error) {
	return s.brokerRepo.List(filter)
}

// Overview 汇总经纪人仪表盘数据
func (s *BrokerService) Overview(brokerID uint) (*BrokerOverview, error) {
	broker, err := s.brokerRepo.GetByID(brokerID)
	if err != nil {
		return nil, err
	}
	if broker == nil {
		return nil, ErrNotFound
	}

	clicks, err := s.clickRepo.CountByBroker(brokerID)
	if err != nil {
		return nil, err
	}
	converted, err := s.clickRepo.CountConvertedByBroker(brokerID)
	if err != nil {
		return nil, err
	}
	pending, err := s.commissionRepo.SumByBroker(brokerID, []string{constants.CommissionStatusPending})
	if err != nil {
		return nil, err
	}
	paid, err := s.commissionRepo.SumByBroker(brokerID, []string{constants.CommissionStatusPaid})
	if err != nil {
		return nil, err
	}

	return &BrokerOverview{
		Broker:            broker,
		ClickCount:        clicks,
		ConvertedClicks:   converted,
		PendingCommission: pending,
		PaidCommission:    paid,
	}, nil
}

// ListSellers 查询经纪人名下卖家
func (s *BrokerService) ListSellers(brokerID uint, page, pageSize int) ([]models.Seller, int64, error) {
	return s.sellerRepo.ListByBroker(brokerID, page, pageSize)
}

// UpdateStatus 更新经纪人状态
// 停用的经纪人不再产生归因与佣金，既有归因与已冻结佣金不受影响。
func (s *BrokerService) UpdateStatus(id uint, status string) (*models.Broker, error) {
	status = strings.TrimSpace(strings.ToLower(status))
	broker, err := s.brokerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if broker == nil {
		return nil, ErrNotFound
	}
	if !brokerTransitionAllowed(broker.Status, status) {
		return nil, ErrInvalidStateTransition
	}
	if err := s.brokerRepo.UpdateStatus(id, status, time.Now()); err != nil {
		return nil, err
	}
	broker.Status = status
	logger.Infow("broker_status_updated", "broker_id", id, "status", status)
	return broker, nil
}

func brokerTransitionAllowed(from, to string) bool {
	for _, allowed := range brokerStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
