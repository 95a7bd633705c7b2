package repository

import (
	"errors"
	"strings"

	"github.com/veluxe-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	Create(commission *models.Commission) error
	Update(commission *models.Commission) error
	GetByID(id uint) (*models.Commission, error)
	GetByIDForUpdate(id uint) (*models.Commission, error)
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	SumByBroker(brokerID uint, statuses []string) (decimal.Decimal, error)
	CountByBroker(brokerID uint, statuses []string) (int64, error)
}

// GormCommissionRepository GORM 佣金仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(commission *models.Commission) error {
	return r.db.Create(commission).Error
}

// Update 更新佣金记录
func (r *GormCommissionRepository) Update(commission *models.Commission) error {
	return r.db.Save(commission).Error
}

// GetByID 按ID获取佣金记录
func (r *GormCommissionRepository) GetByID(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Preload("Broker").Preload("Seller").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByIDForUpdate 按ID锁定获取佣金记录
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// List 查询佣金列表
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{}).Preload("Broker").Preload("Seller")
	if filter.BrokerID != 0 {
		query = query.Where("commissions.broker_id = ?", filter.BrokerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("commissions.seller_id = ?", filter.SellerID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("commissions.status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("commissions.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("commissions.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Order("commissions.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumByBroker 汇总经纪人指定状态的佣金金额
func (r *GormCommissionRepository) SumByBroker(brokerID uint, statuses []string) (decimal.Decimal, error) {
	if brokerID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Commission{}).
		Where("broker_id = ? AND status IN ?", brokerID, statuses).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// CountByBroker 统计经纪人指定状态的佣金条数
func (r *GormCommissionRepository) CountByBroker(brokerID uint, statuses []string) (int64, error) {
	if brokerID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Commission{}).Where("broker_id = ?", brokerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
