package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/veluxe-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BrokerRepository 经纪人数据访问接口
type BrokerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) BrokerRepository

	Create(broker *models.Broker) error
	Update(broker *models.Broker) error
	GetByID(id uint) (*models.Broker, error)
	GetByIDForUpdate(id uint) (*models.Broker, error)
	GetByUserID(userID uint) (*models.Broker, error)
	GetByWallet(wallet string) (*models.Broker, error)
	GetByReferralCode(code string) (*models.Broker, error)
	List(filter BrokerListFilter) ([]models.Broker, int64, error)
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	UpdateTier(id uint, tierID uint, updatedAt time.Time) error

	IncrementReferredSellerCount(id uint, delta int64) error
	AccumulateSale(id uint, saleAmount, commissionAmount models.Money) error
}

// GormBrokerRepository GORM 经纪人仓储
type GormBrokerRepository struct {
	db *gorm.DB
}

// NewBrokerRepository 创建经纪人仓储
func NewBrokerRepository(db *gorm.DB) *GormBrokerRepository {
	return &GormBrokerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBrokerRepository) WithTx(tx *gorm.DB) BrokerRepository {
	if tx == nil {
		return r
	}
	return &GormBrokerRepository{db: tx}
}

// Transaction 执行事务
func (r *GormBrokerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建经纪人档案
func (r *GormBrokerRepository) Create(broker *models.Broker) error {
	return r.db.Create(broker).Error
}

// Update 更新经纪人档案
func (r *GormBrokerRepository) Update(broker *models.Broker) error {
	return r.db.Save(broker).Error
}

// GetByID 按ID获取经纪人
func (r *GormBrokerRepository) GetByID(id uint) (*models.Broker, error) {
	if id == 0 {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Preload("Tier").First(&broker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// GetByIDForUpdate 按ID锁定获取经纪人
func (r *GormBrokerRepository) GetByIDForUpdate(id uint) (*models.Broker, error) {
	if id == 0 {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&broker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// GetByUserID 按用户ID获取经纪人
func (r *GormBrokerRepository) GetByUserID(userID uint) (*models.Broker, error) {
	if userID == 0 {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Preload("Tier").Where("user_id = ?", userID).First(&broker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// GetByWallet 按钱包地址获取经纪人
func (r *GormBrokerRepository) GetByWallet(wallet string) (*models.Broker, error) {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if normalized == "" {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Preload("Tier").Where("wallet_address = ?", normalized).First(&broker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// GetByReferralCode 按推荐码获取经纪人
func (r *GormBrokerRepository) GetByReferralCode(code string) (*models.Broker, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Preload("Tier").Where("referral_code = ?", normalized).First(&broker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// List 查询经纪人列表
func (r *GormBrokerRepository) List(filter BrokerListFilter) ([]models.Broker, int64, error) {
	query := r.db.Model(&models.Broker{}).Preload("Tier")
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("brokers.status = ?", status)
	}
	if filter.TierID != 0 {
		query = query.Where("brokers.tier_id = ?", filter.TierID)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(brokers.wallet_address LIKE ? OR brokers.referral_code LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Broker
	if err := query.Order("brokers.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus 更新经纪人状态
func (r *GormBrokerRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Broker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": updatedAt,
		}).Error
}

// UpdateTier 更新经纪人等级
func (r *GormBrokerRepository) UpdateTier(id uint, tierID uint, updatedAt time.Time) error {
	if id == 0 || tierID == 0 {
		return nil
	}
	return r.db.Model(&models.Broker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tier_id":    tierID,
			"updated_at": updatedAt,
		}).Error
}

// IncrementReferredSellerCount 原子累加推荐卖家计数
func (r *GormBrokerRepository) IncrementReferredSellerCount(id uint, delta int64) error {
	if id == 0 || delta == 0 {
		return nil
	}
	return r.db.Model(&models.Broker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"referred_seller_count": gorm.Expr("referred_seller_count + ?", delta),
			"updated_at":            time.Now(),
		}).Error
}

// AccumulateSale 原子累加销售额与累计收益
func (r *GormBrokerRepository) AccumulateSale(id uint, saleAmount, commissionAmount models.Money) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Broker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_sales_volume": gorm.Expr("total_sales_volume + ?", saleAmount.Decimal),
			"total_earnings":     gorm.Expr("total_earnings + ?", commissionAmount.Decimal),
			"updated_at":         time.Now(),
		}).Error
}
