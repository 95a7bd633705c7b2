package repository

import (
	"errors"
	"strings"

	"github.com/veluxe-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SellerRepository 卖家数据访问接口
type SellerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SellerRepository

	Create(seller *models.Seller) error
	Update(seller *models.Seller) error
	GetByID(id uint) (*models.Seller, error)
	GetByWallet(wallet string) (*models.Seller, error)
	GetByWalletForUpdate(wallet string) (*models.Seller, error)
	CountByBroker(brokerID uint) (int64, error)
	ListByBroker(brokerID uint, page, pageSize int) ([]models.Seller, int64, error)
}

// GormSellerRepository GORM 卖家仓储
type GormSellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository 创建卖家仓储
func NewSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSellerRepository) WithTx(tx *gorm.DB) SellerRepository {
	if tx == nil {
		return r
	}
	return &GormSellerRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSellerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建卖家记录
func (r *GormSellerRepository) Create(seller *models.Seller) error {
	return r.db.Create(seller).Error
}

// Update 更新卖家记录
func (r *GormSellerRepository) Update(seller *models.Seller) error {
	return r.db.Save(seller).Error
}

// GetByID 按ID获取卖家
func (r *GormSellerRepository) GetByID(id uint) (*models.Seller, error) {
	if id == 0 {
		return nil, nil
	}
	var seller models.Seller
	if err := r.db.First(&seller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// GetByWallet 按钱包地址获取卖家
func (r *GormSellerRepository) GetByWallet(wallet string) (*models.Seller, error) {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if normalized == "" {
		return nil, nil
	}
	var seller models.Seller
	if err := r.db.Where("wallet_address = ?", normalized).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// GetByWalletForUpdate 按钱包地址锁定获取卖家
func (r *GormSellerRepository) GetByWalletForUpdate(wallet string) (*models.Seller, error) {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if normalized == "" {
		return nil, nil
	}
	var seller models.Seller
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet_address = ?", normalized).
		First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// CountByBroker 统计经纪人名下卖家数
func (r *GormSellerRepository) CountByBroker(brokerID uint) (int64, error) {
	if brokerID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.Seller{}).Where("referred_by = ?", brokerID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListByBroker 查询经纪人名下卖家列表
func (r *GormSellerRepository) ListByBroker(brokerID uint, page, pageSize int) ([]models.Seller, int64, error) {
	if brokerID == 0 {
		return []models.Seller{}, 0, nil
	}
	query := r.db.Model(&models.Seller{}).Where("referred_by = ?", brokerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var rows []models.Seller
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
