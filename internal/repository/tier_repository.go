package repository

import (
	"errors"
	"strings"

	"github.com/veluxe-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TierRepository 层级表数据访问接口
type TierRepository interface {
	WithTx(tx *gorm.DB) TierRepository

	ListAll() ([]models.Tier, error)
	GetByID(id uint) (*models.Tier, error)
	GetByCode(code string) (*models.Tier, error)
	Upsert(tier *models.Tier) error
}

// GormTierRepository GORM 层级仓储
type GormTierRepository struct {
	db *gorm.DB
}

// NewTierRepository 创建层级仓储
func NewTierRepository(db *gorm.DB) *GormTierRepository {
	return &GormTierRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTierRepository) WithTx(tx *gorm.DB) TierRepository {
	if tx == nil {
		return r
	}
	return &GormTierRepository{db: tx}
}

// ListAll 按层级升序返回全部层级
func (r *GormTierRepository) ListAll() ([]models.Tier, error) {
	var rows []models.Tier
	if err := r.db.Order("level asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID 按ID获取层级
func (r *GormTierRepository) GetByID(id uint) (*models.Tier, error) {
	if id == 0 {
		return nil, nil
	}
	var tier models.Tier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// GetByCode 按代码获取层级
func (r *GormTierRepository) GetByCode(code string) (*models.Tier, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var tier models.Tier
	if err := r.db.Where("code = ?", normalized).First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// Upsert 按代码写入或更新层级
func (r *GormTierRepository) Upsert(tier *models.Tier) error {
	if tier == nil {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "level", "min_referrals", "min_sales_volume", "rate_percent", "updated_at",
		}),
	}).Create(tier).Error
}
