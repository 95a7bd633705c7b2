package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/veluxe-market/internal/models"

	"gorm.io/gorm"
)

// ReferralClickRepository 推荐点击数据访问接口
type ReferralClickRepository interface {
	WithTx(tx *gorm.DB) ReferralClickRepository

	Create(click *models.ReferralClick) error
	HasRecentClick(brokerID uint, visitorKey string, since time.Time) (bool, error)
	GetLatestUnconverted(brokerID uint, visitorKey string) (*models.ReferralClick, error)
	GetLatestUnconvertedByBroker(brokerID uint) (*models.ReferralClick, error)
	MarkConverted(id uint, at time.Time) error
	CountByBroker(brokerID uint) (int64, error)
	CountConvertedByBroker(brokerID uint) (int64, error)
}

// GormReferralClickRepository GORM 推荐点击仓储
type GormReferralClickRepository struct {
	db *gorm.DB
}

// NewReferralClickRepository 创建推荐点击仓储
func NewReferralClickRepository(db *gorm.DB) *GormReferralClickRepository {
	return &GormReferralClickRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralClickRepository) WithTx(tx *gorm.DB) ReferralClickRepository {
	if tx == nil {
		return r
	}
	return &GormReferralClickRepository{db: tx}
}

// Create 创建点击记录
func (r *GormReferralClickRepository) Create(click *models.ReferralClick) error {
	return r.db.Create(click).Error
}

// HasRecentClick 查询访客近期是否已有同经纪人点击记录
func (r *GormReferralClickRepository) HasRecentClick(brokerID uint, visitorKey string, since time.Time) (bool, error) {
	key := strings.TrimSpace(visitorKey)
	if brokerID == 0 || key == "" {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.ReferralClick{}).
		Where("broker_id = ? AND visitor_key = ? AND created_at >= ?", brokerID, key, since).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// GetLatestUnconverted 查询访客最近一条未转化点击
func (r *GormReferralClickRepository) GetLatestUnconverted(brokerID uint, visitorKey string) (*models.ReferralClick, error) {
	key := strings.TrimSpace(visitorKey)
	if brokerID == 0 || key == "" {
		return nil, nil
	}
	var click models.ReferralClick
	if err := r.db.Where("broker_id = ? AND visitor_key = ? AND converted = ?", brokerID, key, false).
		Order("created_at DESC, id DESC").
		First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// GetLatestUnconvertedByBroker 查询经纪人名下最近一条未转化点击
func (r *GormReferralClickRepository) GetLatestUnconvertedByBroker(brokerID uint) (*models.ReferralClick, error) {
	if brokerID == 0 {
		return nil, nil
	}
	var click models.ReferralClick
	if err := r.db.Where("broker_id = ? AND converted = ?", brokerID, false).
		Order("created_at DESC, id DESC").
		First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// MarkConverted 标记点击已转化
func (r *GormReferralClickRepository) MarkConverted(id uint, at time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.ReferralClick{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"converted":    true,
			"converted_at": at,
		}).Error
}

// CountByBroker 统计经纪人点击数
func (r *GormReferralClickRepository) CountByBroker(brokerID uint) (int64, error) {
	if brokerID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.ReferralClick{}).Where("broker_id = ?", brokerID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountConvertedByBroker 统计经纪人已转化点击数
func (r *GormReferralClickRepository) CountConvertedByBroker(brokerID uint) (int64, error) {
	if brokerID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.ReferralClick{}).
		Where("broker_id = ? AND converted = ?", brokerID, true).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
