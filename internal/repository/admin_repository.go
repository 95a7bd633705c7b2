package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/veluxe-market/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// GormAdminRepository GORM 管理员仓储
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓储
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 按用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	normalized := strings.TrimSpace(username)
	if normalized == "" {
		return nil, nil
	}
	var admin models.Admin
	if err := r.db.Where("username = ?", normalized).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// UpdateLastLogin 更新最近登录时间
func (r *GormAdminRepository) UpdateLastLogin(id uint, at time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
}
