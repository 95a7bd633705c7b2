package models

import (
	"time"

	"gorm.io/gorm"
)

// User 平台用户档案（钱包会话登录后的主体）
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	WalletAddress string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"wallet"` // 钱包地址
	DisplayName   string         `gorm:"type:varchar(64)" json:"display_name"`                // 展示名称
	IsAdmin       bool           `gorm:"not null;default:false" json:"is_admin"`              // 管理员标记
	CreatedAt     time.Time      `json:"created_at"`                                          // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
