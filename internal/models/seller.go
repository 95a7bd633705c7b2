package models

import (
	"time"

	"gorm.io/gorm"
)

// Seller 卖家档案
// ReferredBy 仅在创建时写入，此后不可变更（归因锁）。
type Seller struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	WalletAddress string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"wallet"` // 钱包地址
	ReferredBy    *uint          `gorm:"index" json:"referred_by,omitempty"`                  // 推荐经纪人ID
	LockExpiresAt *time.Time     `gorm:"index" json:"lock_expires_at,omitempty"`              // 归因锁到期时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间

	Broker *Broker `gorm:"foreignKey:ReferredBy" json:"broker,omitempty"` // 推荐经纪人
}

// TableName 指定表名
func (Seller) TableName() string {
	return "sellers"
}
