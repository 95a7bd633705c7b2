package models

import (
	"time"

	"gorm.io/gorm"
)

// Broker 推荐经纪人档案
// 统计字段只允许通过存储层原子自增修改，禁止按客户端提交的数值覆盖。
type Broker struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID              uint           `gorm:"not null;uniqueIndex" json:"user_id"`                      // 用户ID
	WalletAddress       string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"wallet"`      // 钱包地址
	ReferralCode        string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`        // 推荐码
	TierID              uint           `gorm:"not null;index" json:"tier_id"`                            // 当前层级
	TotalEarnings       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"earnings"`    // 累计佣金
	TotalSalesVolume    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"volume"`      // 累计销售额
	ReferredSellerCount int64          `gorm:"not null;default:0" json:"referred_sellers"`               // 已推荐卖家数
	Status              string         `gorm:"type:varchar(20);not null;index" json:"status"`            // 状态
	KYCVerified         bool           `gorm:"not null;default:false" json:"kyc_verified"`               // KYC 已通过
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	Tier Tier `gorm:"foreignKey:TierID" json:"tier,omitempty"` // 层级信息
}

// TableName 指定表名
func (Broker) TableName() string {
	return "brokers"
}
