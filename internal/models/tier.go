package models

import "time"

// Tier 佣金层级（启动时从配置加载的静态有序表，本核心只读）
type Tier struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                   // 主键
	Code           string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`      // 层级标识
	Name           string    `gorm:"type:varchar(64);not null" json:"name"`                  // 展示名称
	Level          int       `gorm:"not null;uniqueIndex" json:"level"`                      // 层级序号（升序）
	MinReferrals   int64     `gorm:"not null;default:0" json:"min_referrals"`                // 最低推荐卖家数
	MinSalesVolume Money     `gorm:"type:decimal(20,2);not null;default:0" json:"min_sales"` // 最低销售额
	RatePercent    Money     `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`      // 佣金比例（百分比）
	CreatedAt      time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (Tier) TableName() string {
	return "tiers"
}
