package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission 佣金记录
// 金额与费率在创建时冻结，此后只允许状态流转，层级升级不回溯已有记录。
type Commission struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                            // 主键
	BrokerID         uint           `gorm:"not null;index" json:"broker_id"`                                 // 经纪人ID
	SellerID         uint           `gorm:"not null;index" json:"seller_id"`                                 // 卖家ID
	SaleAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"sale_amount"`        // 销售金额（USD）
	RatePercent      Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`       // 创建时生效费率（百分比）
	CommissionAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`  // 佣金金额
	Status           string         `gorm:"type:varchar(20);not null;index" json:"status"`                   // 状态
	TxHash           string         `gorm:"type:varchar(128)" json:"tx_hash,omitempty"`                      // 结算交易哈希
	PaidAt           *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                  // 支付时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	Broker Broker `gorm:"foreignKey:BrokerID" json:"broker,omitempty"` // 经纪人
	Seller Seller `gorm:"foreignKey:SellerID" json:"seller,omitempty"` // 卖家
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}
