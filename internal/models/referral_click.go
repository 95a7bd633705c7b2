package models

import "time"

// ReferralClick 推荐链接点击记录
type ReferralClick struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                       // 主键
	BrokerID     uint       `gorm:"not null;index" json:"broker_id"`                            // 经纪人ID
	ReferralCode string     `gorm:"type:varchar(32);not null;index" json:"referral_code"`       // 当次展示的推荐码
	VisitorKey   string     `gorm:"type:varchar(128);index" json:"visitor_key"`                 // 访客标识
	Converted    bool       `gorm:"not null;default:false;index" json:"converted"`              // 是否已转化
	ConvertedAt  *time.Time `gorm:"index" json:"converted_at,omitempty"`                        // 转化时间
	CreatedAt    time.Time  `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间

	Broker Broker `gorm:"foreignKey:BrokerID" json:"broker,omitempty"` // 经纪人
}

// TableName 指定表名
func (ReferralClick) TableName() string {
	return "referral_clicks"
}
