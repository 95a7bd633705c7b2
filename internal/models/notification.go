package models

import "time"

// Notification 通知事件落库记录（由 worker 写入，交付由外部渠道负责）
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	EventType string    `gorm:"type:varchar(32);not null;index" json:"event_type"`   // 事件类型
	BrokerID  uint      `gorm:"not null;index" json:"broker_id"`                     // 目标经纪人
	Title     string    `gorm:"type:varchar(128);not null" json:"title"`             // 标题
	Message   string    `gorm:"type:varchar(512);not null" json:"message"`           // 正文
	Payload   JSON      `gorm:"type:text" json:"payload"`                            // 结构化载荷
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
