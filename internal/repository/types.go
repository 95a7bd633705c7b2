package repository

import "time"

// BrokerListFilter 经纪人列表查询条件
type BrokerListFilter struct {
	Status   string
	TierID   uint
	Keyword  string
	Page     int
	PageSize int
}

// CommissionListFilter 佣金列表查询条件
type CommissionListFilter struct {
	BrokerID    uint
	SellerID    uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// NotificationListFilter 通知列表查询条件
type NotificationListFilter struct {
	BrokerID  uint
	EventType string
	Page      int
	PageSize  int
}
