package constants

// 经纪人状态常量
const (
	BrokerStatusPending   = "pending"
	BrokerStatusActive    = "active"
	BrokerStatusSuspended = "suspended"
)

// 佣金状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusPaid      = "paid"
	CommissionStatusFailed    = "failed"
	CommissionStatusCancelled = "cancelled"
)

// 角色常量（按解析优先级从高到低）
const (
	RoleAdmin  = "admin"
	RoleBroker = "broker"
	RoleSeller = "seller"
	RoleUser   = "user"
)

// 限流类别常量
const (
	RateLimitCategoryAuth      = "auth"
	RateLimitCategoryRead      = "read"
	RateLimitCategorySensitive = "sensitive"
)

// 通知事件常量
const (
	NotificationEventCommissionEarned = "commission_earned"
	NotificationEventTierUpgrade      = "tier_upgrade"
)

// 异步任务类型常量
const (
	TaskNotificationDispatch = "notification:dispatch"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 钱包地址格式常量
const (
	WalletAddressPrefix    = "0x"
	WalletAddressMinLength = 42
)
