package service

import (
	"fmt"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/queue"
	"github.com/veluxe-market/internal/repository"
)

// NotificationService 通知事件服务
// 优先走异步队列；队列未启用时降级为同步落库。
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// NotifyCommissionEarned 通知经纪人新佣金入账
func (s *NotificationService) NotifyCommissionEarned(commission *models.Commission) {
	if commission == nil {
		return
	}
	s.dispatch(queue.NotificationDispatchPayload{
		EventType: constants.NotificationEventCommissionEarned,
		BrokerID:  commission.BrokerID,
		Title:     "Commission earned",
		Message:   fmt.Sprintf("You earned %s USD on a referred sale.", commission.CommissionAmount.String()),
		Payload: map[string]interface{}{
			"commission_id": commission.ID,
			"amount":        commission.CommissionAmount.String(),
			"rate_percent":  commission.RatePercent.String(),
		},
	})
}

// NotifyTierUpgrade 通知经纪人层级升级，载荷同时携带升级前后的层级标识
func (s *NotificationService) NotifyTierUpgrade(brokerID uint, from, to *models.Tier) {
	if to == nil {
		return
	}
	payload := map[string]interface{}{
		"tier_code":    to.Code,
		"tier_level":   to.Level,
		"rate_percent": to.RatePercent.String(),
	}
	if from != nil {
		payload["previous_tier_code"] = from.Code
		payload["previous_tier_level"] = from.Level
	}
	s.dispatch(queue.NotificationDispatchPayload{
		EventType: constants.NotificationEventTierUpgrade,
		BrokerID:  brokerID,
		Title:     "Tier upgraded",
		Message:   fmt.Sprintf("Congratulations, you reached the %s tier (%s%% commission).", to.Name, to.RatePercent.String()),
		Payload:   payload,
	})
}

// ListByBroker 查询经纪人通知列表
func (s *NotificationService) ListByBroker(brokerID uint, page, pageSize int) ([]models.Notification, int64, error) {
	return s.notificationRepo.List(repository.NotificationListFilter{
		BrokerID: brokerID,
		Page:     page,
		PageSize: pageSize,
	})
}

// Persist 将通知载荷落库（worker 与同步降级共用）
func (s *NotificationService) Persist(payload queue.NotificationDispatchPayload) error {
	return s.notificationRepo.Create(&models.Notification{
		EventType: payload.EventType,
		BrokerID:  payload.BrokerID,
		Title:     payload.Title,
		Message:   payload.Message,
		Payload:   models.JSON(payload.Payload),
	})
}

func (s *NotificationService) dispatch(payload queue.NotificationDispatchPayload) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationDispatch(payload)
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed_fallback_sync", "event", payload.EventType, "error", err)
	}
	if err := s.Persist(payload); err != nil {
		logger.Errorw("notification_persist_failed", "event", payload.EventType, "broker_id", payload.BrokerID, "error", err)
	}
}
