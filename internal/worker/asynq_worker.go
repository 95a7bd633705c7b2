package worker

import (
	"context"
	"encoding/json"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/provider"
	"github.com/veluxe-market/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskNotificationDispatch, c.handleNotificationDispatch)
}

func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.BrokerID == 0 || payload.EventType == "" {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload",
			"broker_id", payload.BrokerID,
			"event_type", payload.EventType,
		)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "broker_id", payload.BrokerID)
		return nil
	}
	if err := c.NotificationService.Persist(payload); err != nil {
		logger.Warnw("worker_notification_dispatch_persist_failed",
			"broker_id", payload.BrokerID,
			"event_type", payload.EventType,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_notification_dispatched", "broker_id", payload.BrokerID, "event_type", payload.EventType)
	return nil
}
