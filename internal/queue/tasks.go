package queue

import (
	"encoding/json"

	"github.com/veluxe-market/internal/constants"

	"github.com/hibiken/asynq"
)

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	EventType string                 `json:"event_type"`
	BrokerID  uint                   `json:"broker_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewNotificationDispatchTask 构建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskNotificationDispatch, data), nil
}
