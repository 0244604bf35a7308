package queue

import (
	"encoding/json"

	"github.com/mukkai/mukkai-go/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusAdvance 订单状态推进任务
	TaskOrderStatusAdvance = constants.TaskOrderStatusAdvance
)

// OrderStatusAdvancePayload 订单状态推进任务载荷
type OrderStatusAdvancePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusAdvanceTask 创建订单状态推进任务
func NewOrderStatusAdvanceTask(payload OrderStatusAdvancePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusAdvance, body), nil
}
