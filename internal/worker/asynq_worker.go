package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/provider"
	"github.com/mukkai/mukkai-go/internal/queue"
	"github.com/mukkai/mukkai-go/internal/service"

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
	mux.HandleFunc(queue.TaskOrderStatusAdvance, c.handleOrderStatusAdvance)
}

func (c *Consumer) handleOrderStatusAdvance(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_advance_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusAdvancePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_advance_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_advance_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_advance_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}

	order, err := c.OrderService.AdvanceStatus(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_order_advance_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderAlreadyFinished):
			logger.Debugw("worker_order_advance_skip_finished", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderStatusInvalid):
			// 店主已接管状态（例如手动取消），终止自动推进
			logger.Debugw("worker_order_advance_skip_invalid_status", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_advance_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}

	// 未到终态则继续排队下一步
	if order.Status != constants.OrderStatusDelivered && order.Status != constants.OrderStatusCancelled {
		c.OrderService.ScheduleNextAdvance(payload.OrderID)
	}
	return nil
}
