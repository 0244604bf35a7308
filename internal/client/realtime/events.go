package realtime

import (
	"encoding/json"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/push"
)

// OnOrderStatus 注册订单状态事件回调，负载解码失败时丢弃并记日志
func (ch *Channel) OnOrderStatus(fn func(push.OrderStatusPayload)) Subscription {
	return ch.AddListener(constants.SSEEventOrderStatusUpdate, func(data []byte) {
		var payload push.OrderStatusPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			logger.Warnw("sse_payload_decode_failed", "event", constants.SSEEventOrderStatusUpdate, "error", err)
			return
		}
		fn(payload)
	})
}

// OnNewOrder 注册新订单事件回调，店主工作台使用
func (ch *Channel) OnNewOrder(fn func(push.NewOrderPayload)) Subscription {
	return ch.AddListener(constants.SSEEventNewOrder, func(data []byte) {
		var payload push.NewOrderPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			logger.Warnw("sse_payload_decode_failed", "event", constants.SSEEventNewOrder, "error", err)
			return
		}
		fn(payload)
	})
}
