package push

import (
	"encoding/json"
	"time"

	"github.com/mukkai/mukkai-go/internal/constants"
)

// Notice 一条待投递的推送通知，按角色寻址
type Notice struct {
	Type    string          `json:"type"`     // SSE 事件类型
	Role    string          `json:"role"`     // consumer / merchant
	UserID  uint            `json:"user_id"`  // role=consumer 时的接收者
	StoreID uint            `json:"store_id"` // role=merchant 时的接收店铺
	Payload json.RawMessage `json:"payload"`  // 事件负载（原样透传给 SSE data）
}

// OrderStatusPayload 订单状态事件负载（与前端约定的 camelCase 字段）
type OrderStatusPayload struct {
	OrderID   uint   `json:"orderId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewOrderPayload 新订单事件负载（投递给店主工作台）
type NewOrderPayload struct {
	OrderID   uint   `json:"orderId"`
	StoreID   uint   `json:"storeId"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// NewOrderStatusNotice 构建投递给消费者的订单状态通知
func NewOrderStatusNotice(userID, orderID uint, status, message string, at time.Time) (Notice, error) {
	payload, err := json.Marshal(OrderStatusPayload{
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		Timestamp: at.Format(time.RFC3339),
	})
	if err != nil {
		return Notice{}, err
	}
	return Notice{
		Type:    constants.SSEEventOrderStatusUpdate,
		Role:    constants.RoleConsumer,
		UserID:  userID,
		Payload: payload,
	}, nil
}

// NewNewOrderNotice 构建投递给店主的新订单通知
func NewNewOrderNotice(storeID, orderID uint, amount string, at time.Time) (Notice, error) {
	payload, err := json.Marshal(NewOrderPayload{
		OrderID:   orderID,
		StoreID:   storeID,
		Amount:    amount,
		Timestamp: at.Format(time.RFC3339),
	})
	if err != nil {
		return Notice{}, err
	}
	return Notice{
		Type:    constants.SSEEventNewOrder,
		Role:    constants.RoleMerchant,
		StoreID: storeID,
		Payload: payload,
	}, nil
}
