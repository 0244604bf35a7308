package push

import (
	"context"
	"fmt"
	"sync"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"

	"github.com/gin-contrib/sse"
	"github.com/google/uuid"
)

// Subscriber 单个 SSE 连接的事件队列
type Subscriber struct {
	ID     string
	Events <-chan sse.Event

	hub *Hub
	key string
	ch  chan sse.Event
}

// Close 注销订阅者
func (s *Subscriber) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.remove(s.key, s.ID)
}

// Hub 按身份路由通知到 SSE 连接
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // identity key -> subscriber id -> subscriber
	bufferSize  int
	cancelBus   func()
}

// NewHub 创建 Hub
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: map[string]map[string]*Subscriber{},
		bufferSize:  bufferSize,
	}
}

// AttachBus 订阅总线并开始路由
func (h *Hub) AttachBus(ctx context.Context, bus Bus) error {
	cancel, err := bus.Subscribe(ctx, h.Route)
	if err != nil {
		return err
	}
	h.cancelBus = cancel
	return nil
}

// Shutdown 注销总线订阅并断开所有连接
func (h *Hub) Shutdown() {
	if h.cancelBus != nil {
		h.cancelBus()
		h.cancelBus = nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, subs := range h.subscribers {
		for id, sub := range subs {
			close(sub.ch)
			delete(subs, id)
		}
		delete(h.subscribers, key)
	}
}

// SubscribeConsumer 注册消费者连接
func (h *Hub) SubscribeConsumer(userID uint) *Subscriber {
	return h.subscribe(identityKey(constants.RoleConsumer, userID))
}

// SubscribeMerchant 注册店主连接（按店铺寻址）
func (h *Hub) SubscribeMerchant(storeID uint) *Subscriber {
	return h.subscribe(identityKey(constants.RoleMerchant, storeID))
}

// Route 将通知投递到匹配身份的全部连接；队列满则丢弃并告警
func (h *Hub) Route(notice Notice) {
	var key string
	switch notice.Role {
	case constants.RoleConsumer:
		key = identityKey(constants.RoleConsumer, notice.UserID)
	case constants.RoleMerchant:
		key = identityKey(constants.RoleMerchant, notice.StoreID)
	default:
		logger.Warnw("push_route_unknown_role", "role", notice.Role, "type", notice.Type)
		return
	}

	event := sse.Event{
		Event: notice.Type,
		Data:  string(notice.Payload),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers[key] {
		select {
		case sub.ch <- event:
		default:
			logger.Warnw("push_subscriber_buffer_full",
				"identity", key,
				"subscriber", sub.ID,
				"type", notice.Type,
			)
		}
	}
}

// SubscriberCount 返回某身份当前的连接数
func (h *Hub) SubscriberCount(role string, id uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[identityKey(role, id)])
}

func (h *Hub) subscribe(key string) *Subscriber {
	ch := make(chan sse.Event, h.bufferSize)
	sub := &Subscriber{
		ID:     uuid.NewString(),
		Events: ch,
		hub:    h,
		key:    key,
		ch:     ch,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[key] == nil {
		h.subscribers[key] = map[string]*Subscriber{}
	}
	h.subscribers[key][sub.ID] = sub
	return sub
}

func (h *Hub) remove(key, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subscribers[key]
	if subs == nil {
		return
	}
	if sub, ok := subs[id]; ok {
		close(sub.ch)
		delete(subs, id)
	}
	if len(subs) == 0 {
		delete(h.subscribers, key)
	}
}

func identityKey(role string, id uint) string {
	return fmt.Sprintf("%s:%d", role, id)
}
