package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mukkai/mukkai-go/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Bus 通知总线：Worker 进程发布，API 进程的 Hub 订阅
type Bus interface {
	Publish(ctx context.Context, notice Notice) error
	Subscribe(ctx context.Context, handler func(Notice)) (cancel func(), err error)
	Close() error
}

// LocalBus 进程内总线（单进程模式 / 测试）
type LocalBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(Notice)
	closed   bool
}

// NewLocalBus 创建进程内总线
func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: map[int]func(Notice){}}
}

// Publish 同步投递给全部订阅者
func (b *LocalBus) Publish(_ context.Context, notice Notice) error {
	b.mu.Lock()
	handlers := make([]func(Notice), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(notice)
	}
	return nil
}

// Subscribe 注册订阅者
func (b *LocalBus) Subscribe(_ context.Context, handler func(Notice)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("bus closed")
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

// Close 关闭总线
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = map[int]func(Notice){}
	return nil
}

// RedisBus Redis Pub/Sub 总线（api 与 worker 分进程部署时桥接通知）
type RedisBus struct {
	client  *redis.Client
	channel string
}

// NewRedisBus 创建 Redis 总线
func NewRedisBus(client *redis.Client, prefix string) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: fmt.Sprintf("%s:push", prefix),
	}
}

// Publish 发布通知到 Redis 频道
func (b *RedisBus) Publish(ctx context.Context, notice Notice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe 订阅 Redis 频道并逐条回调
func (b *RedisBus) Subscribe(ctx context.Context, handler func(Notice)) (func(), error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	ch := sub.Channel()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var notice Notice
				if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
					logger.Warnw("push_bus_decode_failed", "error", err)
					continue
				}
				handler(notice)
			}
		}
	}()
	return func() {
		close(done)
		_ = sub.Close()
	}, nil
}

// Close 关闭总线（底层连接由 cache 模块统一管理）
func (b *RedisBus) Close() error {
	return nil
}
