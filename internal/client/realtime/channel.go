package realtime

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/logger"
)

// ConnState 通道连接状态
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// DisconnectReason 断开原因，决定是否自动重连
type DisconnectReason string

const (
	ReasonNone         DisconnectReason = ""
	ReasonAuthRequired DisconnectReason = "auth_required" // 无 token，不重试
	ReasonConfig       DisconnectReason = "config"        // 配置类错误，不重试
	ReasonTransient    DisconnectReason = "transient"     // 网络抖动，可重试
	ReasonExhausted    DisconnectReason = "exhausted"     // 重试次数用尽
	ReasonClosed       DisconnectReason = "closed"        // 主动断开
)

// Listener 事件回调，收到指定类型事件的原始 data 负载
type Listener func(data []byte)

// Subscription 监听句柄，用于取消注册
type Subscription struct {
	eventType string
	id        uint64
}

const (
	defaultBackoffBaseMS    = 1000
	defaultBackoffMaxMS     = 30000
	defaultMaxRetries       = 3
	defaultConnectTimeoutMS = 3000
)

// Channel 长连接推送通道。连接失败只降级不报错，
// 应用在未连接状态下必须保持完全可用
type Channel struct {
	ssePath       string
	autoReconnect bool
	maxRetries    int
	backoffBase   time.Duration
	backoffMax    time.Duration
	httpClient    *http.Client

	tokenFunc func() string
	baseURL   string

	mu         sync.Mutex
	state      ConnState
	reason     DisconnectReason
	lastErr    error
	listeners  map[string]map[uint64]Listener
	nextSubID  uint64
	attempts   int
	retryTimer *time.Timer
	cancel     context.CancelFunc
	generation uint64
	online     bool
	foreground bool
}

// NewChannel 创建推送通道。tokenFunc 返回当前有效 token，为空时跳过连接
func NewChannel(cfg *config.ClientConfig, tokenFunc func() string) *Channel {
	base := time.Duration(orDefault(cfg.BackoffBaseMS, defaultBackoffBaseMS)) * time.Millisecond
	max := time.Duration(orDefault(cfg.BackoffMaxMS, defaultBackoffMaxMS)) * time.Millisecond
	connectTimeout := time.Duration(orDefault(cfg.ConnectTimeoutMS, defaultConnectTimeoutMS)) * time.Millisecond
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	ssePath := cfg.SSEPath
	if ssePath == "" {
		ssePath = "/api/sse/connect"
	}
	return &Channel{
		ssePath:       ssePath,
		autoReconnect: cfg.AutoReconnect,
		maxRetries:    maxRetries,
		backoffBase:   base,
		backoffMax:    max,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		tokenFunc:     tokenFunc,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
				ResponseHeaderTimeout: connectTimeout,
			},
		},
		state:      StateDisconnected,
		listeners:  make(map[string]map[uint64]Listener),
		online:     true,
		foreground: true,
	}
}

// State 返回当前连接状态
func (ch *Channel) State() ConnState {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// Reason 返回最近一次断开的原因
func (ch *Channel) Reason() DisconnectReason {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.reason
}

// LastErr 返回最近一次断开携带的错误
func (ch *Channel) LastErr() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.lastErr
}

// AddListener 注册事件回调，返回的句柄用于取消。
// 同一事件类型支持多个回调，互不影响。
// 去重以句柄为单位而非函数值。同一函数重复注册会得到独立句柄，
// 事件到达时会被调用多次，调用方需自行避免重复注册
func (ch *Channel) AddListener(eventType string, fn Listener) Subscription {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.nextSubID++
	id := ch.nextSubID
	if ch.listeners[eventType] == nil {
		ch.listeners[eventType] = make(map[uint64]Listener)
	}
	ch.listeners[eventType][id] = fn
	return Subscription{eventType: eventType, id: id}
}

// RemoveListener 取消注册，重复取消是安全的
func (ch *Channel) RemoveListener(sub Subscription) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if set, ok := ch.listeners[sub.eventType]; ok {
		delete(set, sub.id)
		if len(set) == 0 {
			delete(ch.listeners, sub.eventType)
		}
	}
}

// Connect 发起连接。无论成败都不返回错误，失败只体现在状态上。
// 无 token 时不发起任何网络请求
func (ch *Channel) Connect() {
	ch.mu.Lock()
	if ch.state == StateConnected || ch.state == StateConnecting {
		ch.mu.Unlock()
		return
	}
	token := ch.tokenFunc()
	if token == "" {
		ch.state = StateDisconnected
		ch.reason = ReasonAuthRequired
		ch.lastErr = clienterr.Wrap(clienterr.ErrAuthRequired, "未登录，跳过推送连接")
		ch.mu.Unlock()
		logger.Debugw("sse_connect_skipped", "reason", "no_token")
		return
	}
	ch.attempts = 0
	ch.generation++
	gen := ch.generation
	ch.state = StateConnecting
	ch.reason = ReasonNone
	ch.lastErr = nil
	ctx, cancel := context.WithCancel(context.Background())
	ch.cancel = cancel
	ch.mu.Unlock()

	go ch.run(ctx, gen, token)
}

// Disconnect 主动断开，幂等。取消重试定时器并清空监听注册
func (ch *Channel) Disconnect() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.generation++
	if ch.retryTimer != nil {
		ch.retryTimer.Stop()
		ch.retryTimer = nil
	}
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}
	ch.state = StateDisconnected
	ch.reason = ReasonClosed
	ch.lastErr = nil
	ch.listeners = make(map[string]map[uint64]Listener)
}

// NotifyOnline 宿主环境恢复网络时调用
func (ch *Channel) NotifyOnline() {
	ch.mu.Lock()
	ch.online = true
	ch.mu.Unlock()
	ch.maybeReconnect()
}

// NotifyOffline 宿主环境断网时调用，断网期间不发起重连
func (ch *Channel) NotifyOffline() {
	ch.mu.Lock()
	ch.online = false
	ch.mu.Unlock()
}

// NotifyForeground 宿主环境回到前台时调用
func (ch *Channel) NotifyForeground() {
	ch.mu.Lock()
	ch.foreground = true
	ch.mu.Unlock()
	ch.maybeReconnect()
}

// NotifyBackground 宿主环境退到后台时调用，后台期间不发起重连
func (ch *Channel) NotifyBackground() {
	ch.mu.Lock()
	ch.foreground = false
	ch.mu.Unlock()
}

func (ch *Channel) maybeReconnect() {
	ch.mu.Lock()
	eligible := ch.autoReconnect && ch.online && ch.foreground &&
		ch.state == StateDisconnected &&
		(ch.reason == ReasonTransient || ch.reason == ReasonExhausted)
	ch.mu.Unlock()
	if eligible {
		logger.Debugw("sse_env_reconnect")
		ch.Connect()
	}
}

func (ch *Channel) run(ctx context.Context, gen uint64, token string) {
	streamURL := ch.baseURL + ch.ssePath + "?token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		ch.fail(gen, ReasonConfig, clienterr.Wrap(clienterr.ErrConfig, "推送地址无效: %v", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := ch.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ch.fail(gen, ReasonTransient, clienterr.Wrap(clienterr.ErrNetwork, "推送连接失败: %v", err))
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		ch.fail(gen, ReasonAuthRequired, clienterr.Wrap(clienterr.ErrAuthExpired, "推送连接被拒绝"))
		return
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// 路径错误、跨域拒绝等配置问题，重试没有意义
		ch.fail(gen, ReasonConfig, clienterr.Wrap(clienterr.ErrConfig, "推送连接被拒绝: HTTP %d", resp.StatusCode))
		return
	default:
		ch.fail(gen, ReasonTransient, clienterr.Wrap(clienterr.ErrNetwork, "推送连接失败: HTTP %d", resp.StatusCode))
		return
	}

	ch.mu.Lock()
	if gen != ch.generation {
		ch.mu.Unlock()
		return
	}
	ch.state = StateConnected
	ch.reason = ReasonNone
	ch.lastErr = nil
	ch.attempts = 0
	ch.mu.Unlock()
	logger.Infow("sse_connected", "url", ch.baseURL+ch.ssePath)

	err = ch.readStream(ctx, gen, resp)
	if ctx.Err() != nil {
		return
	}
	ch.fail(gen, ReasonTransient, clienterr.Wrap(clienterr.ErrNetwork, "推送连接中断: %v", err))
}

// readStream 逐行解析 SSE 流，空行提交事件，冒号开头的心跳注释忽略
func (ch *Channel) readStream(ctx context.Context, gen uint64, resp *http.Response) error {
	reader := bufio.NewReader(resp.Body)
	var eventType string
	var data bytes.Buffer

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if data.Len() > 0 {
				ch.dispatch(gen, eventType, data.Bytes())
			}
			eventType = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// 心跳
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// dispatch 将事件投递给所有已注册回调，单个回调 panic 不影响其余回调
func (ch *Channel) dispatch(gen uint64, eventType string, data []byte) {
	ch.mu.Lock()
	if gen != ch.generation {
		ch.mu.Unlock()
		return
	}
	set := ch.listeners[eventType]
	callbacks := make([]Listener, 0, len(set))
	for _, fn := range set {
		callbacks = append(callbacks, fn)
	}
	ch.mu.Unlock()

	payload := make([]byte, len(data))
	copy(payload, data)
	for _, fn := range callbacks {
		ch.invoke(eventType, fn, payload)
	}
}

func (ch *Channel) invoke(eventType string, fn Listener, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("sse_listener_panic", "event", eventType, "panic", fmt.Sprint(r))
		}
	}()
	fn(data)
}

// fail 记录断开原因，瞬时错误按退避策略安排重试
func (ch *Channel) fail(gen uint64, reason DisconnectReason, cause error) {
	ch.mu.Lock()
	if gen != ch.generation {
		ch.mu.Unlock()
		return
	}
	ch.state = StateDisconnected
	ch.reason = reason
	ch.lastErr = cause
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	if reason != ReasonTransient || !ch.autoReconnect {
		ch.mu.Unlock()
		logger.Warnw("sse_disconnected", "reason", string(reason), "error", cause)
		return
	}
	if ch.attempts >= ch.maxRetries {
		ch.reason = ReasonExhausted
		ch.mu.Unlock()
		logger.Warnw("sse_retries_exhausted", "attempts", ch.maxRetries, "error", cause)
		return
	}
	if !ch.online || !ch.foreground {
		ch.mu.Unlock()
		logger.Debugw("sse_retry_deferred", "online", ch.online, "foreground", ch.foreground)
		return
	}

	delay := ch.backoffDelay(ch.attempts)
	ch.attempts++
	attempt := ch.attempts
	ch.retryTimer = time.AfterFunc(delay, func() {
		ch.retry(gen)
	})
	ch.mu.Unlock()
	logger.Warnw("sse_reconnect_scheduled", "attempt", attempt, "delay_ms", delay.Milliseconds(), "error", cause)
}

func (ch *Channel) retry(gen uint64) {
	ch.mu.Lock()
	if gen != ch.generation || ch.state != StateDisconnected {
		ch.mu.Unlock()
		return
	}
	token := ch.tokenFunc()
	if token == "" {
		ch.reason = ReasonAuthRequired
		ch.lastErr = clienterr.Wrap(clienterr.ErrAuthRequired, "未登录，放弃重连")
		ch.mu.Unlock()
		return
	}
	ch.state = StateConnecting
	ch.reason = ReasonNone
	ctx, cancel := context.WithCancel(context.Background())
	ch.cancel = cancel
	ch.mu.Unlock()

	go ch.run(ctx, gen, token)
}

// backoffDelay 指数退避，基础间隔逐次翻倍并封顶
func (ch *Channel) backoffDelay(attempt int) time.Duration {
	delay := ch.backoffBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= ch.backoffMax {
			return ch.backoffMax
		}
	}
	if delay > ch.backoffMax {
		return ch.backoffMax
	}
	return delay
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
