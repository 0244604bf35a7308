package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/logger"
)

// Client REST API 客户端，消费者与店主 token 各自独立保存
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu             sync.RWMutex
	tokens         map[string]string // role -> token
	onUnauthorized func(role string)

	checkoutMu sync.Mutex
	inCheckout bool
}

// Options 客户端配置
type Options struct {
	BaseURL        string
	TimeoutSeconds int
	// OnUnauthorized 收到 401 时回调，由会话层清理本地登录态
	OnUnauthorized func(role string)
}

// NewClient 创建 API 客户端
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, clienterr.Wrap(clienterr.ErrConfig, "baseURL 不能为空")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, clienterr.Wrap(clienterr.ErrConfig, "baseURL 不合法: %v", err)
	}
	timeout := time.Duration(opts.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: timeout},
		tokens:         map[string]string{},
		onUnauthorized: opts.OnUnauthorized,
	}, nil
}

// SetToken 设置某个角色的访问 token，空串表示清除
func (c *Client) SetToken(role, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		delete(c.tokens, role)
		return
	}
	c.tokens[role] = token
}

// Token 读取某个角色的访问 token
func (c *Client) Token(role string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens[role]
}

// BaseURL 返回服务端基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope 服务端统一响应结构
type envelope struct {
	Result response.Result `json:"result"`
	Body   json.RawMessage `json:"body"`
}

// do 发起请求并解析响应信封。role 为空表示无需携带 token
func (c *Client) do(ctx context.Context, method, path, role string, payload, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return clienterr.Wrap(clienterr.ErrValidation, "请求编码失败: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return clienterr.Wrap(clienterr.ErrConfig, "构造请求失败: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		token := c.Token(role)
		if token == "" {
			return clienterr.Wrap(clienterr.ErrAuthRequired, "%s 未登录", role)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return clienterr.Wrap(clienterr.ErrNetwork, "请求失败: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return clienterr.Wrap(clienterr.ErrNetwork, "读取响应失败: %v", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return clienterr.Wrap(clienterr.ErrNetwork, "响应格式错误 (status %d)", resp.StatusCode)
	}

	if env.Result.ResultCode != response.CodeOK {
		return c.mapResultError(role, resp.StatusCode, env.Result)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(env.Body, dest); err != nil {
		return clienterr.Wrap(clienterr.ErrNetwork, "响应体解析失败: %v", err)
	}
	return nil
}

func (c *Client) mapResultError(role string, status int, result response.Result) error {
	description := strings.TrimSpace(result.ResultDescription)
	if description == "" {
		description = result.ResultMessage
	}
	code := result.ResultCode
	if code == 0 {
		code = status
	}
	switch code {
	case response.CodeUnauthorized:
		if role != "" {
			c.SetToken(role, "")
			if c.onUnauthorized != nil {
				c.onUnauthorized(role)
			}
			logger.Warnw("api_auth_expired", "role", role)
			return clienterr.Wrap(clienterr.ErrAuthExpired, "%s", description)
		}
		return clienterr.Wrap(clienterr.ErrAuthRequired, "%s", description)
	case response.CodeBadRequest, response.CodeForbidden:
		return clienterr.Wrap(clienterr.ErrValidation, "%s", description)
	case response.CodeNotFound:
		return clienterr.Wrap(clienterr.ErrNotFound, "%s", description)
	case response.CodeTooManyRequests:
		return clienterr.Wrap(clienterr.ErrNetwork, "%s", description)
	default:
		return clienterr.Wrap(clienterr.ErrNetwork, "服务端错误 (code %d): %s", code, description)
	}
}

func pathWithID(format string, id uint) string {
	return fmt.Sprintf(format, id)
}

// 角色常量转发，避免调用方直接依赖 constants
const (
	RoleConsumer = constants.RoleConsumer
	RoleMerchant = constants.RoleMerchant
)
