package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/logger"
)

// State 会话状态
type State string

const (
	StateLoggedOut      State = "logged_out"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateError          State = "error"
)

// loginFunc 登录并返回序列化后的用户信息与 token
type loginFunc func(ctx context.Context, email, password string) (profile json.RawMessage, token string, err error)

// fetchProfileFunc 用当前 token 拉取用户信息
type fetchProfileFunc func(ctx context.Context) (json.RawMessage, error)

// setTokenFunc 向 API 客户端写入或清除 token
type setTokenFunc func(token string)

// config 单个身份的会话配置
type config struct {
	role       string
	tokenKey   string
	emailKey   string
	profileKey string

	login        loginFunc
	fetchProfile fetchProfileFunc
	setToken     setTokenFunc
}

// Session 单个身份的会话。消费者与店主各持一个实例，互不影响
type Session struct {
	cfg   config
	store storage.Store

	mu       sync.Mutex
	state    State
	err      error
	profile  json.RawMessage
	loginSeq uint64
}

func newSession(cfg config, store storage.Store) *Session {
	return &Session{
		cfg:   cfg,
		store: store,
		state: StateLoggedOut,
	}
}

// State 返回当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err 返回最近一次失败原因，非错误状态时为 nil
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Profile 返回已缓存的用户信息（JSON），未登录时为 nil
func (s *Session) Profile() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Authenticated 是否处于已登录状态
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// LastLoginEmail 返回最近一次成功登录的邮箱，用于登录表单回填
func (s *Session) LastLoginEmail() string {
	if s.store == nil {
		return ""
	}
	email, err := s.store.Get(s.cfg.emailKey)
	if err != nil {
		return ""
	}
	return email
}

// Login 登录。token 与用户信息全部就绪后才进入已登录状态，
// 任何一步失败都会清理本地痕迹。并发调用时以最后一次发起的为准
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return clienterr.Wrap(clienterr.ErrValidation, "邮箱与密码不能为空")
	}

	s.mu.Lock()
	s.loginSeq++
	seq := s.loginSeq
	s.state = StateAuthenticating
	s.err = nil
	s.mu.Unlock()

	profile, token, err := s.cfg.login(ctx, email, password)
	if err != nil {
		s.failLogin(seq, err)
		return err
	}

	// 登录响应可能不带完整资料，此时回查一次
	if len(profile) == 0 {
		profile, err = s.cfg.fetchProfile(ctx)
		if err != nil {
			s.failLogin(seq, err)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loginSeq {
		// 已有更新的登录请求接管
		return nil
	}
	s.persistLocked(token, email, profile)
	s.state = StateAuthenticated
	s.err = nil
	s.profile = profile
	return nil
}

// LoadUser 用本地 token 恢复登录态。token 无效时彻底登出而非半登录
func (s *Session) LoadUser(ctx context.Context) error {
	token := s.storedToken()
	if token == "" {
		s.mu.Lock()
		s.state = StateLoggedOut
		s.profile = nil
		s.err = nil
		s.mu.Unlock()
		return clienterr.Wrap(clienterr.ErrAuthRequired, "%s 未登录", s.cfg.role)
	}
	s.cfg.setToken(token)

	profile, err := s.cfg.fetchProfile(ctx)
	if err != nil {
		if errors.Is(err, clienterr.ErrAuthExpired) || errors.Is(err, clienterr.ErrAuthRequired) {
			s.Logout()
		} else {
			s.mu.Lock()
			s.state = StateError
			s.err = err
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.err = nil
	s.profile = profile
	if s.store != nil {
		if err := s.store.Set(s.cfg.profileKey, string(profile)); err != nil {
			logger.Warnw("session_persist_profile_failed", "role", s.cfg.role, "error", err)
		}
	}
	return nil
}

// Logout 登出并清理本地痕迹，另一身份不受影响
func (s *Session) Logout() {
	s.cfg.setToken("")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoggedOut
	s.err = nil
	s.profile = nil
	s.purgeLocked()
}

// ForceLogout 收到 401 等服务端信号时调用，语义与 Logout 一致
func (s *Session) ForceLogout() {
	logger.Warnw("session_force_logout", "role", s.cfg.role)
	s.Logout()
}

func (s *Session) failLogin(seq uint64, cause error) {
	s.cfg.setToken("")
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loginSeq {
		return
	}
	s.state = StateError
	s.err = cause
	s.profile = nil
	s.purgeLocked()
}

func (s *Session) storedToken() string {
	if s.store == nil {
		return ""
	}
	token, err := s.store.Get(s.cfg.tokenKey)
	if err != nil {
		return ""
	}
	return token
}

func (s *Session) persistLocked(token, email string, profile json.RawMessage) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(s.cfg.tokenKey, token); err != nil {
		logger.Warnw("session_persist_token_failed", "role", s.cfg.role, "error", err)
	}
	if err := s.store.Set(s.cfg.emailKey, email); err != nil {
		logger.Warnw("session_persist_email_failed", "role", s.cfg.role, "error", err)
	}
	if err := s.store.Set(s.cfg.profileKey, string(profile)); err != nil {
		logger.Warnw("session_persist_profile_failed", "role", s.cfg.role, "error", err)
	}
}

// purgeLocked 清理 token 与资料，保留最近登录邮箱用于表单回填
func (s *Session) purgeLocked() {
	if s.store == nil {
		return
	}
	_ = s.store.Delete(s.cfg.tokenKey)
	_ = s.store.Delete(s.cfg.profileKey)
}
