package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mukkai/mukkai-go/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AuthState 账号鉴权快照（消费者与店主共用同一结构，按角色分键）
// 仅用于服务端 Redis 缓存，避免每次请求回查数据库
type AuthState struct {
	AccountID uint   `json:"account_id"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

func authStateKey(role string, accountID uint) string {
	return fmt.Sprintf("auth:%s:%d", role, accountID)
}

// BuildUserAuthState 从消费者模型构建鉴权快照
func BuildUserAuthState(user *models.User) *AuthState {
	if user == nil {
		return nil
	}
	return &AuthState{
		AccountID: user.ID,
		Status:    user.Status,
		UpdatedAt: time.Now().Unix(),
	}
}

// BuildStoreUserAuthState 从店主模型构建鉴权快照
func BuildStoreUserAuthState(storeUser *models.StoreUser) *AuthState {
	if storeUser == nil {
		return nil
	}
	return &AuthState{
		AccountID: storeUser.ID,
		Status:    storeUser.Status,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetAuthState 获取鉴权快照
func GetAuthState(ctx context.Context, role string, accountID uint) (*AuthState, bool, error) {
	if accountID == 0 {
		return nil, false, nil
	}
	var state AuthState
	hit, err := GetJSON(ctx, authStateKey(role, accountID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAuthState 写入鉴权快照
func SetAuthState(ctx context.Context, role string, state *AuthState) error {
	if state == nil || state.AccountID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(role, state.AccountID), state, authStateCacheTTL)
}

// DelAuthState 删除鉴权快照
func DelAuthState(ctx context.Context, role string, accountID uint) error {
	if accountID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(role, accountID))
}
