package session

import (
	"context"
	"encoding/json"

	"github.com/mukkai/mukkai-go/internal/client/api"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/http/dto"
)

// ConsumerSession 消费者会话
type ConsumerSession struct {
	*Session
}

// NewConsumerSession 创建消费者会话
func NewConsumerSession(client *api.Client, store storage.Store) *ConsumerSession {
	cfg := config{
		role:       api.RoleConsumer,
		tokenKey:   constants.StorageKeyAccessToken,
		emailKey:   constants.StorageKeyLastLoginEmail,
		profileKey: constants.StorageKeyConsumerProfile,
		login: func(ctx context.Context, email, password string) (json.RawMessage, string, error) {
			result, err := client.LoginConsumer(ctx, email, password)
			if err != nil {
				return nil, "", err
			}
			if result.User == nil {
				return nil, result.AccessToken, nil
			}
			return marshalProfile(result.User), result.AccessToken, nil
		},
		fetchProfile: func(ctx context.Context) (json.RawMessage, error) {
			user, err := client.GetConsumerMe(ctx)
			if err != nil {
				return nil, err
			}
			return marshalProfile(user), nil
		},
		setToken: func(token string) {
			client.SetToken(api.RoleConsumer, token)
		},
	}
	return &ConsumerSession{Session: newSession(cfg, store)}
}

// User 返回已登录的消费者信息，未登录时为 nil
func (s *ConsumerSession) User() *dto.User {
	raw := s.Profile()
	if len(raw) == 0 {
		return nil
	}
	var user dto.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	return &user
}

// MerchantSession 店主会话
type MerchantSession struct {
	*Session
}

// NewMerchantSession 创建店主会话
func NewMerchantSession(client *api.Client, store storage.Store) *MerchantSession {
	cfg := config{
		role:       api.RoleMerchant,
		tokenKey:   constants.StorageKeyMerchantAccessToken,
		emailKey:   constants.StorageKeyMerchantLoginEmail,
		profileKey: constants.StorageKeyMerchantProfile,
		login: func(ctx context.Context, email, password string) (json.RawMessage, string, error) {
			result, err := client.LoginMerchant(ctx, email, password)
			if err != nil {
				return nil, "", err
			}
			if result.StoreUser == nil {
				return nil, result.AccessToken, nil
			}
			return marshalProfile(result.StoreUser), result.AccessToken, nil
		},
		fetchProfile: func(ctx context.Context) (json.RawMessage, error) {
			storeUser, err := client.GetMerchantMe(ctx)
			if err != nil {
				return nil, err
			}
			return marshalProfile(storeUser), nil
		},
		setToken: func(token string) {
			client.SetToken(api.RoleMerchant, token)
		},
	}
	return &MerchantSession{Session: newSession(cfg, store)}
}

// StoreUser 返回已登录的店主信息，未登录时为 nil
func (s *MerchantSession) StoreUser() *dto.StoreUser {
	raw := s.Profile()
	if len(raw) == 0 {
		return nil
	}
	var storeUser dto.StoreUser
	if err := json.Unmarshal(raw, &storeUser); err != nil {
		return nil
	}
	return &storeUser
}

// StoreID 返回店主所属店铺 ID，未登录时为 0
func (s *MerchantSession) StoreID() uint {
	storeUser := s.StoreUser()
	if storeUser == nil {
		return 0
	}
	return storeUser.StoreID
}

func marshalProfile(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
