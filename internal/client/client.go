package client

import (
	"github.com/mukkai/mukkai-go/internal/client/api"
	"github.com/mukkai/mukkai-go/internal/client/cart"
	"github.com/mukkai/mukkai-go/internal/client/realtime"
	"github.com/mukkai/mukkai-go/internal/client/session"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/logger"
)

// Core 客户端核心，聚合 API 客户端、购物车、双身份会话与实时通道
type Core struct {
	API      *api.Client
	Store    storage.Store
	Cart     *cart.Engine
	Consumer *session.ConsumerSession
	Merchant *session.MerchantSession
	Channel  *realtime.Channel
}

// Options 核心装配选项
type Options struct {
	// ConfirmSwitch 跨店铺加购确认回调，缺省拒绝切换
	ConfirmSwitch cart.ConfirmSwitch
	// Store 覆盖默认存储，测试时注入内存实现
	Store storage.Store
}

// New 按配置装配客户端核心。storage_path 为空时退化为内存存储
func New(cfg *config.ClientConfig, opts Options) (*Core, error) {
	store := opts.Store
	if store == nil {
		if cfg.StoragePath != "" {
			fileStore, err := storage.NewFileStore(cfg.StoragePath)
			if err != nil {
				logger.Warnw("client_storage_fallback_memory", "path", cfg.StoragePath, "error", err)
				store = storage.NewMemoryStore()
			} else {
				store = fileStore
			}
		} else {
			store = storage.NewMemoryStore()
		}
	}

	core := &Core{Store: store}

	apiClient, err := api.NewClient(api.Options{
		BaseURL:        cfg.BaseURL,
		TimeoutSeconds: cfg.TimeoutSeconds,
		OnUnauthorized: func(role string) {
			core.handleUnauthorized(role)
		},
	})
	if err != nil {
		return nil, err
	}
	core.API = apiClient

	core.Consumer = session.NewConsumerSession(apiClient, store)
	core.Merchant = session.NewMerchantSession(apiClient, store)

	core.Cart = cart.NewEngine(store, func() bool {
		return core.Consumer.Authenticated()
	}, opts.ConfirmSwitch)

	core.Channel = realtime.NewChannel(cfg, func() string {
		if token := apiClient.Token(api.RoleConsumer); token != "" {
			return token
		}
		return apiClient.Token(api.RoleMerchant)
	})

	return core, nil
}

// handleUnauthorized 401 的全局副作用：对应身份强制登出，通道一并断开
func (c *Core) handleUnauthorized(role string) {
	switch role {
	case api.RoleConsumer:
		if c.Consumer != nil {
			c.Consumer.ForceLogout()
		}
	case api.RoleMerchant:
		if c.Merchant != nil {
			c.Merchant.ForceLogout()
		}
	}
	if c.Channel != nil {
		c.Channel.Disconnect()
	}
}

// Close 断开实时通道并落盘存储
func (c *Core) Close() {
	if c.Channel != nil {
		c.Channel.Disconnect()
	}
}
