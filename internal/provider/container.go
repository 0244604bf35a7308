package provider

import (
	"context"

	"github.com/mukkai/mukkai-go/internal/cache"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/push"
	"github.com/mukkai/mukkai-go/internal/queue"
	"github.com/mukkai/mukkai-go/internal/repository"
	"github.com/mukkai/mukkai-go/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Bus         push.Bus
	Hub         *push.Hub

	// Repositories
	UserRepo      repository.UserRepository
	StoreUserRepo repository.StoreUserRepository
	StoreRepo     repository.StoreRepository
	StoreMenuRepo repository.StoreMenuRepository
	OrderRepo     repository.OrderRepository

	// Services
	UserAuthService  *service.UserAuthService
	StoreAuthService *service.StoreAuthService
	StoreService     *service.StoreService
	MenuService      *service.MenuService
	OrderService     *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化推送总线与 Hub
	c.initPush()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	return c
}

// initPush Redis 可用时跨进程广播，否则进程内直连
func (c *Container) initPush() {
	if cache.Enabled() {
		c.Bus = push.NewRedisBus(cache.Client(), cache.Prefix())
	} else {
		c.Bus = push.NewLocalBus()
	}
	c.Hub = push.NewHub(c.Config.SSE.ClientBufferSize)
	if err := c.Hub.AttachBus(context.Background(), c.Bus); err != nil {
		logger.Errorw("provider_attach_bus_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.StoreUserRepo = repository.NewStoreUserRepository(db)
	c.StoreRepo = repository.NewStoreRepository(db)
	c.StoreMenuRepo = repository.NewStoreMenuRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.StoreAuthService = service.NewStoreAuthService(c.Config, c.StoreUserRepo, c.StoreRepo)
	c.StoreService = service.NewStoreService(c.StoreRepo)
	c.MenuService = service.NewMenuService(c.StoreRepo, c.StoreMenuRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.StoreRepo,
		c.StoreMenuRepo,
		c.QueueClient,
		c.Bus,
		c.Config.Order.AutoProgress,
		c.Config.Order.ProgressIntervalSeconds,
	)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Hub != nil {
		c.Hub.Shutdown()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.QueueClient != nil {
		_ = c.QueueClient.Close()
	}
}
