package router

import (
	"fmt"
	"strings"

	"github.com/mukkai/mukkai-go/internal/cache"
	"github.com/mukkai/mukkai-go/internal/config"
	merchanthandlers "github.com/mukkai/mukkai-go/internal/http/handlers/merchant"
	publichandlers "github.com/mukkai/mukkai-go/internal/http/handlers/public"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按消费者/店主分组）
	publicHandler := publichandlers.New(c)
	merchantHandler := merchanthandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mk"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 开放接口（无需登录）
	openAPI := r.Group("/open-api")
	{
		openAPI.POST("/user/register", publicHandler.UserRegister)
		openAPI.POST("/user/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		openAPI.POST("/store-user", merchantHandler.StoreUserRegister)
		openAPI.POST("/store-user/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), merchantHandler.StoreUserLogin)
	}

	api := r.Group("/api")
	{
		// SSE 连接不走 Bearer 头鉴权，token 在查询参数中自行校验
		api.GET("/sse/connect", publicHandler.SSEConnect)

		// 消费者接口（需消费者登录态）
		consumer := api.Group("")
		consumer.Use(UserJWTAuthMiddleware(c.UserAuthService, c.UserRepo))
		{
			consumer.GET("/user/me", publicHandler.GetCurrentUser)
			consumer.GET("/store/search", publicHandler.SearchStores)
			consumer.GET("/store/:id", publicHandler.GetStore)
			consumer.GET("/store-menu/search", publicHandler.SearchStoreMenus)
			consumer.POST("/user-order", publicHandler.CreateOrder)
			consumer.GET("/user-order/current", publicHandler.ListCurrentOrders)
			consumer.GET("/user-order/history", publicHandler.ListHistoryOrders)
			consumer.GET("/user-order/id/:id", publicHandler.GetOrder)
		}

		// 店主接口（需店主登录态）
		store := api.Group("")
		store.Use(StoreJWTAuthMiddleware(c.StoreAuthService, c.StoreUserRepo))
		{
			store.GET("/store-user/me", merchantHandler.GetCurrentStoreUser)
			store.GET("/store-order/current", merchantHandler.ListCurrentStoreOrders)
			store.PUT("/store-order/status", merchantHandler.UpdateOrderStatus)
		}
	}

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
