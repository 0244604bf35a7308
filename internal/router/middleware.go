package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/mukkai/mukkai-go/internal/cache"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/repository"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// UserJWTAuthMiddleware 消费者 JWT 鉴权中间件
func UserJWTAuthMiddleware(authService *service.UserAuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			return
		}

		claims, err := authService.ParseUserJWT(tokenString)
		if err != nil || claims.UserID == 0 {
			abortUnauthorized(c, "token 无效或已过期")
			return
		}

		if cached, hit, cacheErr := cache.GetAuthState(c.Request.Context(), constants.RoleConsumer, claims.UserID); cacheErr == nil && hit && cached != nil {
			if cached.Status != constants.AccountStatusRegistered {
				abortUnauthorized(c, "账号已注销")
				return
			}
			c.Set(shared.ContextKeyUserID, claims.UserID)
			c.Next()
			return
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			abortUnauthorized(c, "token 无效或已过期")
			return
		}
		if user.Status != constants.AccountStatusRegistered {
			abortUnauthorized(c, "账号已注销")
			return
		}
		_ = cache.SetAuthState(c.Request.Context(), constants.RoleConsumer, cache.BuildUserAuthState(user))

		c.Set(shared.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// StoreJWTAuthMiddleware 店主 JWT 鉴权中间件
func StoreJWTAuthMiddleware(authService *service.StoreAuthService, storeUserRepo repository.StoreUserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			return
		}

		claims, err := authService.ParseStoreJWT(tokenString)
		if err != nil || claims.StoreUserID == 0 {
			abortUnauthorized(c, "token 无效或已过期")
			return
		}

		if cached, hit, cacheErr := cache.GetAuthState(c.Request.Context(), constants.RoleMerchant, claims.StoreUserID); cacheErr == nil && hit && cached != nil {
			if cached.Status != constants.AccountStatusRegistered {
				abortUnauthorized(c, "账号已注销")
				return
			}
			c.Set(shared.ContextKeyStoreUserID, claims.StoreUserID)
			c.Set(shared.ContextKeyStoreID, claims.StoreID)
			c.Next()
			return
		}

		storeUser, err := storeUserRepo.GetByID(claims.StoreUserID)
		if err != nil || storeUser == nil {
			abortUnauthorized(c, "token 无效或已过期")
			return
		}
		if storeUser.Status != constants.AccountStatusRegistered {
			abortUnauthorized(c, "账号已注销")
			return
		}
		_ = cache.SetAuthState(c.Request.Context(), constants.RoleMerchant, cache.BuildStoreUserAuthState(storeUser))

		c.Set(shared.ContextKeyStoreUserID, claims.StoreUserID)
		c.Set(shared.ContextKeyStoreID, storeUser.StoreID)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "缺少 Authorization 请求头")
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		abortUnauthorized(c, "Authorization 请求头格式错误")
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, description string) {
	response.Unauthorized(c, description)
	c.Abort()
}
