package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthMiddlewareTest(t *testing.T) (*gin.Engine, *service.UserAuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db failed: %v", err)
	}
	// 内存库随连接存在，限制单连接避免连接池拿到空库
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		UserJWT: config.JWTConfig{
			SecretKey:   "middleware-test-secret-key-0123456789",
			ExpireHours: 1,
		},
	}
	userRepo := repository.NewUserRepository(db)
	authService := service.NewUserAuthService(cfg, userRepo)

	engine := gin.New()
	engine.GET("/protected", UserJWTAuthMiddleware(authService, userRepo), func(c *gin.Context) {
		userID := c.GetUint(shared.ContextKeyUserID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return engine, authService, db
}

func createMiddlewareUser(t *testing.T, db *gorm.DB, status string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "mw@example.com",
		PasswordHash: "unused",
		Name:         "中间件用户",
		Status:       status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestUserJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	engine, authService, db := setupAuthMiddlewareTest(t)
	user := createMiddlewareUser(t, db, constants.AccountStatusRegistered)

	token, _, err := authService.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]uint
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["user_id"] != user.ID {
		t.Fatalf("user_id = %d, want %d", body["user_id"], user.ID)
	}
}

func TestUserJWTAuthMiddlewareRejectsBadAuthorization(t *testing.T) {
	engine, _, db := setupAuthMiddlewareTest(t)
	createMiddlewareUser(t, db, constants.AccountStatusRegistered)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing_header", header: ""},
		{name: "wrong_scheme", header: "Basic abcdef"},
		{name: "garbage_token", header: "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestUserJWTAuthMiddlewareRejectsUnregisteredAccount(t *testing.T) {
	engine, authService, db := setupAuthMiddlewareTest(t)
	user := createMiddlewareUser(t, db, constants.AccountStatusUnregistered)

	token, _, err := authService.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "账号已注销") {
		t.Fatalf("body = %s, want unregistered description", rec.Body.String())
	}
}

func TestRateLimitMiddlewarePassesThroughWhenRedisDisabled(t *testing.T) {
	engine := gin.New()
	rule := RateLimitRule{Prefix: "login", WindowSeconds: 60, MaxRequests: 1}
	engine.POST("/login", RateLimitMiddleware(nil, rule, KeyByIPAndJSONField("email")), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Redis 未启用时不应限流，连续请求全部放行
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.com"}`))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestKeyByIPAndJSONFieldKeepsBodyReadable(t *testing.T) {
	engine := gin.New()
	var seenKey string
	var seenEmail string
	engine.POST("/login", func(c *gin.Context) {
		seenKey = KeyByIPAndJSONField("email")(c)
		var payload struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		seenEmail = payload.Email
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"User@Example.com"}`))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(seenKey, "user@example.com|") {
		t.Fatalf("key = %q, want normalized email prefix", seenKey)
	}
	if seenEmail != "User@Example.com" {
		t.Fatalf("email = %q, body was not restored for binding", seenEmail)
	}
}
