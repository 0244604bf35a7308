package service

import (
	"errors"
	"testing"
	"time"

	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		UserJWT: config.JWTConfig{
			SecretKey:   "user-test-secret-user-test-secret!!",
			ExpireHours: 24,
		},
		StoreJWT: config.JWTConfig{
			SecretKey:   "store-test-secret-store-test-secret",
			ExpireHours: 24,
		},
	}
}

func setupAuthTest(t *testing.T) (*UserAuthService, *StoreAuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.StoreUser{}, &models.Store{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := testAuthConfig()
	userSvc := NewUserAuthService(cfg, repository.NewUserRepository(db))
	storeSvc := NewStoreAuthService(cfg, repository.NewStoreUserRepository(db), repository.NewStoreRepository(db))
	return userSvc, storeSvc, db
}

func TestUserRegisterIssuesLoginState(t *testing.T) {
	userSvc, _, _ := setupAuthTest(t)

	user, token, expiresAt, err := userSvc.Register(RegisterUserInput{
		Email:    " User@Example.COM ",
		Password: "password123",
		Name:     "测试用户",
		Address:  "测试地址",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("register should issue a valid token")
	}

	claims, err := userSvc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleConsumer {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestUserRegisterRejectsDuplicateEmail(t *testing.T) {
	userSvc, _, _ := setupAuthTest(t)

	input := RegisterUserInput{Email: "user@example.com", Password: "password123"}
	if _, _, _, err := userSvc.Register(input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	input.Email = "USER@example.com" // 大小写不同视为同一邮箱
	_, _, _, err := userSvc.Register(input)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
}

func TestUserRegisterValidation(t *testing.T) {
	userSvc, _, _ := setupAuthTest(t)

	if _, _, _, err := userSvc.Register(RegisterUserInput{Email: "not-an-email", Password: "x"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail got %v", err)
	}
	if _, _, _, err := userSvc.Register(RegisterUserInput{Email: "user@example.com", Password: "  "}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("blank password want ErrInvalidPassword got %v", err)
	}
}

func TestUserLoginChecksCredentialsAndStatus(t *testing.T) {
	userSvc, _, db := setupAuthTest(t)

	registered, _, _, err := userSvc.Register(RegisterUserInput{Email: "user@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := userSvc.Login("user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := userSvc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}

	user, token, _, err := userSvc.Login("User@Example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID || token == "" {
		t.Fatalf("login result mismatch")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last login time should be recorded")
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", constants.AccountStatusUnregistered).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := userSvc.Login("user@example.com", "password123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled got %v", err)
	}
}

func TestUserUnregisterIsSoft(t *testing.T) {
	userSvc, _, _ := setupAuthTest(t)

	user, _, _, err := userSvc.Register(RegisterUserInput{Email: "user@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := userSvc.Unregister(user.ID); err != nil {
		t.Fatalf("unregister failed: %v", err)
	}

	got, err := userSvc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("user row should survive unregister: %v", err)
	}
	if got.Status != constants.AccountStatusUnregistered {
		t.Fatalf("status want UNREGISTERED got %s", got.Status)
	}
}

func TestStoreRegisterCreatesStoreAndOwner(t *testing.T) {
	_, storeSvc, db := setupAuthTest(t)

	storeUser, token, _, err := storeSvc.Register(RegisterStoreUserInput{
		Email:                 "owner@example.com",
		Password:              "password123",
		Name:                  "店主",
		StoreName:             "金牌炸鸡",
		StoreAddress:          "炸鸡路 1 号",
		StoreCategory:         "chicken", // 小写也应被接受
		MinimumAmount:         "10000",
		MinimumDeliveryAmount: "3000",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if storeUser.StoreID == 0 {
		t.Fatalf("store should be created with the owner")
	}

	var store models.Store
	if err := db.First(&store, storeUser.StoreID).Error; err != nil {
		t.Fatalf("load store failed: %v", err)
	}
	if store.Category != constants.StoreCategoryChicken {
		t.Fatalf("category want CHICKEN got %s", store.Category)
	}
	if !store.MinimumAmount.Decimal.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("minimum amount want 10000 got %s", store.MinimumAmount)
	}

	claims, err := storeSvc.ParseStoreJWT(token)
	if err != nil {
		t.Fatalf("parse store token failed: %v", err)
	}
	if claims.StoreID != storeUser.StoreID || claims.Role != constants.RoleMerchant {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestStoreRegisterValidation(t *testing.T) {
	_, storeSvc, _ := setupAuthTest(t)

	base := RegisterStoreUserInput{
		Email:         "owner@example.com",
		Password:      "password123",
		StoreName:     "金牌炸鸡",
		StoreCategory: "CHICKEN",
	}

	noName := base
	noName.StoreName = "  "
	if _, _, _, err := storeSvc.Register(noName); !errors.Is(err, ErrInvalidStoreName) {
		t.Fatalf("blank store name want ErrInvalidStoreName got %v", err)
	}

	badCategory := base
	badCategory.StoreCategory = "SUSHI"
	if _, _, _, err := storeSvc.Register(badCategory); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("unknown category want ErrInvalidCategory got %v", err)
	}
}

func TestJWTSecretsAreRoleScoped(t *testing.T) {
	userSvc, storeSvc, _ := setupAuthTest(t)

	user, userToken, _, err := userSvc.Register(RegisterUserInput{Email: "user@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("user register failed: %v", err)
	}
	_ = user

	storeUser, storeToken, _, err := storeSvc.Register(RegisterStoreUserInput{
		Email:         "owner@example.com",
		Password:      "password123",
		StoreName:     "金牌炸鸡",
		StoreCategory: "CHICKEN",
	})
	if err != nil {
		t.Fatalf("store register failed: %v", err)
	}
	_ = storeUser

	// 消费者 token 不能通过店主解析，反之亦然
	if _, err := storeSvc.ParseStoreJWT(userToken); err == nil {
		t.Fatalf("consumer token must not validate as merchant")
	}
	if _, err := userSvc.ParseUserJWT(storeToken); err == nil {
		t.Fatalf("merchant token must not validate as consumer")
	}
}
