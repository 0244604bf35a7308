package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mukkai/mukkai-go/internal/cache"
	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// StoreAuthService 店主认证服务（与消费者认证相互独立，密钥单独配置）
type StoreAuthService struct {
	cfg           *config.Config
	storeUserRepo repository.StoreUserRepository
	storeRepo     repository.StoreRepository
}

// NewStoreAuthService 创建店主认证服务
func NewStoreAuthService(cfg *config.Config, storeUserRepo repository.StoreUserRepository, storeRepo repository.StoreRepository) *StoreAuthService {
	return &StoreAuthService{
		cfg:           cfg,
		storeUserRepo: storeUserRepo,
		storeRepo:     storeRepo,
	}
}

// StoreJWTClaims 店主 JWT 声明
type StoreJWTClaims struct {
	StoreUserID uint   `json:"store_user_id"`
	StoreID     uint   `json:"store_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterStoreUserInput 店主注册输入（注册时同步创建店铺）
type RegisterStoreUserInput struct {
	Email                 string
	Password              string
	Name                  string
	Phone                 string
	StoreName             string
	StoreAddress          string
	StoreCategory         string
	StorePhoneNumber      string
	ThumbnailURL          string
	MinimumAmount         string
	MinimumDeliveryAmount string
}

// GenerateStoreJWT 生成店主 JWT Token
func (s *StoreAuthService) GenerateStoreJWT(storeUser *models.StoreUser) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(resolveJWTExpireHours(s.cfg.StoreJWT)) * time.Hour)
	claims := StoreJWTClaims{
		StoreUserID: storeUser.ID,
		StoreID:     storeUser.StoreID,
		Email:       storeUser.Email,
		Role:        constants.RoleMerchant,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.StoreJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseStoreJWT 解析店主 JWT Token
func (s *StoreAuthService) ParseStoreJWT(tokenString string) (*StoreJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &StoreJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.StoreJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*StoreJWTClaims); ok && token.Valid && claims.Role == constants.RoleMerchant {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Register 店主注册。先建店铺再建店主，店主登录态在注册成功后直接签发
func (s *StoreAuthService) Register(input RegisterStoreUserInput) (*models.StoreUser, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, "", time.Time{}, ErrInvalidPassword
	}
	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		return nil, "", time.Time{}, ErrInvalidStoreName
	}
	category := strings.ToUpper(strings.TrimSpace(input.StoreCategory))
	if !isStoreCategorySupported(category) {
		return nil, "", time.Time{}, ErrInvalidCategory
	}

	exist, err := s.storeUserRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	store := &models.Store{
		Name:                  storeName,
		Address:               strings.TrimSpace(input.StoreAddress),
		Category:              category,
		Status:                constants.AccountStatusRegistered,
		ThumbnailURL:          strings.TrimSpace(input.ThumbnailURL),
		MinimumAmount:         parseMoneyOrZero(input.MinimumAmount),
		MinimumDeliveryAmount: parseMoneyOrZero(input.MinimumDeliveryAmount),
		PhoneNumber:           strings.TrimSpace(input.StorePhoneNumber),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.storeRepo.Create(store); err != nil {
		return nil, "", time.Time{}, err
	}

	storeUser := &models.StoreUser{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Status:       constants.AccountStatusRegistered,
		StoreID:      store.ID,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := s.storeUserRepo.Create(storeUser); err != nil {
		return nil, "", time.Time{}, err
	}
	storeUser.Store = store

	token, expiresAt, err := s.GenerateStoreJWT(storeUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	storeUser.LastLoginAt = &now
	if err := s.storeUserRepo.Update(storeUser); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAuthState(context.Background(), constants.RoleMerchant, cache.BuildStoreUserAuthState(storeUser))

	return storeUser, token, expiresAt, nil
}

// Login 店主登录
func (s *StoreAuthService) Login(email, password string) (*models.StoreUser, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	storeUser, err := s.storeUserRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if storeUser == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if storeUser.Status != constants.AccountStatusRegistered {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storeUser.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateStoreJWT(storeUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	storeUser.LastLoginAt = &now
	if err := s.storeUserRepo.Update(storeUser); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAuthState(context.Background(), constants.RoleMerchant, cache.BuildStoreUserAuthState(storeUser))

	return storeUser, token, expiresAt, nil
}

// GetStoreUserByID 获取店主信息（含关联店铺）
func (s *StoreAuthService) GetStoreUserByID(id uint) (*models.StoreUser, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	storeUser, err := s.storeUserRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if storeUser == nil {
		return nil, ErrNotFound
	}
	return storeUser, nil
}

func isStoreCategorySupported(category string) bool {
	for _, c := range constants.StoreCategories {
		if c == category {
			return true
		}
	}
	return false
}

func parseMoneyOrZero(raw string) models.Money {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.NewMoneyFromInt(0)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || d.IsNegative() {
		return models.NewMoneyFromInt(0)
	}
	return models.NewMoneyFromDecimal(d)
}
