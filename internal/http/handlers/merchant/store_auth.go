package merchant

import (
	"time"

	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
)

// StoreUserRegisterRequest 店主注册请求（同时创建店铺）
type StoreUserRegisterRequest struct {
	Email                 string `json:"email" binding:"required"`
	Password              string `json:"password" binding:"required"`
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	StoreName             string `json:"storeName" binding:"required"`
	StoreAddress          string `json:"storeAddress"`
	StoreCategory         string `json:"storeCategory" binding:"required"`
	StorePhoneNumber      string `json:"storePhoneNumber"`
	ThumbnailURL          string `json:"thumbnailUrl"`
	MinimumAmount         string `json:"minimumAmount"`
	MinimumDeliveryAmount string `json:"minimumDeliveryAmount"`
}

// StoreUserRegister 店主注册
func (h *Handler) StoreUserRegister(c *gin.Context) {
	var req StoreUserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	storeUser, token, expiresAt, err := h.StoreAuthService.Register(service.RegisterStoreUserInput{
		Email:                 req.Email,
		Password:              req.Password,
		Name:                  req.Name,
		Phone:                 req.Phone,
		StoreName:             req.StoreName,
		StoreAddress:          req.StoreAddress,
		StoreCategory:         req.StoreCategory,
		StorePhoneNumber:      req.StorePhoneNumber,
		ThumbnailURL:          req.ThumbnailURL,
		MinimumAmount:         req.MinimumAmount,
		MinimumDeliveryAmount: req.MinimumDeliveryAmount,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"storeUser":   dto.FromStoreUser(storeUser),
		"accessToken": token,
		"expiresAt":   expiresAt.Format(time.RFC3339),
	})
}

// StoreUserLoginRequest 店主登录请求
type StoreUserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StoreUserLogin 店主登录
func (h *Handler) StoreUserLogin(c *gin.Context) {
	var req StoreUserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	storeUser, token, expiresAt, err := h.StoreAuthService.Login(req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"storeUser":   dto.FromStoreUser(storeUser),
		"accessToken": token,
		"expiresAt":   expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentStoreUser 获取当前店主信息
func (h *Handler) GetCurrentStoreUser(c *gin.Context) {
	storeUserID, ok := shared.GetContextUint(c, shared.ContextKeyStoreUserID)
	if !ok {
		return
	}
	storeUser, err := h.StoreAuthService.GetStoreUserByID(storeUserID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, dto.FromStoreUser(storeUser))
}
