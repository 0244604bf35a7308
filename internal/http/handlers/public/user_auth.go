package public

import (
	"time"

	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// UserRegister 消费者注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":        dto.FromUser(user),
		"accessToken": token,
		"expiresAt":   expiresAt.Format(time.RFC3339),
	})
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserLogin 消费者登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":        dto.FromUser(user),
		"accessToken": token,
		"expiresAt":   expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 获取当前消费者信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.ContextKeyUserID)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, dto.FromUser(user))
}
