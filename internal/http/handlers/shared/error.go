package shared

import (
	"errors"

	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.S().With("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, description string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"description", description,
			"error", err,
		)
	}
	response.Error(c, code, description)
}

// serviceErrorCodes 业务错误对应的响应码，未列出的按内部错误处理
var serviceErrorCodes = map[error]int{
	service.ErrInvalidCredentials:   response.CodeUnauthorized,
	service.ErrInvalidEmail:         response.CodeBadRequest,
	service.ErrEmailExists:          response.CodeBadRequest,
	service.ErrInvalidPassword:      response.CodeBadRequest,
	service.ErrUserDisabled:         response.CodeForbidden,
	service.ErrNotFound:             response.CodeNotFound,
	service.ErrInvalidStoreName:     response.CodeBadRequest,
	service.ErrInvalidCategory:      response.CodeBadRequest,
	service.ErrStoreNotAvailable:    response.CodeBadRequest,
	service.ErrMenuNotAvailable:     response.CodeBadRequest,
	service.ErrInvalidOrderItem:     response.CodeBadRequest,
	service.ErrOrderStoreMismatch:   response.CodeBadRequest,
	service.ErrBelowMinimumAmount:   response.CodeBadRequest,
	service.ErrOrderAccessDenied:    response.CodeForbidden,
	service.ErrOrderStatusInvalid:   response.CodeBadRequest,
	service.ErrOrderAlreadyFinished: response.CodeBadRequest,
}

// RespondServiceError 将业务错误映射为错误响应
func RespondServiceError(c *gin.Context, err error) {
	for target, code := range serviceErrorCodes {
		if errors.Is(err, target) {
			response.Error(c, code, target.Error())
			return
		}
	}
	RespondError(c, response.CodeInternal, "服务器内部错误", err)
}
