package shared

import (
	"github.com/mukkai/mukkai-go/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 上下文键名，鉴权中间件写入
const (
	ContextKeyUserID      = "user_id"
	ContextKeyStoreUserID = "store_user_id"
	ContextKeyStoreID     = "store_id"
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "非法的上下文取值", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "非法的上下文取值", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "上下文类型错误", nil)
		return 0, false
	}
}
