package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Result 响应头部（与前端约定的 camelCase 字段）
type Result struct {
	ResultCode        int    `json:"resultCode"`        // 业务状态码
	ResultMessage     string `json:"resultMessage"`     // 提示消息
	ResultDescription string `json:"resultDescription"` // 详细描述
}

// Envelope 统一响应结构
type Envelope struct {
	Result Result      `json:"result"`
	Body   interface{} `json:"body"`
}

// Success 成功响应
func Success(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Result: Result{
			ResultCode:    CodeOK,
			ResultMessage: "SUCCESS",
		},
		Body: body,
	})
}

// Error 错误响应。HTTP 状态码与业务码保持一致，便于客户端统一处理
func Error(c *gin.Context, resultCode int, description string) {
	status := resultCode
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Envelope{
		Result: Result{
			ResultCode:        resultCode,
			ResultMessage:     "FAIL",
			ResultDescription: withRequestID(c, description),
		},
	})
}

// BadRequest 400响应
func BadRequest(c *gin.Context, description string) {
	Error(c, CodeBadRequest, description)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, description string) {
	Error(c, CodeUnauthorized, description)
}

// Forbidden 403响应
func Forbidden(c *gin.Context, description string) {
	Error(c, CodeForbidden, description)
}

// NotFound 404响应
func NotFound(c *gin.Context, description string) {
	Error(c, CodeNotFound, description)
}

func withRequestID(c *gin.Context, description string) string {
	if c == nil {
		return description
	}
	value, ok := c.Get("request_id")
	if !ok {
		return description
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return description
	}
	return description + " (request_id: " + id + ")"
}
