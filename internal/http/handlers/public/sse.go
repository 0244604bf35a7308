package public

import (
	"io"
	"strings"
	"time"

	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/push"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// SSEConnect 建立 SSE 长连接。EventSource 不支持自定义请求头，
// token 通过查询参数传递，消费者与店主 token 都可接入
func (h *Handler) SSEConnect(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Unauthorized(c, "缺少 token")
		return
	}

	var subscriber *push.Subscriber
	if claims, err := h.UserAuthService.ParseUserJWT(token); err == nil {
		subscriber = h.Hub.SubscribeConsumer(claims.UserID)
	} else if storeClaims, serr := h.StoreAuthService.ParseStoreJWT(token); serr == nil {
		subscriber = h.Hub.SubscribeMerchant(storeClaims.StoreID)
	} else {
		response.Unauthorized(c, "token 无效或已过期")
		return
	}
	defer subscriber.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	heartbeatSeconds := h.Config.SSE.HeartbeatSeconds
	if heartbeatSeconds <= 0 {
		heartbeatSeconds = 15
	}
	heartbeat := time.NewTicker(time.Duration(heartbeatSeconds) * time.Second)
	defer heartbeat.Stop()

	// 连接建立事件，客户端以此确认通道可用
	connected := sse.Event{Event: "connected", Data: `{"status":"ok"}`}
	if err := sse.Encode(c.Writer, connected); err != nil {
		return
	}
	c.Writer.Flush()

	shared.RequestLog(c).Infow("sse_connected", "subscriber", subscriber.ID)
	defer shared.RequestLog(c).Infow("sse_disconnected", "subscriber", subscriber.ID)

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-subscriber.Events:
			if !ok {
				return false
			}
			if err := sse.Encode(w, event); err != nil {
				return false
			}
			return true
		case <-heartbeat.C:
			// 注释行作为心跳，保持代理与连接活性
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				return false
			}
			return true
		}
	})
}
