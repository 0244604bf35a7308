package public

import "github.com/mukkai/mukkai-go/internal/provider"

// Handler 消费者侧接口处理器入口
// 说明：该处理器承载注册登录、店铺浏览与用户订单 API。
type Handler struct {
	*provider.Container
}

// New 创建消费者处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
