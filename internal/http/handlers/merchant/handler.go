package merchant

import "github.com/mukkai/mukkai-go/internal/provider"

// Handler 店主侧接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建店主处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
