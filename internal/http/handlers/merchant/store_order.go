package merchant

import (
	"strings"

	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListCurrentStoreOrders 获取店铺进行中的订单（工作台）
func (h *Handler) ListCurrentStoreOrders(c *gin.Context) {
	storeID, ok := shared.GetContextUint(c, shared.ContextKeyStoreID)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListCurrentByStore(storeID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": dto.FromOrders(orders)})
}

// UpdateOrderStatusRequest 订单状态变更请求
type UpdateOrderStatusRequest struct {
	OrderID uint   `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// UpdateOrderStatus 店主变更订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	storeID, ok := shared.GetContextUint(c, shared.ContextKeyStoreID)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	order, err := h.OrderService.UpdateStatusByStore(storeID, req.OrderID, status)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, dto.FromOrder(order))
}
