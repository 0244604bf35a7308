package public

import (
	"strconv"

	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"
	"github.com/mukkai/mukkai-go/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	StoreID uint                     `json:"storeId" binding:"required"`
	Address string                   `json:"address" binding:"required"`
	Request string                   `json:"request"`
	Items   []CreateOrderItemRequest `json:"items" binding:"required"`
}

// CreateOrderItemRequest 订单项请求
type CreateOrderItemRequest struct {
	StoreMenuID uint `json:"storeMenuId" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.ContextKeyUserID)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不合法")
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			StoreMenuID: item.StoreMenuID,
			Quantity:    item.Quantity,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:  userID,
		StoreID: req.StoreID,
		Address: req.Address,
		Request: req.Request,
		Items:   items,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, dto.FromOrder(order))
}

// ListCurrentOrders 获取进行中的订单
func (h *Handler) ListCurrentOrders(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.ContextKeyUserID)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListCurrentByUser(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": dto.FromOrders(orders)})
}

// ListHistoryOrders 获取历史订单
func (h *Handler) ListHistoryOrders(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.ContextKeyUserID)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListHistoryByUser(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": dto.FromOrders(orders)})
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.ContextKeyUserID)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "订单 ID 不合法")
		return
	}
	order, serr := h.OrderService.GetDetailForUser(userID, uint(id))
	if serr != nil {
		shared.RespondServiceError(c, serr)
		return
	}
	response.Success(c, dto.FromOrder(order))
}
