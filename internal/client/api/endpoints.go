package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/http/dto"
)

// AuthResult 登录/注册结果
type AuthResult struct {
	User        *dto.User      `json:"user,omitempty"`
	StoreUser   *dto.StoreUser `json:"storeUser,omitempty"`
	AccessToken string         `json:"accessToken"`
	ExpiresAt   string         `json:"expiresAt"`
}

// RegisterConsumerInput 消费者注册输入
type RegisterConsumerInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// RegisterConsumer 消费者注册，成功后自动保存 token
func (c *Client) RegisterConsumer(ctx context.Context, input RegisterConsumerInput) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/open-api/user/register", "", input, &result); err != nil {
		return nil, err
	}
	c.SetToken(RoleConsumer, result.AccessToken)
	return &result, nil
}

// LoginConsumer 消费者登录，成功后自动保存 token
func (c *Client) LoginConsumer(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/open-api/user/login", "", payload, &result); err != nil {
		return nil, err
	}
	c.SetToken(RoleConsumer, result.AccessToken)
	return &result, nil
}

// GetConsumerMe 获取当前消费者信息
func (c *Client) GetConsumerMe(ctx context.Context) (*dto.User, error) {
	var user dto.User
	if err := c.do(ctx, http.MethodGet, "/api/user/me", RoleConsumer, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterMerchantInput 店主注册输入
type RegisterMerchantInput struct {
	Email                 string `json:"email"`
	Password              string `json:"password"`
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	StoreName             string `json:"storeName"`
	StoreAddress          string `json:"storeAddress"`
	StoreCategory         string `json:"storeCategory"`
	StorePhoneNumber      string `json:"storePhoneNumber"`
	ThumbnailURL          string `json:"thumbnailUrl"`
	MinimumAmount         string `json:"minimumAmount"`
	MinimumDeliveryAmount string `json:"minimumDeliveryAmount"`
}

// RegisterMerchant 店主注册，成功后自动保存 token
func (c *Client) RegisterMerchant(ctx context.Context, input RegisterMerchantInput) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/open-api/store-user", "", input, &result); err != nil {
		return nil, err
	}
	c.SetToken(RoleMerchant, result.AccessToken)
	return &result, nil
}

// LoginMerchant 店主登录，成功后自动保存 token
func (c *Client) LoginMerchant(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/open-api/store-user/login", "", payload, &result); err != nil {
		return nil, err
	}
	c.SetToken(RoleMerchant, result.AccessToken)
	return &result, nil
}

// GetMerchantMe 获取当前店主信息
func (c *Client) GetMerchantMe(ctx context.Context) (*dto.StoreUser, error) {
	var storeUser dto.StoreUser
	if err := c.do(ctx, http.MethodGet, "/api/store-user/me", RoleMerchant, nil, &storeUser); err != nil {
		return nil, err
	}
	return &storeUser, nil
}

// SearchStores 按分类检索店铺
func (c *Client) SearchStores(ctx context.Context, category string) ([]dto.Store, error) {
	var body struct {
		Stores []dto.Store `json:"stores"`
	}
	path := "/api/store/search"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	if err := c.do(ctx, http.MethodGet, path, RoleConsumer, nil, &body); err != nil {
		return nil, err
	}
	return body.Stores, nil
}

// GetStore 获取店铺详情
func (c *Client) GetStore(ctx context.Context, storeID uint) (*dto.Store, error) {
	var store dto.Store
	if err := c.do(ctx, http.MethodGet, pathWithID("/api/store/%d", storeID), RoleConsumer, nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// SearchStoreMenus 获取店铺菜单
func (c *Client) SearchStoreMenus(ctx context.Context, storeID uint) ([]dto.StoreMenu, error) {
	var body struct {
		Menus []dto.StoreMenu `json:"menus"`
	}
	if err := c.do(ctx, http.MethodGet, pathWithID("/api/store-menu/search?storeId=%d", storeID), RoleConsumer, nil, &body); err != nil {
		return nil, err
	}
	return body.Menus, nil
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	StoreID uint                   `json:"storeId"`
	Address string                 `json:"address"`
	Request string                 `json:"request"`
	Items   []CreateOrderItemInput `json:"items"`
}

// CreateOrderItemInput 订单项输入
type CreateOrderItemInput struct {
	StoreMenuID uint `json:"storeMenuId"`
	Quantity    int  `json:"quantity"`
}

// CreateOrder 提交订单。同一客户端同一时刻只允许一笔结算在途
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*dto.Order, error) {
	c.checkoutMu.Lock()
	if c.inCheckout {
		c.checkoutMu.Unlock()
		return nil, clienterr.Wrap(clienterr.ErrValidation, "已有订单正在提交中")
	}
	c.inCheckout = true
	c.checkoutMu.Unlock()
	defer func() {
		c.checkoutMu.Lock()
		c.inCheckout = false
		c.checkoutMu.Unlock()
	}()

	var order dto.Order
	if err := c.do(ctx, http.MethodPost, "/api/user-order", RoleConsumer, input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CurrentOrders 获取进行中的订单
func (c *Client) CurrentOrders(ctx context.Context) ([]dto.Order, error) {
	var body struct {
		Orders []dto.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user-order/current", RoleConsumer, nil, &body); err != nil {
		return nil, err
	}
	return body.Orders, nil
}

// HistoryOrders 获取历史订单
func (c *Client) HistoryOrders(ctx context.Context) ([]dto.Order, error) {
	var body struct {
		Orders []dto.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user-order/history", RoleConsumer, nil, &body); err != nil {
		return nil, err
	}
	return body.Orders, nil
}

// GetOrder 获取订单详情
func (c *Client) GetOrder(ctx context.Context, orderID uint) (*dto.Order, error) {
	var order dto.Order
	if err := c.do(ctx, http.MethodGet, pathWithID("/api/user-order/id/%d", orderID), RoleConsumer, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// StoreCurrentOrders 获取店铺进行中的订单（店主工作台）
func (c *Client) StoreCurrentOrders(ctx context.Context) ([]dto.Order, error) {
	var body struct {
		Orders []dto.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/store-order/current", RoleMerchant, nil, &body); err != nil {
		return nil, err
	}
	return body.Orders, nil
}

// UpdateStoreOrderStatus 店主变更订单状态
func (c *Client) UpdateStoreOrderStatus(ctx context.Context, orderID uint, status string) (*dto.Order, error) {
	var order dto.Order
	payload := map[string]interface{}{"orderId": orderID, "status": status}
	if err := c.do(ctx, http.MethodPut, "/api/store-order/status", RoleMerchant, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
