package dto

import (
	"time"

	"github.com/mukkai/mukkai-go/internal/models"
)

// 对外 API 的数据结构，字段为前端约定的 camelCase

// User 消费者信息
type User struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	RegisteredAt string `json:"registeredAt"`
}

// StoreUser 店主信息
type StoreUser struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	StoreID      uint   `json:"storeId"`
	Store        *Store `json:"store,omitempty"`
	RegisteredAt string `json:"registeredAt"`
}

// Store 店铺信息
type Store struct {
	ID                    uint         `json:"id"`
	Name                  string       `json:"name"`
	Address               string       `json:"address"`
	Category              string       `json:"category"`
	Status                string       `json:"status"`
	Star                  float64      `json:"star"`
	ThumbnailURL          string       `json:"thumbnailUrl"`
	MinimumAmount         models.Money `json:"minimumAmount"`
	MinimumDeliveryAmount models.Money `json:"minimumDeliveryAmount"`
	PhoneNumber           string       `json:"phoneNumber"`
}

// StoreMenu 菜单项
type StoreMenu struct {
	ID           uint         `json:"id"`
	StoreID      uint         `json:"storeId"`
	Name         string       `json:"name"`
	Amount       models.Money `json:"amount"`
	Status       string       `json:"status"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	LikeCount    int          `json:"likeCount"`
	Sequence     int          `json:"sequence"`
}

// OrderMenu 订单菜单行（下单时的快照）
type OrderMenu struct {
	ID          uint         `json:"id"`
	StoreMenuID uint         `json:"storeMenuId"`
	Name        string       `json:"name"`
	UnitAmount  models.Money `json:"unitAmount"`
	Quantity    int          `json:"quantity"`
}

// Order 订单信息
type Order struct {
	ID             uint         `json:"id"`
	OrderNo        string       `json:"orderNo"`
	UserID         uint         `json:"userId"`
	StoreID        uint         `json:"storeId"`
	Status         string       `json:"status"`
	Amount         models.Money `json:"amount"`
	DeliveryAmount models.Money `json:"deliveryAmount"`
	Address        string       `json:"address"`
	Request        string       `json:"request"`
	OrderedAt      string       `json:"orderedAt"`
	ConfirmedAt    *string      `json:"confirmedAt,omitempty"`
	PreparingAt    *string      `json:"preparingAt,omitempty"`
	DeliveringAt   *string      `json:"deliveringAt,omitempty"`
	DeliveredAt    *string      `json:"deliveredAt,omitempty"`
	CancelledAt    *string      `json:"cancelledAt,omitempty"`
	Store          *Store       `json:"store,omitempty"`
	Menus          []OrderMenu  `json:"menus"`
}

// FromUser 转换消费者模型
func FromUser(user *models.User) *User {
	if user == nil {
		return nil
	}
	return &User{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Address:      user.Address,
		Phone:        user.Phone,
		Status:       user.Status,
		RegisteredAt: formatTime(user.RegisteredAt),
	}
}

// FromStoreUser 转换店主模型
func FromStoreUser(storeUser *models.StoreUser) *StoreUser {
	if storeUser == nil {
		return nil
	}
	return &StoreUser{
		ID:           storeUser.ID,
		Email:        storeUser.Email,
		Name:         storeUser.Name,
		Phone:        storeUser.Phone,
		Status:       storeUser.Status,
		StoreID:      storeUser.StoreID,
		Store:        FromStore(storeUser.Store),
		RegisteredAt: formatTime(storeUser.RegisteredAt),
	}
}

// FromStore 转换店铺模型
func FromStore(store *models.Store) *Store {
	if store == nil {
		return nil
	}
	return &Store{
		ID:                    store.ID,
		Name:                  store.Name,
		Address:               store.Address,
		Category:              store.Category,
		Status:                store.Status,
		Star:                  store.Star,
		ThumbnailURL:          store.ThumbnailURL,
		MinimumAmount:         store.MinimumAmount,
		MinimumDeliveryAmount: store.MinimumDeliveryAmount,
		PhoneNumber:           store.PhoneNumber,
	}
}

// FromStores 批量转换店铺模型
func FromStores(stores []models.Store) []Store {
	result := make([]Store, 0, len(stores))
	for i := range stores {
		result = append(result, *FromStore(&stores[i]))
	}
	return result
}

// FromStoreMenu 转换菜单模型
func FromStoreMenu(menu *models.StoreMenu) *StoreMenu {
	if menu == nil {
		return nil
	}
	return &StoreMenu{
		ID:           menu.ID,
		StoreID:      menu.StoreID,
		Name:         menu.Name,
		Amount:       menu.Amount,
		Status:       menu.Status,
		ThumbnailURL: menu.ThumbnailURL,
		LikeCount:    menu.LikeCount,
		Sequence:     menu.Sequence,
	}
}

// FromStoreMenus 批量转换菜单模型
func FromStoreMenus(menus []models.StoreMenu) []StoreMenu {
	result := make([]StoreMenu, 0, len(menus))
	for i := range menus {
		result = append(result, *FromStoreMenu(&menus[i]))
	}
	return result
}

// FromOrder 转换订单模型
func FromOrder(order *models.UserOrder) *Order {
	if order == nil {
		return nil
	}
	menus := make([]OrderMenu, 0, len(order.Menus))
	for _, menu := range order.Menus {
		menus = append(menus, OrderMenu{
			ID:          menu.ID,
			StoreMenuID: menu.StoreMenuID,
			Name:        menu.Name,
			UnitAmount:  menu.UnitAmount,
			Quantity:    menu.Quantity,
		})
	}
	return &Order{
		ID:             order.ID,
		OrderNo:        order.OrderNo,
		UserID:         order.UserID,
		StoreID:        order.StoreID,
		Status:         order.Status,
		Amount:         order.Amount,
		DeliveryAmount: order.DeliveryAmount,
		Address:        order.Address,
		Request:        order.Request,
		OrderedAt:      formatTime(order.OrderedAt),
		ConfirmedAt:    formatTimePtr(order.ConfirmedAt),
		PreparingAt:    formatTimePtr(order.PreparingAt),
		DeliveringAt:   formatTimePtr(order.DeliveryStartedAt),
		DeliveredAt:    formatTimePtr(order.DeliveredAt),
		CancelledAt:    formatTimePtr(order.CancelledAt),
		Store:          FromStore(order.Store),
		Menus:          menus,
	}
}

// FromOrders 批量转换订单模型
func FromOrders(orders []models.UserOrder) []Order {
	result := make([]Order, 0, len(orders))
	for i := range orders {
		result = append(result, *FromOrder(&orders[i]))
	}
	return result
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
