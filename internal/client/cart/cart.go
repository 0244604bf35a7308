package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/models"

	"github.com/shopspring/decimal"
)

// Item 购物车项，加入时记录单价快照
type Item struct {
	StoreMenuID  uint         `json:"storeMenuId"`
	StoreID      uint         `json:"storeId"`
	Name         string       `json:"name"`
	UnitAmount   models.Money `json:"unitAmount"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Quantity     int          `json:"quantity"`
}

// AuthCheck 判断当前是否有消费者登录态
type AuthCheck func() bool

// ConfirmSwitch 跨店铺加购确认。返回 true 表示清空后切换到新店铺
type ConfirmSwitch func(oldStoreID, newStoreID uint) bool

// Engine 购物车引擎。同一时刻只允许保存一家店铺的菜单项
type Engine struct {
	mu            sync.Mutex
	store         storage.Store
	authCheck     AuthCheck
	confirmSwitch ConfirmSwitch

	items         []Item
	activeStoreID uint
}

// persistedState 持久化格式
type persistedState struct {
	ActiveStoreID uint   `json:"activeStoreId"`
	Items         []Item `json:"items"`
}

// NewEngine 创建购物车引擎并从存储恢复状态
func NewEngine(store storage.Store, authCheck AuthCheck, confirmSwitch ConfirmSwitch) *Engine {
	e := &Engine{
		store:         store,
		authCheck:     authCheck,
		confirmSwitch: confirmSwitch,
	}
	e.restore()
	return e
}

// AddItem 加入购物车。未登录拒绝；与当前店铺不同则先经确认回调
func (e *Engine) AddItem(item Item) error {
	if item.StoreMenuID == 0 || item.StoreID == 0 {
		return clienterr.Wrap(clienterr.ErrValidation, "菜单项不完整")
	}
	if item.Quantity <= 0 {
		return clienterr.Wrap(clienterr.ErrValidation, "数量必须大于 0")
	}
	if e.authCheck != nil && !e.authCheck() {
		return clienterr.Wrap(clienterr.ErrAuthRequired, "请先登录后再加入购物车")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeStoreID != 0 && e.activeStoreID != item.StoreID {
		if e.confirmSwitch == nil || !e.confirmSwitch(e.activeStoreID, item.StoreID) {
			return clienterr.Wrap(clienterr.ErrValidation, "购物车已有其他店铺的商品")
		}
		e.items = nil
		e.activeStoreID = 0
	}

	for i := range e.items {
		if e.items[i].StoreMenuID == item.StoreMenuID {
			e.items[i].Quantity += item.Quantity
			e.activeStoreID = item.StoreID
			return e.persistLocked()
		}
	}
	e.items = append(e.items, item)
	e.activeStoreID = item.StoreID
	return e.persistLocked()
}

// UpdateQuantity 修改数量。数量小于等于 0 等价于移除，不存在的菜单项静默忽略
func (e *Engine) UpdateQuantity(storeMenuID uint, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return e.removeLocked(storeMenuID)
	}
	for i := range e.items {
		if e.items[i].StoreMenuID == storeMenuID {
			e.items[i].Quantity = quantity
			return e.persistLocked()
		}
	}
	return nil
}

// RemoveItem 移除购物车项。清空后店铺归属同时重置
func (e *Engine) RemoveItem(storeMenuID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(storeMenuID)
}

// Clear 清空购物车
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = nil
	e.activeStoreID = 0
	return e.persistLocked()
}

// Items 返回购物车项副本
func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]Item, len(e.items))
	copy(items, e.items)
	return items
}

// ActiveStoreID 返回当前店铺 ID，空购物车返回 0
func (e *Engine) ActiveStoreID() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeStoreID
}

// TotalAmount 汇总金额，始终由当前明细计算
func (e *Engine) TotalAmount() models.Money {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := decimal.Zero
	for _, item := range e.items {
		total = total.Add(item.UnitAmount.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return models.NewMoneyFromDecimal(total)
}

// ItemCount 返回购物车中的总件数
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, item := range e.items {
		count += item.Quantity
	}
	return count
}

func (e *Engine) removeLocked(storeMenuID uint) error {
	for i := range e.items {
		if e.items[i].StoreMenuID == storeMenuID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			if len(e.items) == 0 {
				e.activeStoreID = 0
			}
			return e.persistLocked()
		}
	}
	return nil
}

func (e *Engine) persistLocked() error {
	if e.store == nil {
		return nil
	}
	state := persistedState{
		ActiveStoreID: e.activeStoreID,
		Items:         e.items,
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return e.store.Set(constants.StorageKeyCart, string(data))
}

func (e *Engine) restore() {
	if e.store == nil {
		return
	}
	raw, err := e.store.Get(constants.StorageKeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			logger.Warnw("cart_restore_failed", "error", err)
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logger.Warnw("cart_restore_decode_failed", "error", err)
		return
	}
	e.items = state.Items
	e.activeStoreID = state.ActiveStoreID
	if len(e.items) == 0 {
		e.activeStoreID = 0
	}
}
