package models

import (
	"time"

	"gorm.io/gorm"
)

// UserOrder 用户订单表
type UserOrder struct {
	ID                uint           `gorm:"primarykey" json:"id"`                   // 主键
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`   // 订单号
	UserID            uint           `gorm:"not null;index" json:"user_id"`          // 下单用户ID
	StoreID           uint           `gorm:"not null;index" json:"store_id"`         // 店铺ID
	Status            string         `gorm:"type:varchar(20);index" json:"status"`   // 订单状态
	Amount            Money          `gorm:"type:decimal(12,2)" json:"amount"`       // 订单总额（含配送费）
	DeliveryAmount    Money          `gorm:"type:decimal(12,2)" json:"delivery_amount"` // 配送费
	Address           string         `gorm:"type:varchar(150)" json:"address"`       // 配送地址
	Request           string         `gorm:"type:varchar(255)" json:"request"`       // 配送备注
	OrderedAt         time.Time      `gorm:"index" json:"ordered_at"`                // 下单时间
	ConfirmedAt       *time.Time     `json:"confirmed_at"`                           // 接单时间
	PreparingAt       *time.Time     `json:"preparing_at"`                           // 开始备餐时间
	DeliveryStartedAt *time.Time     `json:"delivery_started_at"`                    // 开始配送时间
	DeliveredAt       *time.Time     `json:"delivered_at"`                           // 送达时间
	CancelledAt       *time.Time     `json:"cancelled_at"`                           // 取消时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Store *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"` // 关联店铺
	Menus []UserOrderMenu `gorm:"foreignKey:OrderID" json:"menus,omitempty"` // 关联菜单行
}

// TableName 指定表名
func (UserOrder) TableName() string {
	return "user_orders"
}

// UserOrderMenu 订单菜单行
type UserOrderMenu struct {
	ID          uint      `gorm:"primarykey" json:"id"`                 // 主键
	OrderID     uint      `gorm:"not null;index" json:"order_id"`       // 所属订单ID
	StoreMenuID uint      `gorm:"not null;index" json:"store_menu_id"`  // 菜单项ID
	Name        string    `gorm:"type:varchar(100)" json:"name"`        // 下单时的菜品名称快照
	UnitAmount  Money     `gorm:"type:decimal(12,2)" json:"unit_amount"` // 下单时的单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`             // 数量
	CreatedAt   time.Time `json:"created_at"`                           // 创建时间
}

// TableName 指定表名
func (UserOrderMenu) TableName() string {
	return "user_order_menus"
}

// LatestStatusAt 返回当前状态对应的时间戳
func (o *UserOrder) LatestStatusAt() time.Time {
	switch {
	case o.CancelledAt != nil:
		return *o.CancelledAt
	case o.DeliveredAt != nil:
		return *o.DeliveredAt
	case o.DeliveryStartedAt != nil:
		return *o.DeliveryStartedAt
	case o.PreparingAt != nil:
		return *o.PreparingAt
	case o.ConfirmedAt != nil:
		return *o.ConfirmedAt
	default:
		return o.OrderedAt
	}
}
