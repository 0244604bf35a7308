package models

import (
	"time"

	"gorm.io/gorm"
)

// Store 店铺表
type Store struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                      // 主键
	Name                  string         `gorm:"type:varchar(100);not null" json:"name"`    // 店铺名称
	Address               string         `gorm:"type:varchar(150)" json:"address"`          // 店铺地址
	Category              string         `gorm:"type:varchar(50);index" json:"category"`    // 店铺分类
	Status                string         `gorm:"default:'REGISTERED';index" json:"status"`  // 店铺状态
	Star                  float64        `gorm:"default:0" json:"star"`                     // 评分
	ThumbnailURL          string         `gorm:"type:varchar(255)" json:"thumbnail_url"`    // 缩略图
	MinimumAmount         Money          `gorm:"type:decimal(12,2)" json:"minimum_amount"`  // 最低起送金额
	MinimumDeliveryAmount Money          `gorm:"type:decimal(12,2)" json:"minimum_delivery_amount"` // 配送费
	PhoneNumber           string         `gorm:"type:varchar(30)" json:"phone_number"`      // 联系电话
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Menus []StoreMenu `gorm:"foreignKey:StoreID" json:"menus,omitempty"` // 关联菜单
}

// TableName 指定表名
func (Store) TableName() string {
	return "stores"
}
