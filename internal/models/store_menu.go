package models

import (
	"time"

	"gorm.io/gorm"
)

// StoreMenu 店铺菜单项
type StoreMenu struct {
	ID           uint           `gorm:"primarykey" json:"id"`                     // 主键
	StoreID      uint           `gorm:"not null;index" json:"store_id"`           // 所属店铺ID
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`   // 菜品名称
	Amount       Money          `gorm:"type:decimal(12,2)" json:"amount"`         // 单价
	Status       string         `gorm:"default:'REGISTERED';index" json:"status"` // 菜品状态
	ThumbnailURL string         `gorm:"type:varchar(255)" json:"thumbnail_url"`   // 缩略图
	LikeCount    int            `gorm:"default:0" json:"like_count"`              // 点赞次数
	Sequence     int            `gorm:"default:0" json:"sequence"`                // 展示顺序
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (StoreMenu) TableName() string {
	return "store_menus"
}
