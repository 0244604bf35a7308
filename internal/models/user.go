package models

import (
	"time"

	"gorm.io/gorm"
)

// User 消费者用户表
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                 // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`    // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                    // 密码哈希（不返回给前端）
	Name         string         `gorm:"type:varchar(50)" json:"name"`         // 姓名
	Address      string         `gorm:"type:varchar(150)" json:"address"`     // 配送地址
	Phone        string         `gorm:"type:varchar(30)" json:"phone"`        // 电话
	Status       string         `gorm:"default:'REGISTERED'" json:"status"`   // 账号状态
	LastLoginAt  *time.Time     `json:"last_login_at"`                        // 最后登录时间
	RegisteredAt time.Time      `gorm:"index" json:"registered_at"`           // 注册时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`              // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
