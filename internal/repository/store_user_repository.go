package repository

import (
	"errors"

	"github.com/mukkai/mukkai-go/internal/models"

	"gorm.io/gorm"
)

// StoreUserRepository 店主数据访问接口
type StoreUserRepository interface {
	GetByEmail(email string) (*models.StoreUser, error)
	GetByID(id uint) (*models.StoreUser, error)
	Create(storeUser *models.StoreUser) error
	Update(storeUser *models.StoreUser) error
}

// GormStoreUserRepository GORM 实现
type GormStoreUserRepository struct {
	db *gorm.DB
}

// NewStoreUserRepository 创建店主仓库
func NewStoreUserRepository(db *gorm.DB) *GormStoreUserRepository {
	return &GormStoreUserRepository{db: db}
}

// GetByEmail 根据邮箱获取店主
func (r *GormStoreUserRepository) GetByEmail(email string) (*models.StoreUser, error) {
	var storeUser models.StoreUser
	if err := r.db.Preload("Store").Where("email = ?", email).First(&storeUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &storeUser, nil
}

// GetByID 根据 ID 获取店主
func (r *GormStoreUserRepository) GetByID(id uint) (*models.StoreUser, error) {
	var storeUser models.StoreUser
	if err := r.db.Preload("Store").First(&storeUser, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &storeUser, nil
}

// Create 创建店主
func (r *GormStoreUserRepository) Create(storeUser *models.StoreUser) error {
	return r.db.Create(storeUser).Error
}

// Update 更新店主
func (r *GormStoreUserRepository) Update(storeUser *models.StoreUser) error {
	return r.db.Save(storeUser).Error
}
