package repository

import (
	"errors"
	"strings"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"

	"gorm.io/gorm"
)

// StoreRepository 店铺数据访问接口
type StoreRepository interface {
	Search(category string) ([]models.Store, error)
	GetByID(id uint) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
}

// GormStoreRepository GORM 实现
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓库
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// Search 按分类检索已上架店铺（分类为空返回全部）
func (r *GormStoreRepository) Search(category string) ([]models.Store, error) {
	query := r.db.Where("status = ?", constants.AccountStatusRegistered)
	trimmed := strings.ToUpper(strings.TrimSpace(category))
	if trimmed != "" {
		query = query.Where("category = ?", trimmed)
	}
	var stores []models.Store
	if err := query.Order("star desc, id asc").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// GetByID 根据 ID 获取店铺
func (r *GormStoreRepository) GetByID(id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// Create 创建店铺
func (r *GormStoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// Update 更新店铺
func (r *GormStoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}
