package repository

import (
	"errors"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"

	"gorm.io/gorm"
)

// StoreMenuRepository 菜单数据访问接口
type StoreMenuRepository interface {
	SearchByStore(storeID uint) ([]models.StoreMenu, error)
	GetByID(id uint) (*models.StoreMenu, error)
	ListByIDs(ids []uint) ([]models.StoreMenu, error)
	Create(menu *models.StoreMenu) error
}

// GormStoreMenuRepository GORM 实现
type GormStoreMenuRepository struct {
	db *gorm.DB
}

// NewStoreMenuRepository 创建菜单仓库
func NewStoreMenuRepository(db *gorm.DB) *GormStoreMenuRepository {
	return &GormStoreMenuRepository{db: db}
}

// SearchByStore 获取店铺的已上架菜单，按展示顺序排序
func (r *GormStoreMenuRepository) SearchByStore(storeID uint) ([]models.StoreMenu, error) {
	var menus []models.StoreMenu
	err := r.db.
		Where("store_id = ? AND status = ?", storeID, constants.AccountStatusRegistered).
		Order("sequence asc, id asc").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// GetByID 根据 ID 获取菜单项
func (r *GormStoreMenuRepository) GetByID(id uint) (*models.StoreMenu, error) {
	var menu models.StoreMenu
	if err := r.db.First(&menu, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &menu, nil
}

// ListByIDs 批量获取菜单项
func (r *GormStoreMenuRepository) ListByIDs(ids []uint) ([]models.StoreMenu, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var menus []models.StoreMenu
	if err := r.db.Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

// Create 创建菜单项
func (r *GormStoreMenuRepository) Create(menu *models.StoreMenu) error {
	return r.db.Create(menu).Error
}
