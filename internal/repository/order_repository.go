package repository

import (
	"errors"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"

	"gorm.io/gorm"
)

// activeOrderStatuses 进行中的订单状态集合
var activeOrderStatuses = []string{
	constants.OrderStatusPending,
	constants.OrderStatusConfirmed,
	constants.OrderStatusPreparing,
	constants.OrderStatusDelivering,
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.UserOrder) error
	GetByID(id uint) (*models.UserOrder, error)
	ListCurrentByUser(userID uint) ([]models.UserOrder, error)
	ListHistoryByUser(userID uint) ([]models.UserOrder, error)
	ListCurrentByStore(storeID uint) ([]models.UserOrder, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 创建订单（含菜单行）
func (r *GormOrderRepository) Create(order *models.UserOrder) error {
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取订单详情
func (r *GormOrderRepository) GetByID(id uint) (*models.UserOrder, error) {
	var order models.UserOrder
	err := r.db.Preload("Store").Preload("Menus").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListCurrentByUser 获取用户进行中的订单
func (r *GormOrderRepository) ListCurrentByUser(userID uint) ([]models.UserOrder, error) {
	var orders []models.UserOrder
	err := r.db.Preload("Store").Preload("Menus").
		Where("user_id = ? AND status IN ?", userID, activeOrderStatuses).
		Order("ordered_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListHistoryByUser 获取用户已完结的订单
func (r *GormOrderRepository) ListHistoryByUser(userID uint) ([]models.UserOrder, error) {
	var orders []models.UserOrder
	err := r.db.Preload("Store").Preload("Menus").
		Where("user_id = ? AND status IN ?", userID, []string{
			constants.OrderStatusDelivered,
			constants.OrderStatusCancelled,
		}).
		Order("ordered_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCurrentByStore 获取店铺进行中的订单（店主工作台）
func (r *GormOrderRepository) ListCurrentByStore(storeID uint) ([]models.UserOrder, error) {
	var orders []models.UserOrder
	err := r.db.Preload("Menus").
		Where("store_id = ? AND status IN ?", storeID, activeOrderStatuses).
		Order("ordered_at asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus 更新订单状态及附加字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.UserOrder{}).Where("id = ?", id).Updates(updates).Error
}
