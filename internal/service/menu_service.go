package service

import (
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"
)

// MenuService 菜单检索服务
type MenuService struct {
	storeRepo     repository.StoreRepository
	storeMenuRepo repository.StoreMenuRepository
}

// NewMenuService 创建菜单服务
func NewMenuService(storeRepo repository.StoreRepository, storeMenuRepo repository.StoreMenuRepository) *MenuService {
	return &MenuService{
		storeRepo:     storeRepo,
		storeMenuRepo: storeMenuRepo,
	}
}

// SearchByStore 获取指定店铺的上架菜单
func (s *MenuService) SearchByStore(storeID uint) ([]models.StoreMenu, error) {
	if storeID == 0 {
		return nil, ErrNotFound
	}
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrNotFound
	}
	return s.storeMenuRepo.SearchByStore(storeID)
}
