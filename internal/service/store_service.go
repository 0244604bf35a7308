package service

import (
	"strings"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"
)

// StoreService 店铺检索服务
type StoreService struct {
	storeRepo repository.StoreRepository
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// Search 按分类检索店铺，分类为空返回全部上架店铺
func (s *StoreService) Search(category string) ([]models.Store, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(category))
	if trimmed != "" && !isStoreCategorySupported(trimmed) {
		return nil, ErrInvalidCategory
	}
	return s.storeRepo.Search(trimmed)
}

// GetByID 获取店铺详情（仅上架店铺可见）
func (s *StoreService) GetByID(id uint) (*models.Store, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	store, err := s.storeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrNotFound
	}
	if store.Status != constants.AccountStatusRegistered {
		return nil, ErrStoreNotAvailable
	}
	return store, nil
}
