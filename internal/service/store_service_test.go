package service

import (
	"errors"
	"testing"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStoreServiceTest(t *testing.T) (*StoreService, *MenuService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Store{}, &models.StoreMenu{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	storeRepo := repository.NewStoreRepository(db)
	menuRepo := repository.NewStoreMenuRepository(db)
	return NewStoreService(storeRepo), NewMenuService(storeRepo, menuRepo), db
}

func seedStore(t *testing.T, db *gorm.DB, name, category, status string) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, Category: category, Status: status}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	return store
}

func TestSearchStoresByCategory(t *testing.T) {
	storeSvc, _, db := setupStoreServiceTest(t)
	seedStore(t, db, "金牌炸鸡", constants.StoreCategoryChicken, constants.AccountStatusRegistered)
	seedStore(t, db, "罗马披萨", constants.StoreCategoryPizza, constants.AccountStatusRegistered)
	seedStore(t, db, "下架炸鸡", constants.StoreCategoryChicken, constants.AccountStatusUnregistered)

	chicken, err := storeSvc.Search("chicken")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(chicken) != 1 || chicken[0].Name != "金牌炸鸡" {
		t.Fatalf("chicken search mismatch: %+v", chicken)
	}

	all, err := storeSvc.Search("")
	if err != nil {
		t.Fatalf("search all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all registered stores want 2 got %d", len(all))
	}

	if _, err := storeSvc.Search("SUSHI"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("unknown category want ErrInvalidCategory got %v", err)
	}
}

func TestGetStoreOnlyExposesRegistered(t *testing.T) {
	storeSvc, _, db := setupStoreServiceTest(t)
	active := seedStore(t, db, "金牌炸鸡", constants.StoreCategoryChicken, constants.AccountStatusRegistered)
	hidden := seedStore(t, db, "下架炸鸡", constants.StoreCategoryChicken, constants.AccountStatusUnregistered)

	got, err := storeSvc.GetByID(active.ID)
	if err != nil {
		t.Fatalf("get store failed: %v", err)
	}
	if got.ID != active.ID {
		t.Fatalf("store mismatch: %+v", got)
	}

	if _, err := storeSvc.GetByID(hidden.ID); !errors.Is(err, ErrStoreNotAvailable) {
		t.Fatalf("hidden store want ErrStoreNotAvailable got %v", err)
	}
	if _, err := storeSvc.GetByID(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing store want ErrNotFound got %v", err)
	}
}

func TestSearchMenusByStore(t *testing.T) {
	_, menuSvc, db := setupStoreServiceTest(t)
	store := seedStore(t, db, "金牌炸鸡", constants.StoreCategoryChicken, constants.AccountStatusRegistered)

	for i, name := range []string{"原味炸鸡", "调味炸鸡"} {
		menu := &models.StoreMenu{
			StoreID:  store.ID,
			Name:     name,
			Status:   constants.AccountStatusRegistered,
			Sequence: i,
		}
		if err := db.Create(menu).Error; err != nil {
			t.Fatalf("create menu failed: %v", err)
		}
	}
	hiddenMenu := &models.StoreMenu{StoreID: store.ID, Name: "下架菜", Status: constants.AccountStatusUnregistered}
	if err := db.Create(hiddenMenu).Error; err != nil {
		t.Fatalf("create hidden menu failed: %v", err)
	}

	menus, err := menuSvc.SearchByStore(store.ID)
	if err != nil {
		t.Fatalf("search menus failed: %v", err)
	}
	if len(menus) != 2 {
		t.Fatalf("visible menus want 2 got %d", len(menus))
	}

	if _, err := menuSvc.SearchByStore(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing store want ErrNotFound got %v", err)
	}
}
