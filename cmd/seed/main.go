package main

import (
	"time"

	"github.com/mukkai/mukkai-go/internal/config"
	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 种子数据：演示店铺、菜单与测试账号
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 演示店铺与菜单
	stores := []struct {
		Store models.Store
		Menus []models.StoreMenu
	}{
		{
			Store: models.Store{
				Name:                  "金牌炸鸡",
				Address:               "首尔特别市江南区テヘラン路 123",
				Category:              constants.StoreCategoryChicken,
				Status:                constants.AccountStatusRegistered,
				Star:                  4.8,
				ThumbnailURL:          "https://cdn.example.com/stores/chicken.jpg",
				MinimumAmount:         models.NewMoneyFromInt(26),
				MinimumDeliveryAmount: models.NewMoneyFromInt(3),
				PhoneNumber:           "02-1234-5678",
				CreatedAt:             now,
				UpdatedAt:             now,
			},
			Menus: []models.StoreMenu{
				{Name: "原味炸鸡", Amount: models.NewMoneyFromInt(32), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/fried.jpg", LikeCount: 128, Sequence: 1},
				{Name: "甜辣炸鸡", Amount: models.NewMoneyFromInt(35), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/sweet.jpg", LikeCount: 96, Sequence: 2},
				{Name: "蒜香炸鸡", Amount: models.NewMoneyFromInt(36), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/garlic.jpg", LikeCount: 64, Sequence: 3},
			},
		},
		{
			Store: models.Store{
				Name:                  "罗马窑烤披萨",
				Address:               "首尔特别市麻浦区世界杯北路 45",
				Category:              constants.StoreCategoryPizza,
				Status:                constants.AccountStatusRegistered,
				Star:                  4.6,
				ThumbnailURL:          "https://cdn.example.com/stores/pizza.jpg",
				MinimumAmount:         models.NewMoneyFromInt(30),
				MinimumDeliveryAmount: models.NewMoneyFromInt(4),
				PhoneNumber:           "02-2345-6789",
				CreatedAt:             now,
				UpdatedAt:             now,
			},
			Menus: []models.StoreMenu{
				{Name: "玛格丽特", Amount: models.NewMoneyFromInt(42), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/margherita.jpg", LikeCount: 201, Sequence: 1},
				{Name: "意式腊肠", Amount: models.NewMoneyFromInt(46), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/pepperoni.jpg", LikeCount: 150, Sequence: 2},
			},
		},
		{
			Store: models.Store{
				Name:                  "汉江部队锅",
				Address:               "首尔特别市龙山区汉江大路 77",
				Category:              constants.StoreCategoryKoreanFood,
				Status:                constants.AccountStatusRegistered,
				Star:                  4.9,
				ThumbnailURL:          "https://cdn.example.com/stores/korean.jpg",
				MinimumAmount:         models.NewMoneyFromInt(40),
				MinimumDeliveryAmount: models.NewMoneyFromInt(3),
				PhoneNumber:           "02-3456-7890",
				CreatedAt:             now,
				UpdatedAt:             now,
			},
			Menus: []models.StoreMenu{
				{Name: "经典部队锅", Amount: models.NewMoneyFromInt(58), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/budae.jpg", LikeCount: 310, Sequence: 1},
				{Name: "泡菜煎饼", Amount: models.NewMoneyFromInt(22), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/pancake.jpg", LikeCount: 88, Sequence: 2},
				{Name: "石锅拌饭", Amount: models.NewMoneyFromInt(28), Status: constants.AccountStatusRegistered, ThumbnailURL: "https://cdn.example.com/menus/bibimbap.jpg", LikeCount: 120, Sequence: 3},
			},
		},
	}

	storeIDsByName := map[string]uint{}
	for _, entry := range stores {
		var existing models.Store
		if err := models.DB.Where("name = ?", entry.Store.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Store already exists: %s", entry.Store.Name)
			storeIDsByName[entry.Store.Name] = existing.ID
			continue
		}
		store := entry.Store
		if err := models.DB.Create(&store).Error; err != nil {
			stdLog.Printf("Failed to create store %s: %v", store.Name, err)
			continue
		}
		storeIDsByName[store.Name] = store.ID
		stdLog.Printf("Created store: %s", store.Name)
		for _, menu := range entry.Menus {
			menu.StoreID = store.ID
			menu.CreatedAt = now
			menu.UpdatedAt = now
			if err := models.DB.Create(&menu).Error; err != nil {
				stdLog.Printf("Failed to create menu %s: %v", menu.Name, err)
			}
		}
	}

	// 测试消费者账号
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}
	consumer := models.User{
		Email:        "consumer@example.com",
		PasswordHash: string(passwordHash),
		Name:         "测试消费者",
		Address:      "首尔特别市中区明洞路 1",
		Phone:        "010-1111-2222",
		Status:       constants.AccountStatusRegistered,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	var existingUser models.User
	if err := models.DB.Where("email = ?", consumer.Email).First(&existingUser).Error; err != nil {
		if err := models.DB.Create(&consumer).Error; err != nil {
			stdLog.Printf("Failed to create consumer: %v", err)
		} else {
			stdLog.Printf("Created consumer: %s", consumer.Email)
		}
	} else {
		stdLog.Printf("Consumer already exists: %s", consumer.Email)
	}

	// 测试店主账号，挂在第一家店铺下
	if storeID, ok := storeIDsByName["金牌炸鸡"]; ok {
		merchant := models.StoreUser{
			Email:        "owner@example.com",
			PasswordHash: string(passwordHash),
			Name:         "测试店主",
			Phone:        "010-3333-4444",
			Status:       constants.AccountStatusRegistered,
			StoreID:      storeID,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		var existingStoreUser models.StoreUser
		if err := models.DB.Where("email = ?", merchant.Email).First(&existingStoreUser).Error; err != nil {
			if err := models.DB.Create(&merchant).Error; err != nil {
				stdLog.Printf("Failed to create store user: %v", err)
			} else {
				stdLog.Printf("Created store user: %s", merchant.Email)
			}
		} else {
			stdLog.Printf("Store user already exists: %s", merchant.Email)
		}
	}

	stdLog.Printf("Seed finished")
}
