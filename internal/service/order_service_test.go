package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/push"
	"github.com/mukkai/mukkai-go/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB, *push.LocalBus) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db failed: %v", err)
	}
	// 内存库随连接存在，限制单连接避免连接池拿到空库
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(&models.Store{}, &models.StoreMenu{}, &models.UserOrder{}, &models.UserOrderMenu{})
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	bus := push.NewLocalBus()
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewStoreRepository(db),
		repository.NewStoreMenuRepository(db),
		nil,
		bus,
		false,
		1,
	)
	return svc, db, bus
}

func createTestStore(t *testing.T, db *gorm.DB, minimum, delivery int64) *models.Store {
	t.Helper()
	store := &models.Store{
		Name:                  "测试炸鸡店",
		Address:               "测试路 1 号",
		Category:              constants.StoreCategoryChicken,
		Status:                constants.AccountStatusRegistered,
		MinimumAmount:         models.NewMoneyFromDecimal(decimal.NewFromInt(minimum)),
		MinimumDeliveryAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(delivery)),
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	return store
}

func createTestMenu(t *testing.T, db *gorm.DB, storeID uint, name string, price int64) *models.StoreMenu {
	t.Helper()
	menu := &models.StoreMenu{
		StoreID: storeID,
		Name:    name,
		Amount:  models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Status:  constants.AccountStatusRegistered,
	}
	if err := db.Create(menu).Error; err != nil {
		t.Fatalf("create menu failed: %v", err)
	}
	return menu
}

func TestCreateOrderComputesAmountWithDeliveryFee(t *testing.T) {
	svc, db, bus := setupOrderServiceTest(t)
	store := createTestStore(t, db, 10000, 3000)
	fried := createTestMenu(t, db, store.ID, "炸鸡", 18000)
	beer := createTestMenu(t, db, store.ID, "啤酒", 4000)

	var notices []push.Notice
	cancel, err := bus.Subscribe(context.Background(), func(n push.Notice) {
		notices = append(notices, n)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:  1,
		StoreID: store.ID,
		Address: "配送地址",
		Items: []CreateOrderItem{
			{StoreMenuID: fried.ID, Quantity: 1},
			{StoreMenuID: beer.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want PENDING got %s", order.Status)
	}
	// 18000 + 4000*2 + 配送费 3000
	if !order.Amount.Decimal.Equal(decimal.NewFromInt(29000)) {
		t.Fatalf("amount want 29000 got %s", order.Amount)
	}
	if !order.DeliveryAmount.Decimal.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("delivery amount want 3000 got %s", order.DeliveryAmount)
	}
	if len(order.Menus) != 2 {
		t.Fatalf("order menus want 2 got %d", len(order.Menus))
	}
	if order.OrderNo == "" {
		t.Fatalf("order no should be generated")
	}

	if len(notices) != 1 {
		t.Fatalf("new order notice want 1 got %d", len(notices))
	}
	if notices[0].Type != constants.SSEEventNewOrder || notices[0].StoreID != store.ID {
		t.Fatalf("notice mismatch: %+v", notices[0])
	}
}

func TestCreateOrderRejectsCrossStoreItems(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	store := createTestStore(t, db, 0, 0)
	other := createTestStore(t, db, 0, 0)
	menu := createTestMenu(t, db, other.ID, "别家的菜", 9000)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:  1,
		StoreID: store.ID,
		Items:   []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrOrderStoreMismatch) {
		t.Fatalf("cross-store order want ErrOrderStoreMismatch got %v", err)
	}
}

func TestCreateOrderBelowMinimumAmount(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	store := createTestStore(t, db, 20000, 3000)
	menu := createTestMenu(t, db, store.ID, "小吃", 5000)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:  1,
		StoreID: store.ID,
		Items:   []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrBelowMinimumAmount) {
		t.Fatalf("below minimum want ErrBelowMinimumAmount got %v", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	store := createTestStore(t, db, 0, 0)
	menu := createTestMenu(t, db, store.ID, "炸鸡", 18000)

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{"no_items", CreateOrderInput{UserID: 1, StoreID: store.ID}, ErrInvalidOrderItem},
		{"zero_quantity", CreateOrderInput{UserID: 1, StoreID: store.ID,
			Items: []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 0}}}, ErrInvalidOrderItem},
		{"duplicate_menu", CreateOrderInput{UserID: 1, StoreID: store.ID,
			Items: []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}, {StoreMenuID: menu.ID, Quantity: 1}}}, ErrInvalidOrderItem},
		{"missing_menu", CreateOrderInput{UserID: 1, StoreID: store.ID,
			Items: []CreateOrderItem{{StoreMenuID: 9999, Quantity: 1}}}, ErrMenuNotAvailable},
		{"no_user", CreateOrderInput{StoreID: store.ID,
			Items: []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}}}, ErrInvalidOrderItem},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestCreateOrderRejectsUnregisteredStore(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	store := createTestStore(t, db, 0, 0)
	menu := createTestMenu(t, db, store.ID, "炸鸡", 18000)
	if err := db.Model(store).Update("status", constants.AccountStatusUnregistered).Error; err != nil {
		t.Fatalf("update store failed: %v", err)
	}

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:  1,
		StoreID: store.ID,
		Items:   []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrStoreNotAvailable) {
		t.Fatalf("unregistered store want ErrStoreNotAvailable got %v", err)
	}
}

func createPendingOrder(t *testing.T, svc *OrderService, db *gorm.DB, userID uint) (*models.UserOrder, *models.Store) {
	t.Helper()
	store := createTestStore(t, db, 0, 1000)
	menu := createTestMenu(t, db, store.ID, "炸鸡", 18000)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:  userID,
		StoreID: store.ID,
		Address: "配送地址",
		Items:   []CreateOrderItem{{StoreMenuID: menu.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order, store
}

func TestUpdateStatusByStoreFollowsTransitions(t *testing.T) {
	svc, db, bus := setupOrderServiceTest(t)
	order, store := createPendingOrder(t, svc, db, 1)

	var notices []push.Notice
	cancel, _ := bus.Subscribe(context.Background(), func(n push.Notice) {
		notices = append(notices, n)
	})
	defer cancel()

	updated, err := svc.UpdateStatusByStore(store.ID, order.ID, constants.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if updated.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want CONFIRMED got %s", updated.Status)
	}
	if updated.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}

	var reloaded models.UserOrder
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusConfirmed || reloaded.ConfirmedAt == nil {
		t.Fatalf("persisted status mismatch: %s", reloaded.Status)
	}

	if len(notices) != 1 || notices[0].Type != constants.SSEEventOrderStatusUpdate {
		t.Fatalf("status notice expected, got %+v", notices)
	}
	if notices[0].UserID != 1 {
		t.Fatalf("notice should target consumer 1, got %d", notices[0].UserID)
	}
}

func TestUpdateStatusRejectsSkippedTransition(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	order, store := createPendingOrder(t, svc, db, 1)

	_, err := svc.UpdateStatusByStore(store.ID, order.ID, constants.OrderStatusDelivering)
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("skip transition want ErrOrderStatusInvalid got %v", err)
	}
}

func TestUpdateStatusByWrongStoreDenied(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	order, _ := createPendingOrder(t, svc, db, 1)
	other := createTestStore(t, db, 0, 0)

	_, err := svc.UpdateStatusByStore(other.ID, order.ID, constants.OrderStatusConfirmed)
	if !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("wrong store want ErrOrderAccessDenied got %v", err)
	}
}

func TestCancelAllowedFromAnyActiveState(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	order, store := createPendingOrder(t, svc, db, 1)

	if _, err := svc.UpdateStatusByStore(store.ID, order.ID, constants.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	cancelled, err := svc.UpdateStatusByStore(store.ID, order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancel state mismatch: %+v", cancelled.Status)
	}

	// 已完结订单不允许再变更
	_, err = svc.UpdateStatusByStore(store.ID, order.ID, constants.OrderStatusConfirmed)
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("finished order want ErrOrderStatusInvalid got %v", err)
	}
}

func TestAdvanceStatusWalksFullChain(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	order, _ := createPendingOrder(t, svc, db, 1)

	expected := []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusDelivering,
		constants.OrderStatusDelivered,
	}
	for _, want := range expected {
		advanced, err := svc.AdvanceStatus(order.ID)
		if err != nil {
			t.Fatalf("advance to %s failed: %v", want, err)
		}
		if advanced.Status != want {
			t.Fatalf("status want %s got %s", want, advanced.Status)
		}
	}

	_, err := svc.AdvanceStatus(order.ID)
	if !errors.Is(err, ErrOrderAlreadyFinished) {
		t.Fatalf("advance finished want ErrOrderAlreadyFinished got %v", err)
	}

	var reloaded models.UserOrder
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ConfirmedAt == nil || reloaded.PreparingAt == nil ||
		reloaded.DeliveryStartedAt == nil || reloaded.DeliveredAt == nil {
		t.Fatalf("per-status timestamps should all be set")
	}
}

func TestOrderListsSplitCurrentAndHistory(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	active, _ := createPendingOrder(t, svc, db, 1)
	finished, _ := createPendingOrder(t, svc, db, 1)
	otherUser, _ := createPendingOrder(t, svc, db, 2)
	_ = otherUser

	for range constants.OrderStatusSequence[1:] {
		if _, err := svc.AdvanceStatus(finished.ID); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}

	current, err := svc.ListCurrentByUser(1)
	if err != nil {
		t.Fatalf("list current failed: %v", err)
	}
	if len(current) != 1 || current[0].ID != active.ID {
		t.Fatalf("current want [%d] got %+v", active.ID, current)
	}

	history, err := svc.ListHistoryByUser(1)
	if err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != finished.ID {
		t.Fatalf("history want [%d] got %+v", finished.ID, history)
	}
}

func TestGetDetailForUserChecksOwnership(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	order, _ := createPendingOrder(t, svc, db, 1)

	got, err := svc.GetDetailForUser(1, order.ID)
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if got.ID != order.ID || len(got.Menus) != 1 {
		t.Fatalf("detail mismatch: %+v", got)
	}

	if _, err := svc.GetDetailForUser(2, order.ID); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("other user want ErrOrderAccessDenied got %v", err)
	}
	if _, err := svc.GetDetailForUser(1, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing order want ErrNotFound got %v", err)
	}
}
