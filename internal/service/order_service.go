package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/mukkai/mukkai-go/internal/constants"
	"github.com/mukkai/mukkai-go/internal/logger"
	"github.com/mukkai/mukkai-go/internal/models"
	"github.com/mukkai/mukkai-go/internal/push"
	"github.com/mukkai/mukkai-go/internal/queue"
	"github.com/mukkai/mukkai-go/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	storeRepo     repository.StoreRepository
	storeMenuRepo repository.StoreMenuRepository
	queueClient   *queue.Client
	bus           push.Bus
	progressDelay time.Duration
	autoProgress  bool
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, storeRepo repository.StoreRepository, storeMenuRepo repository.StoreMenuRepository, queueClient *queue.Client, bus push.Bus, autoProgress bool, progressIntervalSeconds int) *OrderService {
	if progressIntervalSeconds <= 0 {
		progressIntervalSeconds = 30
	}
	return &OrderService{
		orderRepo:     orderRepo,
		storeRepo:     storeRepo,
		storeMenuRepo: storeMenuRepo,
		queueClient:   queueClient,
		bus:           bus,
		progressDelay: time.Duration(progressIntervalSeconds) * time.Second,
		autoProgress:  autoProgress,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID  uint
	StoreID uint
	Address string
	Request string
	Items   []CreateOrderItem
}

// CreateOrderItem 订单项输入
type CreateOrderItem struct {
	StoreMenuID uint
	Quantity    int
}

// statusTimestampColumn 各状态对应的时间戳字段
var statusTimestampColumn = map[string]string{
	constants.OrderStatusConfirmed:  "confirmed_at",
	constants.OrderStatusPreparing:  "preparing_at",
	constants.OrderStatusDelivering: "delivery_started_at",
	constants.OrderStatusDelivered:  "delivered_at",
	constants.OrderStatusCancelled:  "cancelled_at",
}

// statusMessages 状态推进时投递给消费者的提示文案
var statusMessages = map[string]string{
	constants.OrderStatusPending:    "订单已提交，等待店铺接单",
	constants.OrderStatusConfirmed:  "店铺已接单",
	constants.OrderStatusPreparing:  "店铺正在备餐",
	constants.OrderStatusDelivering: "骑手已取餐，正在配送",
	constants.OrderStatusDelivered:  "订单已送达",
	constants.OrderStatusCancelled:  "订单已取消",
}

// allowedTransitions 允许的状态变更集合（取消可在任意进行中状态发起）
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusDelivering: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusDelivering: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// CreateOrder 创建订单。所有订单项必须属于同一家店铺，金额按下单时单价快照计算
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.UserOrder, error) {
	if input.UserID == 0 || input.StoreID == 0 {
		return nil, ErrInvalidOrderItem
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidOrderItem
	}

	store, err := s.storeRepo.GetByID(input.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil || store.Status != constants.AccountStatusRegistered {
		return nil, ErrStoreNotAvailable
	}

	ids := make([]uint, 0, len(input.Items))
	quantityByID := make(map[uint]int, len(input.Items))
	for _, item := range input.Items {
		if item.StoreMenuID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if _, dup := quantityByID[item.StoreMenuID]; dup {
			return nil, ErrInvalidOrderItem
		}
		quantityByID[item.StoreMenuID] = item.Quantity
		ids = append(ids, item.StoreMenuID)
	}

	menus, err := s.storeMenuRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(menus) != len(ids) {
		return nil, ErrMenuNotAvailable
	}

	subtotal := decimal.Zero
	orderMenus := make([]models.UserOrderMenu, 0, len(menus))
	for _, menu := range menus {
		if menu.StoreID != input.StoreID {
			return nil, ErrOrderStoreMismatch
		}
		if menu.Status != constants.AccountStatusRegistered {
			return nil, ErrMenuNotAvailable
		}
		quantity := quantityByID[menu.ID]
		subtotal = subtotal.Add(menu.Amount.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
		orderMenus = append(orderMenus, models.UserOrderMenu{
			StoreMenuID: menu.ID,
			Name:        menu.Name,
			UnitAmount:  menu.Amount,
			Quantity:    quantity,
		})
	}

	if subtotal.LessThan(store.MinimumAmount.Decimal) {
		return nil, ErrBelowMinimumAmount
	}

	now := time.Now()
	order := &models.UserOrder{
		OrderNo:        generateOrderNo(),
		UserID:         input.UserID,
		StoreID:        input.StoreID,
		Status:         constants.OrderStatusPending,
		Amount:         models.NewMoneyFromDecimal(subtotal.Add(store.MinimumDeliveryAmount.Decimal)),
		DeliveryAmount: store.MinimumDeliveryAmount,
		Address:        input.Address,
		Request:        input.Request,
		OrderedAt:      now,
		UpdatedAt:      now,
		Menus:          orderMenus,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	order.Store = store

	s.publishNewOrder(order)
	s.scheduleAdvance(order.ID)

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"store_id", order.StoreID,
		"amount", order.Amount.String(),
	)
	return order, nil
}

// ListCurrentByUser 获取消费者进行中的订单
func (s *OrderService) ListCurrentByUser(userID uint) ([]models.UserOrder, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.orderRepo.ListCurrentByUser(userID)
}

// ListHistoryByUser 获取消费者历史订单
func (s *OrderService) ListHistoryByUser(userID uint) ([]models.UserOrder, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.orderRepo.ListHistoryByUser(userID)
}

// GetDetailForUser 获取订单详情并校验归属
func (s *OrderService) GetDetailForUser(userID, orderID uint) (*models.UserOrder, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// ListCurrentByStore 获取店铺进行中的订单（店主工作台）
func (s *OrderService) ListCurrentByStore(storeID uint) ([]models.UserOrder, error) {
	if storeID == 0 {
		return nil, ErrNotFound
	}
	return s.orderRepo.ListCurrentByStore(storeID)
}

// UpdateStatusByStore 店主变更订单状态并通知消费者
func (s *OrderService) UpdateStatusByStore(storeID, orderID uint, status string) (*models.UserOrder, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.StoreID != storeID {
		return nil, ErrOrderAccessDenied
	}
	return s.transition(order, status)
}

// AdvanceStatus 沿状态链推进一步（worker 调用）。返回推进后的订单
func (s *OrderService) AdvanceStatus(orderID uint) (*models.UserOrder, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	next := nextOrderStatus(order.Status)
	if next == "" {
		return nil, ErrOrderAlreadyFinished
	}
	return s.transition(order, next)
}

// NextAdvanceDelay 自动推进的间隔
func (s *OrderService) NextAdvanceDelay() time.Duration {
	return s.progressDelay
}

func (s *OrderService) transition(order *models.UserOrder, status string) (*models.UserOrder, error) {
	if !allowedTransitions[order.Status][status] {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if column, ok := statusTimestampColumn[status]; ok {
		updates[column] = now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, status, updates); err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = now
	if column, ok := statusTimestampColumn[status]; ok {
		switch column {
		case "confirmed_at":
			order.ConfirmedAt = &now
		case "preparing_at":
			order.PreparingAt = &now
		case "delivery_started_at":
			order.DeliveryStartedAt = &now
		case "delivered_at":
			order.DeliveredAt = &now
		case "cancelled_at":
			order.CancelledAt = &now
		}
	}

	s.publishStatusUpdate(order, now)
	logger.Infow("order_status_changed",
		"order_no", order.OrderNo,
		"status", status,
	)
	return order, nil
}

func (s *OrderService) publishNewOrder(order *models.UserOrder) {
	if s.bus == nil {
		return
	}
	notice, err := push.NewNewOrderNotice(order.StoreID, order.ID, order.Amount.String(), order.OrderedAt)
	if err != nil {
		logger.Warnw("order_notice_build_failed", "order_no", order.OrderNo, "error", err)
		return
	}
	if err := s.bus.Publish(context.Background(), notice); err != nil {
		logger.Warnw("order_notice_publish_failed", "order_no", order.OrderNo, "error", err)
	}
}

func (s *OrderService) publishStatusUpdate(order *models.UserOrder, at time.Time) {
	if s.bus == nil {
		return
	}
	notice, err := push.NewOrderStatusNotice(order.UserID, order.ID, order.Status, statusMessages[order.Status], at)
	if err != nil {
		logger.Warnw("order_notice_build_failed", "order_no", order.OrderNo, "error", err)
		return
	}
	if err := s.bus.Publish(context.Background(), notice); err != nil {
		logger.Warnw("order_notice_publish_failed", "order_no", order.OrderNo, "error", err)
	}
}

func (s *OrderService) scheduleAdvance(orderID uint) {
	if !s.autoProgress {
		return
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderStatusAdvance(queue.OrderStatusAdvancePayload{OrderID: orderID}, s.progressDelay)
		if err != nil {
			logger.Warnw("order_advance_enqueue_failed", "order_id", orderID, "error", err)
		}
		return
	}
	// 队列未启用时退化为进程内定时推进
	time.AfterFunc(s.progressDelay, func() {
		order, err := s.AdvanceStatus(orderID)
		if err != nil {
			if !errors.Is(err, ErrOrderAlreadyFinished) && !errors.Is(err, ErrOrderStatusInvalid) {
				logger.Warnw("order_advance_failed", "order_id", orderID, "error", err)
			}
			return
		}
		if nextOrderStatus(order.Status) != "" {
			s.scheduleAdvance(orderID)
		}
	})
}

// ScheduleNextAdvance 推进一步之后继续排队下一步（worker 调用）
func (s *OrderService) ScheduleNextAdvance(orderID uint) {
	s.scheduleAdvance(orderID)
}

func nextOrderStatus(current string) string {
	for i, status := range constants.OrderStatusSequence {
		if status == current && i+1 < len(constants.OrderStatusSequence) {
			return constants.OrderStatusSequence[i+1]
		}
	}
	return ""
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("MK%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
