package constants

// 订单状态常量（状态机：pending -> confirmed -> preparing -> delivering -> delivered，任意节点可取消）
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusPreparing  = "PREPARING"
	OrderStatusDelivering = "DELIVERING"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// OrderStatusSequence 订单状态推进顺序（取消不在自动推进链路内）
var OrderStatusSequence = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusDelivering,
	OrderStatusDelivered,
}

// 账号状态常量
const (
	AccountStatusRegistered   = "REGISTERED"
	AccountStatusUnregistered = "UNREGISTERED"
)

// 店铺分类常量
const (
	StoreCategoryChicken      = "CHICKEN"
	StoreCategoryPizza        = "PIZZA"
	StoreCategoryHamburger    = "HAMBURGER"
	StoreCategoryKoreanFood   = "KOREAN_FOOD"
	StoreCategoryChineseFood  = "CHINESE_FOOD"
	StoreCategoryJapaneseFood = "JAPANESE_FOOD"
	StoreCategoryCoffeeTea    = "COFFEE_TEA"
)

// StoreCategories 受支持的店铺分类集合
var StoreCategories = []string{
	StoreCategoryChicken,
	StoreCategoryPizza,
	StoreCategoryHamburger,
	StoreCategoryKoreanFood,
	StoreCategoryChineseFood,
	StoreCategoryJapaneseFood,
	StoreCategoryCoffeeTea,
}

// SSE 事件类型常量
const (
	SSEEventOrderStatusUpdate = "order-status-update"
	SSEEventNewOrder          = "new-order"
	SSEEventDeliveryUpdate    = "delivery-update"
	SSEEventPromotion         = "promotion"
	SSEEventSystemMessage     = "system-message"
)

// 认证角色常量（区分消费者与店主两类身份）
const (
	RoleConsumer = "consumer"
	RoleMerchant = "merchant"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskOrderStatusAdvance = "order:status_advance"
)

// 客户端持久化键名常量（各 Store 独立命名空间，互不冲突）
const (
	StorageKeyAccessToken         = "accessToken"
	StorageKeyLastLoginEmail      = "lastLoginEmail"
	StorageKeyConsumerProfile     = "consumerProfile"
	StorageKeyMerchantAccessToken = "storeUserAccessToken"
	StorageKeyMerchantLoginEmail  = "lastStoreLoginEmail"
	StorageKeyMerchantProfile     = "storeUserProfile"
	StorageKeyCart                = "cart-storage"
)
