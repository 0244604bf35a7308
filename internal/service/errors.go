package service

import "errors"

// 业务错误定义，handler 层通过 errors.Is 映射为响应码
var (
	ErrInvalidCredentials   = errors.New("邮箱或密码错误")
	ErrInvalidEmail         = errors.New("邮箱格式不正确")
	ErrEmailExists          = errors.New("邮箱已被注册")
	ErrInvalidPassword      = errors.New("密码不符合要求")
	ErrUserDisabled         = errors.New("账号已注销")
	ErrNotFound             = errors.New("记录不存在")
	ErrInvalidStoreName     = errors.New("店铺名称不能为空")
	ErrInvalidCategory      = errors.New("不支持的店铺分类")
	ErrStoreNotAvailable    = errors.New("店铺不可用")
	ErrMenuNotAvailable     = errors.New("菜品不可用")
	ErrInvalidOrderItem     = errors.New("订单项不合法")
	ErrOrderStoreMismatch   = errors.New("订单项不属于同一家店铺")
	ErrBelowMinimumAmount   = errors.New("未达到店铺起送金额")
	ErrOrderAccessDenied    = errors.New("无权访问该订单")
	ErrOrderStatusInvalid   = errors.New("非法的订单状态变更")
	ErrOrderAlreadyFinished = errors.New("订单已完结")
)
