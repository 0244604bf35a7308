package clienterr

import (
	"errors"
	"fmt"
)

// 客户端错误分类。调用方通过 errors.Is 判断类别并决定提示与重试策略
var (
	// ErrAuthRequired 操作需要先登录
	ErrAuthRequired = errors.New("需要先登录")
	// ErrAuthExpired 登录态已失效，需要重新登录
	ErrAuthExpired = errors.New("登录已过期")
	// ErrValidation 输入不满足业务规则
	ErrValidation = errors.New("输入不合法")
	// ErrNotFound 目标资源不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrNetwork 网络或服务端暂时不可用，可重试
	ErrNetwork = errors.New("网络暂时不可用")
	// ErrConfig 客户端配置错误，重试无意义
	ErrConfig = errors.New("客户端配置错误")
)

// Wrap 将分类与具体描述组合为一个错误
func Wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Retryable 判断错误是否值得自动重试
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
