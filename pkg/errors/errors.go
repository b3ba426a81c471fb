package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，HTTP状态码由Code的前三位推导
// 2. Message是返回给客户端的提示信息
// 3. Err是内部错误，只写日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一错误码视为同一类错误
// 仓储返回的哨兵错误可能被Wrap多次，按错误码比较可以穿透
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Err == nil && t.Code == e.Code && t.Message == e.Message
}

// HTTPStatus 根据错误码推导HTTP状态码
// 40400 → 404, 40001 → 400, 50001 → 500
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误（数据库、缓存、消息队列），隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 使用指定错误码包装底层错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则不满足）
// - 5xxxx: 服务端错误（存储异常、外部服务不可用）
// 前三位即HTTP状态码

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeLockError     = 50003 // 分布式锁错误
	ErrCodeMQError       = 50004 // 消息队列错误

	// 服务不可用（50300-50399）
	ErrCodeUnavailable = 50300 // 依赖服务不可用

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound   = 40401 // 图书不存在
	ErrCodeReaderNotFound = 40402 // 读者不存在
	ErrCodeLoanNotFound   = 40403 // 借阅记录不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError       = 40000 // 业务错误(通用)
	ErrCodeBorrowRejected      = 40001 // 借书被拒绝
	ErrCodeLoanAlreadyReturned = 40002 // 借阅已归还
	ErrCodeInvalidParams       = 40003 // 参数错误
	ErrCodeBindError           = 40004 // 参数绑定失败

	// 冲突（40900-40999）
	ErrCodeDuplicateEntry = 40900 // 重复记录
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrUnavailable   = New(ErrCodeUnavailable, "服务暂不可用")

	ErrNotFound       = New(ErrCodeNotFound, "资源不存在")
	ErrInvalidParams  = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError      = New(ErrCodeBindError, "参数格式错误")
	ErrDuplicateEntry = New(ErrCodeDuplicateEntry, "记录已存在")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
// 多层包装时取最外层的AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
