package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误类型
// 包含错误码和错误消息，牌局规则错误都是可恢复的：动作被拒绝，状态不变
type AppError struct {
	Code    int    // 错误码
	Message string // 用户可见的错误消息
	Err     error  // 原始错误（可选，用于调试）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 错误码相同即视为同一错误，供 errors.Is 使用
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewError 创建新错误
func NewError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Withf 附带格式化的细节
func (e *AppError) Withf(format string, args ...any) *AppError {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Is 判断是否为指定错误
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，如果不是 AppError 返回默认错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "服务器内部错误"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 参数相关 11000-11999
	CodeInvalidParams   = 11001
	CodeSessionNotFound = 11002

	// 牌局规则 20000-20999
	CodeInvalidTransition = 20001
	CodeNotAWinningHand   = 20002
	CodeWallExhausted     = 20003
	CodeIllegalClaim      = 20004

	// 系统错误 50000-50999
	CodeServerError = 50001
	CodeDBError     = 50002
)

// ============== 预定义错误 ==============

var (
	ErrInvalidParams   = NewError(CodeInvalidParams, "参数校验失败")
	ErrSessionNotFound = NewError(CodeSessionNotFound, "牌局不存在")
)

// 牌局规则
var (
	ErrInvalidTransition = NewError(CodeInvalidTransition, "当前阶段不能执行该操作")
	ErrNotAWinningHand   = NewError(CodeNotAWinningHand, "不是胡牌牌型")
	ErrWallExhausted     = NewError(CodeWallExhausted, "牌墙已空")
	ErrIllegalClaim      = NewError(CodeIllegalClaim, "不能吃碰杠这张牌")
)

// 系统相关
var (
	ErrServerError = NewError(CodeServerError, "服务器内部错误")
	ErrDBError     = NewError(CodeDBError, "数据库错误")
)
