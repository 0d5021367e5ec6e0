package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统错误 (1000-1999)
	ErrCodeInternal ErrorCode = 1000 + iota
	ErrCodeNotFound
	ErrCodeDataIntegrity
	ErrCodeExecution
)

const (
	// 参数错误 (2000-2999)
	ErrCodeInvalidParam ErrorCode = 2000 + iota
)

const (
	// 运行错误 (4000-4999)，评测环境本身出错，与提交代码无关
	ErrCodeHarness ErrorCode = 4000 + iota
)

const (
	// 存储错误 (5000-5999)
	ErrCodeStorage ErrorCode = 5000 + iota
	ErrCodeObjectDownloadFailed
)

// JudgeError 评测系统错误
type JudgeError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *JudgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *JudgeError) Unwrap() error {
	return e.Err
}

// New 创建新的评测错误
func New(code ErrorCode, message string) *JudgeError {
	return &JudgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) *JudgeError {
	return &JudgeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewInvalidParamError 创建参数错误
func NewInvalidParamError(param string, reason string) *JudgeError {
	return New(ErrCodeInvalidParam, fmt.Sprintf("参数 %s 无效: %s", param, reason))
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(resource string, id int64) *JudgeError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s 不存在: %d", resource, id))
}

// NewDataIntegrityError 创建数据完整性错误，存储中的数据形状不符合预期
func NewDataIntegrityError(message string, err error) *JudgeError {
	return Wrap(ErrCodeDataIntegrity, message, err)
}

// NewHarnessError 创建评测环境错误（无法创建临时文件或启动进程）
func NewHarnessError(message string, err error) *JudgeError {
	return Wrap(ErrCodeHarness, message, err)
}

// NewExecutionError 创建不透明的执行错误，细节只写日志
func NewExecutionError(err error) *JudgeError {
	return Wrap(ErrCodeExecution, "代码执行失败", err)
}

// NewStorageError 创建存储错误
func NewStorageError(message string, err error) *JudgeError {
	return Wrap(ErrCodeStorage, message, err)
}

// As 从错误链中取出 JudgeError
func As(err error) (*JudgeError, bool) {
	var judgeErr *JudgeError
	if stderrors.As(err, &judgeErr) {
		return judgeErr, true
	}
	return nil, false
}

// IsErrorCode 判断错误是否为指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	if judgeErr, ok := As(err); ok {
		return judgeErr.Code == code
	}
	return false
}

// GetErrorCode 获取错误码
func GetErrorCode(err error) ErrorCode {
	if judgeErr, ok := As(err); ok {
		return judgeErr.Code
	}
	return ErrCodeInternal
}
