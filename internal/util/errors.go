package util

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind 业务错误分类，调用方据此决定是否允许重试或降级
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindTransient  ErrorKind = "TRANSIENT"
)

// ErrorCode 返回给客户端的稳定错误码
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_FAILED"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeAlreadyAccepted     ErrorCode = "ALREADY_ACCEPTED"
	CodeAlreadyCompleted    ErrorCode = "ALREADY_COMPLETED"
	CodeAlreadyCancelled    ErrorCode = "ALREADY_CANCELLED"
	CodeDuplicateCompletion ErrorCode = "DUPLICATE_ACTIVITY_COMPLETION"
	CodeStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"
)

// AppError 带分类的业务错误
type AppError struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is(err, ErrAlreadyAccepted) 对带上下文的副本同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrMissionNotFound      = &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: "mission not found"}
	ErrUserMissionNotFound  = &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: "user mission not found"}
	ErrActivityNotFound     = &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: "activity not found"}
	ErrAlreadyAccepted      = &AppError{Kind: KindConflict, Code: CodeAlreadyAccepted, Message: "mission already accepted"}
	ErrAlreadyCompleted     = &AppError{Kind: KindConflict, Code: CodeAlreadyCompleted, Message: "mission already completed"}
	ErrAlreadyCancelled     = &AppError{Kind: KindConflict, Code: CodeAlreadyCancelled, Message: "mission already cancelled"}
	ErrDuplicateCompletion  = &AppError{Kind: KindConflict, Code: CodeDuplicateCompletion, Message: "activity already completed for this date"}
	ErrStorageUnavailable   = &AppError{Kind: KindTransient, Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrTrackedMissionManual = &AppError{Kind: KindValidation, Code: CodeValidation, Message: "mission progress is driven by tracking entries"}
)

// Validation 构造输入校验错误
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Transient 包装存储层/缓存层的临时错误
func Transient(op string, err error) *AppError {
	return &AppError{Kind: KindTransient, Code: CodeStorageUnavailable, Message: op, Err: err}
}

// FromStorage 将 gorm 错误映射到业务分类；notFound 为记录不存在时返回的错误
func FromStorage(op string, err error, notFound *AppError) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return Transient(op, err)
}

// KindOf 返回错误分类；未分类的错误视为 TRANSIENT
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindTransient
}

// CodeOf 返回错误码
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStorageUnavailable
}

// IsTransient 只有 TRANSIENT 错误允许重试或走降级路径
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}
