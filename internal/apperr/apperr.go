// Package apperr 定义接口层统一的错误分类，由 api.Fail 转换为 {code, message, data} 响应。
package apperr

import (
	"errors"
	"net/http"
)

// Kind 错误类别
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindTooManyRequests
	KindStorage
	KindUpstream
)

// Status 类别对应的 HTTP 状态码
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindStorage:
		return "storage"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// Error 带类别的业务错误
type Error struct {
	Kind    Kind
	Message string // 返回给调用方的提示
	Err     error  // 原始错误，可为空
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap 返回携带原始错误的副本
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Upstream(msg string) *Error   { return &Error{Kind: KindUpstream, Message: msg} }

// TooManyRequests 限流
func TooManyRequests(msg string) *Error { return &Error{Kind: KindTooManyRequests, Message: msg} }

// Storage 包装数据库驱动错误
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "数据库操作失败", Err: err}
}

// KindOf 取错误类别，非 *Error 视为 KindStorage 以外的未知错误（返回 0）
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is 判断 err 是否为指定类别
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
