package client

import (
	"errors"
	"fmt"
	"time"

	"baitapvui_backend/internal/util"
)

// ErrorKind 调用方需要区别处理的错误类别
type ErrorKind string

const (
	// KindNetwork 后端不可达，可重试
	KindNetwork ErrorKind = "network"
	// KindRejected 后端返回带错误体的 4xx
	KindRejected ErrorKind = "rejected"
	// KindServer 5xx 或无法解析的响应，可重试
	KindServer ErrorKind = "server"
	// KindThrottled 后端限流（429），RetryAfter 之后可重试
	KindThrottled ErrorKind = "throttled"
)

// APIError Client 所有方法失败时返回
type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Fields  []util.FieldError
	// RetryAfter 取自 429 的 Retry-After 头，没有时为 0
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	default:
		return fmt.Sprintf("backend %s error (%d %s): %s", e.Kind, e.Status, e.Code, e.Message)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// FieldErrors 后端返回的字段校验错误
func (e *APIError) FieldErrors() []util.FieldError { return e.Fields }

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetwork 是否为后端不可达
func IsNetwork(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Kind == KindNetwork
}

// IsRetryable 重试同一请求是否可能成功
func IsRetryable(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Kind == KindNetwork || apiErr.Kind == KindServer || apiErr.Kind == KindThrottled)
}

// IsThrottled 是否被后端限流
func IsThrottled(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Kind == KindThrottled
}

// IsRejected 后端是否拒绝了请求，可能带字段错误
func IsRejected(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Kind == KindRejected
}

// StatusOf 返回后端错误的 HTTP 状态码，网络错误为 0
func StatusOf(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}
