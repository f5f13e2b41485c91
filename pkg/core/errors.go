package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrBadRequest 请求参数错误
	ErrBadRequest = errors.New("请求参数错误")
	// ErrUnauthorized 未登录或token已失效
	ErrUnauthorized = errors.New("未登录或登录已过期")
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("权限不足")
	// ErrInvalidState 当前状态下不允许的操作
	ErrInvalidState = errors.New("当前状态不允许该操作")
	// ErrNotLoggedIn 本地没有会话
	ErrNotLoggedIn = errors.New("请先登录")
)

// ErrorKind 远程调用错误的类型
type ErrorKind int

const (
	// ErrKindTransport 网络错误、非2xx状态码、响应无法解析
	ErrKindTransport ErrorKind = iota
	// ErrKindEnvelope 信封中 code != 0
	ErrKindEnvelope
)

// String 返回错误类型的字符串表示
func (k ErrorKind) String() string {
	switch k {
	case ErrKindTransport:
		return "transport"
	case ErrKindEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// APIError 调用服务端接口失败
type APIError struct {
	Kind       ErrorKind // 错误类型
	Method     string    // 请求方法
	Path       string    // 请求路径
	HTTPStatus int       // HTTP状态码，网络错误时为0
	Code       int       // 信封中的code
	Message    string    // 信封中的message或错误描述
	Err        error     // 底层错误
}

// Error 实现error接口
func (e *APIError) Error() string {
	switch e.Kind {
	case ErrKindEnvelope:
		return fmt.Sprintf("API返回错误，code: %d, message: %s", e.Code, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s %s 请求失败: %v", e.Method, e.Path, e.Err)
		}
		if e.Message != "" {
			return fmt.Sprintf("%s %s 请求失败，状态码: %d, message: %s", e.Method, e.Path, e.HTTPStatus, e.Message)
		}
		return fmt.Sprintf("%s %s 请求失败，状态码: %d", e.Method, e.Path, e.HTTPStatus)
	}
}

// Unwrap 返回底层错误
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 可以用通用的错误判断状态码
func (e *APIError) Is(target error) bool {
	status := e.HTTPStatus
	if e.Kind == ErrKindEnvelope && (status == 0 || status == http.StatusOK) {
		// 部分接口在信封里返回HTTP风格的错误码
		status = e.Code
	}
	switch target {
	case ErrUnauthorized:
		return status == http.StatusUnauthorized
	case ErrForbidden:
		return status == http.StatusForbidden
	case ErrNotFound:
		return status == http.StatusNotFound
	case ErrBadRequest:
		return status == http.StatusBadRequest
	}
	return false
}

// UserMessage 给用户看的一行错误提示
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch {
	case e.HTTPStatus == http.StatusUnauthorized:
		return ErrUnauthorized.Error()
	case e.HTTPStatus == http.StatusForbidden:
		return ErrForbidden.Error()
	case e.HTTPStatus == http.StatusNotFound:
		return ErrNotFound.Error()
	case e.HTTPStatus >= 500:
		return "服务器错误，请稍后重试"
	case e.HTTPStatus == 0:
		return "网络错误，请检查网络连接"
	}
	return fmt.Sprintf("请求失败，状态码: %d", e.HTTPStatus)
}

// AsAPIError 判断是否是接口错误
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError 本地校验失败，不会发送请求
type ValidationError struct {
	Field   string // 字段
	Message string // 提示信息
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors 多个校验错误
type ValidationErrors []*ValidationError

// Error 实现error接口
func (errs ValidationErrors) Error() string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

// Field 获取某个字段的第一条错误
func (errs ValidationErrors) Field(field string) *ValidationError {
	for _, e := range errs {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// NewValidationError 创建单个字段的校验错误
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// IsValidation 是否是本地校验错误
func IsValidation(err error) bool {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// ErrorMessage 把任意错误转换成一行提示
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.UserMessage()
	}
	return err.Error()
}
