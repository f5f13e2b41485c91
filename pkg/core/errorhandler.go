package core

import (
	"context"
	"fmt"
	"io"

	"github.com/codelieche/approval/pkg/utils/logger"
	"go.uber.org/zap"
)

// ErrorLevel 错误级别
type ErrorLevel int

const (
	LevelInfo ErrorLevel = iota
	LevelWarn
	LevelError
	LevelFatal
)

// String 返回错误级别的字符串表示
func (s ErrorLevel) String() string {
	switch s {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrorContext 错误上下文信息
type ErrorContext struct {
	TargetID  string                 `json:"target_id,omitempty"` // 操作对象ID，比如审批ID
	Component string                 `json:"component"`           // 组件名称
	Action    string                 `json:"action"`              // 执行的动作
	Level     ErrorLevel             `json:"level"`               // 错误级别
	Extra     map[string]interface{} `json:"extra,omitempty"`     // 额外信息
}

// ErrorHandler 统一错误处理接口
//
// 命令执行失败时：
// 1. 按统一格式记录日志
// 2. 输出一行提示给用户，不做任何重试
type ErrorHandler interface {
	// HandleError 处理操作错误，返回给用户看的提示
	HandleError(ctx context.Context, err error, context ErrorContext) string

	// HandleRecoverableError 处理可恢复错误，只记录警告日志
	// 比如轮询未读数失败，下一轮会继续
	HandleRecoverableError(ctx context.Context, err error, context ErrorContext)
}

// errorHandlerImpl 错误处理器实现
type errorHandlerImpl struct {
	out io.Writer // 提示输出，通常是stderr
}

// NewErrorHandler 创建错误处理器实例
//
// 参数:
//   - out: 提示信息的输出位置，为nil时只记录日志
//
// 返回值:
//   - ErrorHandler: 错误处理器接口
func NewErrorHandler(out io.Writer) ErrorHandler {
	return &errorHandlerImpl{out: out}
}

// buildFields 构建日志字段
func buildFields(err error, context ErrorContext) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("component", context.Component),
		zap.String("action", context.Action),
		zap.String("level", context.Level.String()),
	}

	if context.TargetID != "" {
		fields = append(fields, zap.String("target_id", context.TargetID))
	}

	if apiErr, ok := AsAPIError(err); ok {
		fields = append(fields,
			zap.String("kind", apiErr.Kind.String()),
			zap.String("path", apiErr.Path),
			zap.Int("http_status", apiErr.HTTPStatus),
			zap.Int("code", apiErr.Code))
	}

	// 添加额外字段
	for key, value := range context.Extra {
		fields = append(fields, zap.Any(key, value))
	}
	return fields
}

// HandleError 处理操作错误
func (e *errorHandlerImpl) HandleError(ctx context.Context, err error, context ErrorContext) string {
	if err == nil {
		return ""
	}
	fields := buildFields(err, context)

	// 本地校验失败不是系统问题，降为info
	level := context.Level
	if IsValidation(err) {
		level = LevelInfo
	}

	switch level {
	case LevelInfo:
		logger.Info("操作未完成", fields...)
	case LevelWarn:
		logger.Warn("操作警告", fields...)
	case LevelError:
		logger.Error("操作失败", fields...)
	case LevelFatal:
		logger.Error("操作致命错误", fields...)
	}

	message := ErrorMessage(err)
	if context.Action != "" {
		message = fmt.Sprintf("%s失败: %s", context.Action, message)
	}
	if e.out != nil {
		fmt.Fprintln(e.out, message)
	}
	return message
}

// HandleRecoverableError 处理可恢复错误
func (e *errorHandlerImpl) HandleRecoverableError(ctx context.Context, err error, context ErrorContext) {
	if err == nil {
		return
	}
	logger.Warn("可恢复错误", buildFields(err, context)...)
}
