package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codelieche/approval/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 全局日志器
var (
	logger *zap.Logger
	level  = zap.NewAtomicLevel()
	once   sync.Once
)

// 创建文件日志写入器，目录无法创建时返回nil
func createFileSyncer() zapcore.WriteSyncer {
	logConfig := config.Log

	// 确保日志目录存在
	logDir := filepath.Dir(logConfig.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败: %v\n", err)
		return nil
	}

	// 使用 lumberjack 进行日志文件滚动
	writer := &lumberjack.Logger{
		Filename:   logConfig.FilePath,
		MaxSize:    logConfig.MaxSize,
		MaxAge:     logConfig.MaxAge,
		MaxBackups: logConfig.MaxBackups,
		Compress:   logConfig.Compress,
	}
	return zapcore.AddSync(writer)
}

// 创建写入器
//
// 标准输出留给命令结果，控制台日志写到stderr
func createWriteSyncer(output string) zapcore.WriteSyncer {
	consoleSyncer := zapcore.Lock(zapcore.AddSync(os.Stderr))

	switch output {
	case "all", "both":
		if fileSyncer := createFileSyncer(); fileSyncer != nil {
			return zapcore.NewMultiWriteSyncer(consoleSyncer, fileSyncer)
		}
		return consoleSyncer
	case "file":
		if fileSyncer := createFileSyncer(); fileSyncer != nil {
			return fileSyncer
		}
		return consoleSyncer
	case "none", "discard":
		return zapcore.AddSync(discard{})
	default:
		return consoleSyncer
	}
}

// discard 丢弃所有日志
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// InitLogger 初始化日志，只会执行一次
func InitLogger() {
	once.Do(func() {
		logConfig := config.Log

		// 设置日志级别
		setLogLevel(logConfig.Level)

		// 创建编码器
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.LevelKey = "level"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.CallerKey = "caller"
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.MessageKey = "msg"
		encoderConfig.StacktraceKey = "stacktrace"
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

		// 根据格式选择编码器
		var encoder zapcore.Encoder
		if logConfig.Format == "json" {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}

		core := zapcore.NewCore(encoder, createWriteSyncer(logConfig.Output), level)

		logger = zap.New(
			core,
			zap.AddCaller(),
			zap.AddCallerSkip(1),
			zap.AddStacktrace(zapcore.FatalLevel),
		)

		// 替换全局日志
		zap.ReplaceGlobals(logger)
	})
}

// 设置日志级别
func setLogLevel(levelStr string) {
	var zapLevel zapcore.Level

	switch strings.ToLower(levelStr) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	case "fatal":
		zapLevel = zapcore.FatalLevel
	default:
		zapLevel = zapcore.InfoLevel
		fmt.Fprintf(os.Stderr, "无效的日志级别: %s, 使用默认级别 info\n", levelStr)
	}

	level.SetLevel(zapLevel)
}

// GetLevel 获取当前日志级别
func GetLevel() string {
	return level.String()
}

// SetLevel 设置日志级别
func SetLevel(levelStr string) {
	setLogLevel(levelStr)
}


// Debug 级别日志
func Debug(msg string, fields ...zap.Field) {
	InitLogger()
	logger.Debug(msg, fields...)
}

// Info 级别日志
func Info(msg string, fields ...zap.Field) {
	InitLogger()
	logger.Info(msg, fields...)
}

// Warn 级别日志
func Warn(msg string, fields ...zap.Field) {
	InitLogger()
	logger.Warn(msg, fields...)
}

// Error 级别日志
func Error(msg string, fields ...zap.Field) {
	InitLogger()
	logger.Error(msg, fields...)
}



// Sync 刷新日志缓存到磁盘
func Sync() error {
	if logger != nil {
		return logger.Sync()
	}
	return nil
}
