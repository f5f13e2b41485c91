package config

import "path/filepath"

type log struct {
	Level      string `mapstructure:"level"`       // 日志级别
	Format     string `mapstructure:"format"`      // 日志格式
	Output     string `mapstructure:"output"`      // 日志输出: console/file/both
	FilePath   string `mapstructure:"file_path"`   // 日志文件路径
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件最大大小(MB)
	MaxAge     int    `mapstructure:"max_age"`     // 日志文件最大保留天数
	MaxBackups int    `mapstructure:"max_backups"` // 日志文件最大备份数
	Compress   bool   `mapstructure:"compress"`    // 日志文件是否压缩
}

var Log *log

// parseLog 解析日志配置
//
// 命令行的标准输出留给命令结果，所以默认只写文件
func parseLog() {
	Log = &log{
		Level:      GetDefaultEnv("APPROVAL_LOG_LEVEL", "info"),
		Format:     GetDefaultEnv("APPROVAL_LOG_FORMAT", "json"),
		Output:     GetDefaultEnv("APPROVAL_LOG_OUTPUT", "file"),
		FilePath:   GetDefaultEnv("APPROVAL_LOG_FILE_PATH", filepath.Join(HomeDir(), "logs", "approvalctl.log")),
		MaxSize:    getDefaultInt("APPROVAL_LOG_MAX_SIZE", 20),
		MaxAge:     getDefaultInt("APPROVAL_LOG_MAX_AGE", 7),
		MaxBackups: getDefaultInt("APPROVAL_LOG_MAX_BACKUPS", 3),
		Compress:   getDefaultBool("APPROVAL_LOG_COMPRESS", false),
	}
}
