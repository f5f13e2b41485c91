package config

import (
	"path/filepath"
	"time"
)

// 会话存储方式
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// SessionRedisKeyFormat 会话在redis中的key
const SessionRedisKeyFormat = "approval:session:%s"

// session 会话配置
type session struct {
	Backend  string `mapstructure:"backend"`   // file/redis/memory
	FilePath string `mapstructure:"file_path"` // 文件存储路径
	Secret   string `mapstructure:"secret"`    // 加密token的密钥
	Profile  string `mapstructure:"profile"`   // 多账号时区分会话
}

var Session *session

// parseSession 解析会话配置
func parseSession() {
	Session = &session{
		Backend:  GetDefaultEnv("APPROVAL_SESSION_BACKEND", SessionBackendFile),
		FilePath: GetDefaultEnv("APPROVAL_SESSION_FILE_PATH", filepath.Join(HomeDir(), "session.json")),
		Secret:   GetDefaultEnv("APPROVAL_SESSION_SECRET", "approvalctl"),
		Profile:  GetDefaultEnv("APPROVAL_SESSION_PROFILE", "default"),
	}
}

// notify 未读通知轮询配置
type notify struct {
	Interval time.Duration `mapstructure:"interval"` // 轮询间隔
}

var Notify *notify

// parseNotify 解析通知配置
func parseNotify() {
	Notify = &notify{
		Interval: getDefaultDuration("APPROVAL_NOTIFY_INTERVAL", 30*time.Second),
	}
}

// output 命令输出配置
type output struct {
	Format string `mapstructure:"format"` // table/json/yaml
}

var Output *output

// parseOutput 解析输出配置
func parseOutput() {
	Output = &output{
		Format: GetDefaultEnv("APPROVAL_OUTPUT_FORMAT", "table"),
	}
}
