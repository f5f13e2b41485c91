package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "APPROVAL"

// GetDefaultEnv 获取环境变量，若不存在则返回默认值
// key: 环境变量名
// value: 默认值
// return: 环境变量值
func GetDefaultEnv(key, value string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return value
	}
	return os.ExpandEnv(val)
}

// getDefaultInt 获取整数类型的环境变量，解析失败时返回默认值
func getDefaultInt(key string, value int) int {
	v, err := strconv.Atoi(GetDefaultEnv(key, strconv.Itoa(value)))
	if err != nil {
		return value
	}
	return v
}

// getDefaultBool 获取布尔类型的环境变量
func getDefaultBool(key string, value bool) bool {
	v, err := strconv.ParseBool(GetDefaultEnv(key, strconv.FormatBool(value)))
	if err != nil {
		return value
	}
	return v
}

// getDefaultDuration 获取时间间隔类型的环境变量，例如 30s
func getDefaultDuration(key string, value time.Duration) time.Duration {
	v, err := time.ParseDuration(GetDefaultEnv(key, value.String()))
	if err != nil || v <= 0 {
		return value
	}
	return v
}

// HomeDir 客户端的配置目录，默认 $HOME/.approvalctl
func HomeDir() string {
	if dir, ok := os.LookupEnv(EnvPrefix + "_HOME"); ok && dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".approvalctl"
	}
	return filepath.Join(home, ".approvalctl")
}

// loadDotEnv 加载当前目录下的 .env 文件，不存在时忽略
func loadDotEnv() {
	_ = godotenv.Load()
}

func init() {
	loadDotEnv()
	parseAll()
}

// parseAll 从环境变量解析全部配置
func parseAll() {
	parseServer()
	parseLog()
	parseSession()
	parseRedis()
	parseNotify()
	parseOutput()
}
