package config

import (
	"strconv"
)

// redis Redis配置结构体，会话存储为redis时使用
type redis struct {
	Host     string `mapstructure:"host"`      // Redis服务器地址
	Port     int    `mapstructure:"port"`      // Redis服务器端口
	Password string `mapstructure:"password"`  // Redis密码
	DB       int    `mapstructure:"db"`        // Redis数据库编号
	PoolSize int    `mapstructure:"pool_size"` // 连接池大小
}

// GetAddr 获取Redis连接地址
func (r *redis) GetAddr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// Redis 全局Redis配置实例
var Redis *redis

// parseRedis 解析Redis配置
func parseRedis() {
	Redis = &redis{
		Host:     GetDefaultEnv("APPROVAL_REDIS_HOST", "127.0.0.1"),
		Port:     getDefaultInt("APPROVAL_REDIS_PORT", 6379),
		Password: GetDefaultEnv("APPROVAL_REDIS_PASSWORD", ""),
		DB:       getDefaultInt("APPROVAL_REDIS_DB", 0),
		PoolSize: getDefaultInt("APPROVAL_REDIS_POOL_SIZE", 2),
	}
}
