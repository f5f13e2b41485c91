package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// fileConfig 配置文件结构
type fileConfig struct {
	Server  server  `mapstructure:"server"`
	Log     log     `mapstructure:"log"`
	Session session `mapstructure:"session"`
	Redis   redis   `mapstructure:"redis"`
	Notify  notify  `mapstructure:"notify"`
	Output  output  `mapstructure:"output"`
}

// DefaultConfigFile 默认配置文件路径
func DefaultConfigFile() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// setDefaults 以环境变量解析出的值作为viper的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.api_url", Server.ApiUrl)
	v.SetDefault("server.timeout", Server.Timeout)

	v.SetDefault("log.level", Log.Level)
	v.SetDefault("log.format", Log.Format)
	v.SetDefault("log.output", Log.Output)
	v.SetDefault("log.file_path", Log.FilePath)
	v.SetDefault("log.max_size", Log.MaxSize)
	v.SetDefault("log.max_age", Log.MaxAge)
	v.SetDefault("log.max_backups", Log.MaxBackups)
	v.SetDefault("log.compress", Log.Compress)

	v.SetDefault("session.backend", Session.Backend)
	v.SetDefault("session.file_path", Session.FilePath)
	v.SetDefault("session.secret", Session.Secret)
	v.SetDefault("session.profile", Session.Profile)

	v.SetDefault("redis.host", Redis.Host)
	v.SetDefault("redis.port", Redis.Port)
	v.SetDefault("redis.password", Redis.Password)
	v.SetDefault("redis.db", Redis.DB)
	v.SetDefault("redis.pool_size", Redis.PoolSize)

	v.SetDefault("notify.interval", Notify.Interval)
	v.SetDefault("output.format", Output.Format)
}

// Load 读取YAML配置文件，覆盖环境变量中的配置
//
// 优先级：APPROVAL_ 前缀的环境变量 > 配置文件 > 默认值。
// configPath 为空时读取 $HOME/.approvalctl/config.yaml，文件不存在不报错。
func Load(configPath string) error {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		defaultPath := DefaultConfigFile()
		if _, err := os.Stat(defaultPath); err == nil {
			v.SetConfigFile(defaultPath)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("读取配置文件失败: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("检查配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}

	Server = &cfg.Server
	Log = &cfg.Log
	Session = &cfg.Session
	Redis = &cfg.Redis
	Notify = &cfg.Notify
	Output = &cfg.Output
	return nil
}
