package config

import (
	"strings"
	"time"
)

// server 配置
type server struct {
	ApiUrl  string        `mapstructure:"api_url"` // 服务ApiUrl，例如 http://127.0.0.1:8080/api
	Timeout time.Duration `mapstructure:"timeout"` // 单次请求超时时间
}

// Address 获取server服务的地址，去掉末尾的 /
func (s *server) Address() string {
	return strings.TrimRight(s.ApiUrl, "/")
}

var Server *server

// parseServer 解析server配置
func parseServer() {
	apiUrl := GetDefaultEnv("APPROVAL_SERVER_API_URL", "http://127.0.0.1:8080/api")
	timeout := getDefaultDuration("APPROVAL_SERVER_TIMEOUT", 30*time.Second)

	Server = &server{
		apiUrl,
		timeout,
	}
}
