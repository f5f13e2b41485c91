package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultEnv(t *testing.T) {
	t.Run("不存在时返回默认值", func(t *testing.T) {
		assert.Equal(t, "default", GetDefaultEnv("APPROVAL_TEST_NOT_EXIST", "default"))
	})

	t.Run("展开变量", func(t *testing.T) {
		t.Setenv("APPROVAL_TEST_BASE", "/tmp/approval")
		t.Setenv("APPROVAL_TEST_PATH", "${APPROVAL_TEST_BASE}/logs")
		assert.Equal(t, "/tmp/approval/logs", GetDefaultEnv("APPROVAL_TEST_PATH", ""))
	})

	t.Run("数字解析失败时返回默认值", func(t *testing.T) {
		t.Setenv("APPROVAL_TEST_INT", "abc")
		assert.Equal(t, 10, getDefaultInt("APPROVAL_TEST_INT", 10))
	})
}

func TestParseFromEnv(t *testing.T) {
	t.Setenv("APPROVAL_SERVER_API_URL", "http://example.com/api/")
	t.Setenv("APPROVAL_SERVER_TIMEOUT", "5s")
	t.Setenv("APPROVAL_NOTIFY_INTERVAL", "10s")
	t.Setenv("APPROVAL_SESSION_BACKEND", "memory")
	defer parseAll()

	parseAll()
	assert.Equal(t, "http://example.com/api", Server.Address())
	assert.Equal(t, 5*time.Second, Server.Timeout)
	assert.Equal(t, 10*time.Second, Notify.Interval)
	assert.Equal(t, SessionBackendMemory, Session.Backend)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPROVAL_HOME", dir)
	parseAll()
	defer parseAll()

	t.Run("没有配置文件", func(t *testing.T) {
		require.NoError(t, Load(""))
		assert.Equal(t, filepath.Join(dir, "session.json"), Session.FilePath)
	})

	t.Run("配置文件覆盖默认值", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		content := "server:\n  api_url: http://10.0.0.1/api\n  timeout: 3s\nredis:\n  port: 6380\noutput:\n  format: json\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		require.NoError(t, Load(path))
		assert.Equal(t, "http://10.0.0.1/api", Server.ApiUrl)
		assert.Equal(t, 3*time.Second, Server.Timeout)
		assert.Equal(t, "127.0.0.1:6380", Redis.GetAddr())
		assert.Equal(t, "json", Output.Format)
	})

	t.Run("环境变量优先", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		t.Setenv("APPROVAL_OUTPUT_FORMAT", "yaml")
		require.NoError(t, Load(path))
		assert.Equal(t, "yaml", Output.Format)
	})

	t.Run("指定的配置文件不存在", func(t *testing.T) {
		assert.Error(t, Load(filepath.Join(dir, "missing.yaml")))
	})
}
