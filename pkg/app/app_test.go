package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/render"
	"github.com/codelieche/approval/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closingStore 记录是否被关闭
type closingStore struct {
	*session.MemoryStore
	closed bool
}

func (s *closingStore) Close() error {
	s.closed = true
	return nil
}

func setupEnv(t *testing.T) {
	t.Setenv("APPROVAL_HOME", t.TempDir())
	t.Setenv("APPROVAL_LOG_OUTPUT", "none")
	t.Setenv("APPROVAL_OUTPUT_FORMAT", "yaml")
	t.Setenv("APPROVAL_NOTIFY_INTERVAL", "5s")
}

func TestInitialize(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	t.Run("使用配置的输出格式", func(t *testing.T) {
		a := NewApp(Options{Store: session.NewMemoryStore(), Out: &bytes.Buffer{}})
		require.NoError(t, a.Initialize(ctx))
		assert.Equal(t, render.FormatYAML, a.Printer.Format())
		assert.NotNil(t, a.Services)
		assert.False(t, a.Session.LoggedIn())
		assert.Equal(t, 5*time.Second, a.NewPoller(nil).Interval())
	})

	t.Run("命令行参数优先", func(t *testing.T) {
		a := NewApp(Options{Store: session.NewMemoryStore(), Output: "json"})
		require.NoError(t, a.Initialize(ctx))
		assert.Equal(t, render.FormatJSON, a.Printer.Format())
	})

	t.Run("无效的输出格式", func(t *testing.T) {
		a := NewApp(Options{Store: session.NewMemoryStore(), Output: "xml"})
		assert.Error(t, a.Initialize(ctx))
	})

	t.Run("恢复已保存的会话", func(t *testing.T) {
		store := session.NewMemoryStore()
		state := &session.State{Token: "token-2", User: &core.AuthUser{ID: 2, Username: "alice"}, SidebarOpen: false}
		require.NoError(t, store.Save(ctx, state, 0))

		a := NewApp(Options{Store: store})
		require.NoError(t, a.Initialize(ctx))
		assert.True(t, a.Session.LoggedIn())
		assert.False(t, a.Session.SidebarOpen())
	})
}

func TestHandleError(t *testing.T) {
	setupEnv(t)

	var errOut bytes.Buffer
	a := NewApp(Options{Store: session.NewMemoryStore(), ErrOut: &errOut})
	require.NoError(t, a.Initialize(context.Background()))

	message := a.HandleError(context.Background(), core.ErrNotLoggedIn, "cli", "获取通知")
	assert.Contains(t, message, "获取通知失败")
	assert.Contains(t, errOut.String(), message)
	assert.Empty(t, a.HandleError(context.Background(), nil, "cli", "获取通知"))
}

func TestShutdown(t *testing.T) {
	setupEnv(t)

	t.Run("关闭会话存储并输出指标", func(t *testing.T) {
		var errOut bytes.Buffer
		store := &closingStore{MemoryStore: session.NewMemoryStore()}
		a := NewApp(Options{Store: store, ErrOut: &errOut, MetricsDump: true})
		require.NoError(t, a.Initialize(context.Background()))

		a.Shutdown()
		assert.True(t, store.closed)
	})

	t.Run("未初始化时什么都不做", func(t *testing.T) {
		store := &closingStore{MemoryStore: session.NewMemoryStore()}
		NewApp(Options{Store: store}).Shutdown()
		assert.False(t, store.closed)
	})
}
