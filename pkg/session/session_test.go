package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/codelieche/approval/pkg/core"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signToken 生成测试用的JWT
func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "2",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func loginResponse(token string) *core.LoginResponse {
	return &core.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      &core.AuthUser{ID: 2, Username: "alice", Nickname: "Alice", Roles: []string{"user"}},
	}
}

func TestTokenExpiry(t *testing.T) {
	t.Run("JWT读取exp", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		got, ok := TokenExpiry(signToken(t, exp))
		assert.True(t, ok)
		assert.True(t, exp.Equal(got))
	})

	t.Run("不是JWT", func(t *testing.T) {
		_, ok := TokenExpiry("token-2-abc")
		assert.False(t, ok)
	})
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("登录后恢复会话", func(t *testing.T) {
		store := NewMemoryStore()
		m := NewManager(store)
		require.NoError(t, m.Init(ctx))
		assert.False(t, m.LoggedIn())
		assert.True(t, m.SidebarOpen())

		token := signToken(t, time.Now().Add(time.Hour))
		require.NoError(t, m.Login(ctx, loginResponse(token)))
		assert.Equal(t, token, m.Token())

		restored := NewManager(store)
		require.NoError(t, restored.Init(ctx))
		assert.True(t, restored.LoggedIn())
		assert.Equal(t, "alice", restored.User().Username)
	})

	t.Run("过期token被丢弃", func(t *testing.T) {
		store := NewMemoryStore()
		token := signToken(t, time.Now().Add(-time.Minute))
		require.NoError(t, store.Save(ctx, &State{Token: token, User: loginResponse(token).User, SidebarOpen: false}, 0))

		m := NewManager(store)
		require.NoError(t, m.Init(ctx))
		assert.False(t, m.LoggedIn())
		assert.Empty(t, m.Token())
		assert.False(t, m.SidebarOpen())

		saved, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, saved)
	})

	t.Run("非JWT的token保留", func(t *testing.T) {
		m := NewManager(NewMemoryStore())
		require.NoError(t, m.Login(ctx, loginResponse("token-2-abc")))
		assert.True(t, m.LoggedIn())
	})

	t.Run("登出清空", func(t *testing.T) {
		store := NewMemoryStore()
		m := NewManager(store)
		require.NoError(t, m.Login(ctx, loginResponse("token-2-abc")))
		require.NoError(t, m.Logout(ctx))
		assert.False(t, m.LoggedIn())
		_, err := m.RequireUser()
		assert.ErrorIs(t, err, core.ErrNotLoggedIn)

		saved, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, saved)
	})

	t.Run("管理员检查", func(t *testing.T) {
		m := NewManager(NewMemoryStore())
		require.NoError(t, m.Login(ctx, loginResponse("token-2-abc")))
		_, err := m.RequireAdmin()
		assert.ErrorIs(t, err, core.ErrForbidden)

		resp := loginResponse("token-1-abc")
		resp.User.Roles = []string{"admin"}
		require.NoError(t, m.Login(ctx, resp))
		user, err := m.RequireAdmin()
		require.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
	})

	t.Run("侧边栏持久化", func(t *testing.T) {
		store := NewMemoryStore()
		m := NewManager(store)
		open, err := m.ToggleSidebar(ctx)
		require.NoError(t, err)
		assert.False(t, open)

		restored := NewManager(store)
		require.NoError(t, restored.Init(ctx))
		assert.False(t, restored.SidebarOpen())

		require.NoError(t, restored.SetSidebar(ctx, true))
		assert.True(t, restored.SidebarOpen())
	})

	t.Run("未登录不能更新用户", func(t *testing.T) {
		m := NewManager(NewMemoryStore())
		err := m.SetUser(ctx, &core.AuthUser{ID: 1})
		assert.ErrorIs(t, err, core.ErrNotLoggedIn)
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("token加密保存", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "session.json")
		store := NewFileStore(path, "secret")
		require.NoError(t, store.Save(ctx, &State{Token: "token-2-abc", SidebarOpen: true}, 0))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "token-2-abc")

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-2-abc", state.Token)
		assert.True(t, state.SidebarOpen)
	})

	t.Run("文件不存在", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "none.json"), "secret")
		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
		assert.NoError(t, store.Clear(ctx))
	})

	t.Run("过期后只保留侧边栏", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "session.json"), "secret")
		require.NoError(t, store.Save(ctx, &State{Token: "token-2-abc", SidebarOpen: false}, time.Minute))

		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.Token)
		assert.False(t, state.SidebarOpen)
	})

	t.Run("内容损坏", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
		_, err := NewFileStore(path, "secret").Load(ctx)
		assert.Error(t, err)
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	t.Run("按profile区分key", func(t *testing.T) {
		store := NewRedisStore(client, "work")
		assert.Equal(t, "approval:session:work", store.Key())
		assert.Equal(t, "approval:session:default", NewRedisStore(client, "").Key())
	})

	t.Run("过期时间与token一致", func(t *testing.T) {
		store := NewRedisStore(client, "alice")
		m := NewManager(store)
		token := signToken(t, time.Now().Add(time.Hour))
		require.NoError(t, m.Login(ctx, loginResponse(token)))

		assert.True(t, mr.Exists("approval:session:alice"))
		ttl := mr.TTL("approval:session:alice")
		assert.Greater(t, ttl, 59*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)

		mr.FastForward(2 * time.Hour)
		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("读取和清除", func(t *testing.T) {
		store := NewRedisStore(client, "bob")
		require.NoError(t, store.Save(ctx, &State{Token: "token-3-abc", SidebarOpen: true}, 0))

		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-3-abc", state.Token)

		require.NoError(t, store.Clear(ctx))
		state, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
	})
}
