// Package session 登录会话
//
// Manager 保存当前登录的用户、token 和侧边栏开关，启动时从存储中恢复，登出时清空。
// 由 app.App 创建一次后传给各个命令，不使用包级别的全局变量。
package session

import (
	"context"
	"sync"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Manager 会话管理
type Manager struct {
	mu    sync.RWMutex
	store Store
	state State
	now   func() time.Time
}

// NewManager 创建会话管理，侧边栏默认展开
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		state: State{SidebarOpen: true},
		now:   time.Now,
	}
}

// TokenExpiry 从JWT中读取过期时间
//
// 只解析不校验签名，签名由服务端校验。不是JWT或没有exp时返回 false。
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// expired token是否已经过期，调用方持有锁
func (m *Manager) expired(token string) bool {
	expiry, ok := TokenExpiry(token)
	return ok && !m.now().Before(expiry)
}

// ttl 保存时的过期时间，调用方持有锁
func (m *Manager) ttl() time.Duration {
	if m.state.Token == "" {
		return 0
	}
	expiry, ok := TokenExpiry(m.state.Token)
	if !ok {
		return 0
	}
	return expiry.Sub(m.now())
}

// Init 从存储中恢复会话，token已过期时丢弃
func (m *Manager) Init(ctx context.Context) error {
	saved, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if saved == nil {
		return nil
	}
	m.state = *saved
	if m.state.Token != "" && m.expired(m.state.Token) {
		logger.Info("登录已过期，清除本地会话")
		m.state = State{SidebarOpen: saved.SidebarOpen}
		return m.store.Clear(ctx)
	}
	return nil
}

// Login 保存登录结果
func (m *Manager) Login(ctx context.Context, resp *core.LoginResponse) error {
	if resp == nil || resp.Token == "" || resp.User == nil {
		return core.ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Token = resp.Token
	m.state.User = resp.User
	logger.Info("登录成功", zap.String("username", resp.User.Username))
	return m.store.Save(ctx, &m.state, m.ttl())
}

// SetUser 更新当前用户信息，例如修改资料后
func (m *Manager) SetUser(ctx context.Context, user *core.AuthUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Token == "" {
		return core.ErrNotLoggedIn
	}
	m.state.User = user
	return m.store.Save(ctx, &m.state, m.ttl())
}

// Logout 清空内存和存储中的会话
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{SidebarOpen: true}
	return m.store.Clear(ctx)
}

// Token 当前token，实现 services.TokenSource
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// User 当前用户，未登录时返回nil
func (m *Manager) User() *core.AuthUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User
}

// LoggedIn 是否已登录
func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token != "" && m.state.User != nil
}

// RequireUser 当前用户，未登录时返回 ErrNotLoggedIn
func (m *Manager) RequireUser() (*core.AuthUser, error) {
	if !m.LoggedIn() {
		return nil, core.ErrNotLoggedIn
	}
	return m.User(), nil
}

// RequireAdmin 当前用户必须是管理员
func (m *Manager) RequireAdmin() (*core.AuthUser, error) {
	user, err := m.RequireUser()
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, core.ErrForbidden
	}
	return user, nil
}

// SidebarOpen 侧边栏是否展开
func (m *Manager) SidebarOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.SidebarOpen
}

// ToggleSidebar 切换侧边栏
func (m *Manager) ToggleSidebar(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SidebarOpen = !m.state.SidebarOpen
	return m.state.SidebarOpen, m.store.Save(ctx, &m.state, m.ttl())
}

// SetSidebar 设置侧边栏
func (m *Manager) SetSidebar(ctx context.Context, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SidebarOpen = open
	return m.store.Save(ctx, &m.state, m.ttl())
}
