package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codelieche/approval/pkg/config"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/codelieche/approval/pkg/utils/tools"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// State 会话状态
type State struct {
	Token       string         `json:"token"`
	User        *core.AuthUser `json:"user,omitempty"`
	SidebarOpen bool           `json:"sidebarOpen"`
}

// Store 会话的持久化
type Store interface {
	// Load 读取会话，不存在时返回 nil, nil
	Load(ctx context.Context) (*State, error)
	// Save 保存会话，ttl 为0表示不过期
	Save(ctx context.Context, state *State, ttl time.Duration) error
	// Clear 删除会话
	Clear(ctx context.Context) error
}

// NewStore 按配置创建会话存储
func NewStore() (Store, error) {
	switch config.Session.Backend {
	case config.SessionBackendFile, "":
		return NewFileStore(config.Session.FilePath, config.Session.Secret), nil
	case config.SessionBackendRedis:
		client, err := ConnectRedis()
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, config.Session.Profile), nil
	case config.SessionBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("不支持的会话存储方式: %s", config.Session.Backend)
	}
}

// FileStore 保存在本地文件，token加密保存
type FileStore struct {
	path   string
	crypto *tools.Cryptography
	now    func() time.Time
}

// fileState 文件中的内容
type fileState struct {
	Token       string         `json:"token"` // 加密后的token
	User        *core.AuthUser `json:"user,omitempty"`
	SidebarOpen bool           `json:"sidebarOpen"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
}

// NewFileStore 创建文件存储
func NewFileStore(path, secret string) *FileStore {
	return &FileStore{path: path, crypto: tools.NewCryptography(secret), now: time.Now}
}

// Path 文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 实现Store
func (s *FileStore) Load(ctx context.Context) (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取会话文件失败: %w", err)
	}

	var saved fileState
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("解析会话文件失败: %w", err)
	}
	if saved.ExpiresAt != nil && !s.now().Before(*saved.ExpiresAt) {
		logger.Debug("会话文件已过期", zap.String("path", s.path))
		return &State{SidebarOpen: saved.SidebarOpen}, nil
	}

	state := &State{User: saved.User, SidebarOpen: saved.SidebarOpen}
	if saved.Token != "" {
		ok, token := s.crypto.CheckCanDecrypt(saved.Token)
		if !ok {
			return nil, fmt.Errorf("会话文件中的token无法解密")
		}
		state.Token = token
	}
	return state, nil
}

// Save 实现Store
func (s *FileStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	saved := fileState{User: state.User, SidebarOpen: state.SidebarOpen}
	if state.Token != "" {
		encrypted, err := s.crypto.Encrypt(state.Token)
		if err != nil {
			return fmt.Errorf("加密token失败: %w", err)
		}
		saved.Token = encrypted
	}
	if ttl > 0 {
		expiresAt := s.now().Add(ttl)
		saved.ExpiresAt = &expiresAt
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}
	// 先写临时文件再改名，避免写到一半的文件
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("写入会话文件失败: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear 实现Store
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除会话文件失败: %w", err)
	}
	return nil
}

// ConnectRedis 按配置连接Redis
func ConnectRedis() (*redis.Client, error) {
	redisConfig := config.Redis

	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.GetAddr(), // Redis服务器地址
		Password: redisConfig.Password,  // Redis密码
		DB:       redisConfig.DB,        // Redis数据库编号
		PoolSize: redisConfig.PoolSize,  // 连接池大小
	})

	// 测试连接
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	logger.Debug("Redis连接成功", zap.String("address", redisConfig.GetAddr()))
	return client, nil
}

// RedisStore 保存在Redis，过期时间与token一致
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 创建Redis存储，profile 用于区分多个账号
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{client: client, key: fmt.Sprintf(config.SessionRedisKeyFormat, profile)}
}

// Key 会话的key
func (s *RedisStore) Key() string {
	return s.key
}

// Close 关闭Redis连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Load 实现Store
func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("解析会话失败: %w", err)
	}
	return &state, nil
}

// Save 实现Store
func (s *RedisStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// Clear 实现Store
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

// MemoryStore 内存存储，只在当前进程有效
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load 实现Store
func (s *MemoryStore) Load(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, nil
	}
	state := *s.state
	return &state, nil
}

// Save 实现Store
func (s *MemoryStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *state
	s.state = &saved
	return nil
}

// Clear 实现Store
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
