package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
)

// authService 认证接口实现
type authService struct {
	transport *Transport
}

// NewAuthService 创建认证服务
func NewAuthService(transport *Transport) core.AuthService {
	return &authService{transport: transport}
}

// Login 登录
func (s *authService) Login(ctx context.Context, req *core.LoginRequest) (*core.LoginResponse, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	var resp core.LoginResponse
	if err := s.transport.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("登录返回数据不完整")
	}
	return &resp, nil
}

// Register 注册，昵称默认使用用户名
func (s *authService) Register(ctx context.Context, req *core.RegisterRequest) error {
	if err := core.ValidateStruct(req); err != nil {
		return err
	}
	if req.Nickname == "" {
		req.Nickname = req.Username
	}
	return s.transport.Post(ctx, "/auth/register", req, nil)
}

var _ core.AuthService = (*authService)(nil)

// userService 用户接口实现
type userService struct {
	transport *Transport
}

// NewUserService 创建用户服务
func NewUserService(transport *Transport) core.UserService {
	return &userService{transport: transport}
}

// List 用户分页列表
func (s *userService) List(ctx context.Context, query *core.UserQuery) (*types.PageResult[*core.User], error) {
	if query == nil {
		query = &core.UserQuery{}
	}
	values := paginationQuery(query.Pagination)
	if query.Keyword != "" {
		values.Set("keyword", query.Keyword)
	}
	if query.DepartmentID != nil {
		values.Set("departmentId", strconv.FormatInt(*query.DepartmentID, 10))
	}
	if query.Status != nil {
		values.Set("status", strconv.Itoa(*query.Status))
	}

	var page types.PageResult[*core.User]
	if err := s.transport.Get(ctx, "/users", values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// All 全部用户，选择审批人时使用
func (s *userService) All(ctx context.Context) ([]*core.User, error) {
	var users []*core.User
	if err := s.transport.Get(ctx, "/users/all", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get 用户详情
func (s *userService) Get(ctx context.Context, id int64) (*core.User, error) {
	var user core.User
	if err := s.transport.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (s *userService) Create(ctx context.Context, req *core.UserRequest) (*core.User, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	var user core.User
	if err := s.transport.Post(ctx, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 更新用户，密码为空时不修改
func (s *userService) Update(ctx context.Context, id int64, req *core.UserRequest) (*core.User, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	var user core.User
	if err := s.transport.Put(ctx, fmt.Sprintf("/users/%d", id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete 删除用户
func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/users/%d", id), nil)
}

// UpdateStatus 启用/禁用用户
func (s *userService) UpdateStatus(ctx context.Context, id int64, status int) error {
	if status != 0 && status != 1 {
		return core.NewValidationError("status", "状态只能是0或1")
	}
	body := map[string]int{"status": status}
	return s.transport.Put(ctx, fmt.Sprintf("/users/%d/status", id), body, nil)
}

// ChangePassword 修改当前用户的密码
func (s *userService) ChangePassword(ctx context.Context, req *core.ChangePasswordRequest) error {
	if err := core.ValidateStruct(req); err != nil {
		return err
	}
	return s.transport.Put(ctx, "/users/password", req, nil)
}

var _ core.UserService = (*userService)(nil)

// roleService 角色接口实现
type roleService struct {
	transport *Transport
}

// NewRoleService 创建角色服务
func NewRoleService(transport *Transport) core.RoleService {
	return &roleService{transport: transport}
}

// List 全部角色
func (s *roleService) List(ctx context.Context) ([]*core.RoleInfo, error) {
	var roles []*core.RoleInfo
	if err := s.transport.Get(ctx, "/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

var _ core.RoleService = (*roleService)(nil)
