package core

import (
	"context"
	"unicode/utf8"

	"github.com/codelieche/approval/pkg/utils/types"
)

// 管理员角色编码
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// AdminRoles 可以访问管理功能的角色
var AdminRoles = []string{RoleAdmin, RoleSuperAdmin}

// RoleInfo 角色
type RoleInfo struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User 用户
type User struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Nickname       string          `json:"nickname"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	DepartmentID   *int64          `json:"departmentId,omitempty"`
	DepartmentName string          `json:"departmentName,omitempty"`
	Roles          []*RoleInfo     `json:"roles"`
	Status         int             `json:"status"` // 0-禁用 1-启用
	Avatar         string          `json:"avatar,omitempty"`
	LastLoginAt    *types.DateTime `json:"lastLoginAt,omitempty"`
	CreatedAt      *types.DateTime `json:"createdAt,omitempty"`
}

// RoleCodes 用户的角色编码
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return codes
}

// AuthUser 登录后保存在会话里的用户快照
type AuthUser struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Nickname     string   `json:"nickname"`
	Email        string   `json:"email,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	DepartmentID *int64   `json:"departmentId,omitempty"`
	Roles        []string `json:"roles"` // 角色编码
}

// DisplayName 显示名称，优先昵称
func (u *AuthUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// HasAnyRole 是否拥有任意一个角色
func (u *AuthUser) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsAdmin 是否是管理员
func (u *AuthUser) IsAdmin() bool {
	return u.HasAnyRole(AdminRoles...)
}

// LoginRequest 登录
type LoginRequest struct {
	Username string `json:"username" label:"用户名" validate:"required"`
	Password string `json:"password" label:"密码" validate:"required"`
}

// LoginResponse 登录返回
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	User      *AuthUser `json:"user"`
}

// RegisterRequest 注册
type RegisterRequest struct {
	Username        string `json:"username" label:"用户名" validate:"required,min=2"`
	Password        string `json:"password" label:"密码" validate:"required,min=6"`
	ConfirmPassword string `json:"-" label:"确认密码" validate:"eqfield=Password"`
	Nickname        string `json:"nickname"`
	Email           string `json:"email" label:"邮箱" validate:"required,email"`
}

// UserRequest 创建/更新用户
//
// 创建时密码必填，更新时为空表示不修改。
type UserRequest struct {
	Username     string  `json:"username" label:"用户名" validate:"min=3,max=50"`
	Password     string  `json:"password,omitempty"`
	Nickname     string  `json:"nickname" label:"昵称" validate:"min=1,max=50"`
	Email        string  `json:"email,omitempty" label:"邮箱" validate:"omitempty,email"`
	Phone        string  `json:"phone,omitempty" label:"手机号" validate:"max=20"`
	Avatar       string  `json:"avatar,omitempty"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
	RoleIDs      []int64 `json:"roleIds,omitempty"`
	Status       *int    `json:"status,omitempty" label:"状态" validate:"omitempty,oneof=0 1"`
}

// Validate 校验用户表单
func (r *UserRequest) Validate(isEdit bool) error {
	if err := ValidateStruct(r); err != nil {
		return err
	}
	length := utf8.RuneCountInString(r.Password)
	if isEdit && length == 0 {
		return nil
	}
	if length < 6 || length > 50 {
		return NewValidationError("password", "密码长度应在6-50个字符之间")
	}
	return nil
}

// ChangePasswordRequest 修改当前用户密码
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" label:"原密码" validate:"required"`
	NewPassword     string `json:"newPassword" label:"新密码" validate:"min=6,max=50"`
	ConfirmPassword string `json:"-" label:"确认密码" validate:"eqfield=NewPassword"`
}

// UserQuery 用户列表查询
type UserQuery struct {
	types.Pagination
	Keyword      string
	DepartmentID *int64
	Status       *int
}

// AuthService 认证接口
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) error
}

// UserService 用户接口
type UserService interface {
	List(ctx context.Context, query *UserQuery) (*types.PageResult[*User], error)
	All(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, req *UserRequest) (*User, error)
	Update(ctx context.Context, id int64, req *UserRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status int) error
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) error
}

// RoleService 角色接口
type RoleService interface {
	List(ctx context.Context) ([]*RoleInfo, error)
}
