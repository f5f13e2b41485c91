package core

import (
	"context"

	"github.com/codelieche/approval/pkg/utils/types"
)

// Department 部门
type Department struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	ParentID  int64           `json:"parentId"` // 0 表示顶级部门
	LeaderID  *int64          `json:"leaderId,omitempty"`
	SortOrder int             `json:"sortOrder"`
	Status    int             `json:"status"`
	CreatedAt *types.DateTime `json:"createdAt,omitempty"`
	UpdatedAt *types.DateTime `json:"updatedAt,omitempty"`
}

// DepartmentTree 部门树节点
type DepartmentTree struct {
	Department
	LeaderName string            `json:"leaderName,omitempty"`
	Children   []*DepartmentTree `json:"children"`
}

// DepartmentRequest 创建/更新部门
type DepartmentRequest struct {
	Name      string `json:"name" label:"部门名称" validate:"notblank,max=100"`
	ParentID  int64  `json:"parentId" label:"上级部门" validate:"gte=0"`
	LeaderID  *int64 `json:"leaderId,omitempty"`
	SortOrder int    `json:"sortOrder"`
	Status    int    `json:"status" label:"状态" validate:"oneof=0 1"`
}

// DepartmentService 部门接口
type DepartmentService interface {
	Tree(ctx context.Context) ([]*DepartmentTree, error)
	List(ctx context.Context) ([]*Department, error)
	Get(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, req *DepartmentRequest) (*Department, error)
	Update(ctx context.Context, id int64, req *DepartmentRequest) (*Department, error)
	Delete(ctx context.Context, id int64) error
}

// Position 职位
type Position struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Level       *int   `json:"level,omitempty"`
	Status      int    `json:"status"`
	SortOrder   *int   `json:"sortOrder,omitempty"`
}

// PositionService 职位接口
type PositionService interface {
	List(ctx context.Context) ([]*Position, error)
}
