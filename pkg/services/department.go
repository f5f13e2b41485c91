package services

import (
	"context"
	"fmt"

	"github.com/codelieche/approval/pkg/core"
)

// departmentService 部门接口实现
type departmentService struct {
	transport *Transport
}

// NewDepartmentService 创建部门服务
func NewDepartmentService(transport *Transport) core.DepartmentService {
	return &departmentService{transport: transport}
}

// Tree 部门树
func (s *departmentService) Tree(ctx context.Context) ([]*core.DepartmentTree, error) {
	var tree []*core.DepartmentTree
	if err := s.transport.Get(ctx, "/departments/tree", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// List 全部部门(平铺)
func (s *departmentService) List(ctx context.Context) ([]*core.Department, error) {
	var list []*core.Department
	if err := s.transport.Get(ctx, "/departments", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get 部门详情
func (s *departmentService) Get(ctx context.Context, id int64) (*core.Department, error) {
	var department core.Department
	if err := s.transport.Get(ctx, fmt.Sprintf("/departments/%d", id), nil, &department); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create 创建部门
func (s *departmentService) Create(ctx context.Context, req *core.DepartmentRequest) (*core.Department, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	var department core.Department
	if err := s.transport.Post(ctx, "/departments", req, &department); err != nil {
		return nil, err
	}
	return &department, nil
}

// Update 更新部门
func (s *departmentService) Update(ctx context.Context, id int64, req *core.DepartmentRequest) (*core.Department, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.ParentID == id {
		return nil, core.NewValidationError("parentId", "上级部门不能是自己")
	}
	var department core.Department
	if err := s.transport.Put(ctx, fmt.Sprintf("/departments/%d", id), req, &department); err != nil {
		return nil, err
	}
	return &department, nil
}

// Delete 删除部门
func (s *departmentService) Delete(ctx context.Context, id int64) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/departments/%d", id), nil)
}

var _ core.DepartmentService = (*departmentService)(nil)

// positionService 职位接口实现
type positionService struct {
	transport *Transport
}

// NewPositionService 创建职位服务
func NewPositionService(transport *Transport) core.PositionService {
	return &positionService{transport: transport}
}

// List 全部职位
func (s *positionService) List(ctx context.Context) ([]*core.Position, error) {
	var list []*core.Position
	if err := s.transport.Get(ctx, "/v1/positions", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

var _ core.PositionService = (*positionService)(nil)
