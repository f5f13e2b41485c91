package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
)

// workflowService 工作流模板接口实现
type workflowService struct {
	transport *Transport
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(transport *Transport) core.WorkflowService {
	return &workflowService{transport: transport}
}

// List 工作流列表
func (s *workflowService) List(ctx context.Context, query *core.WorkflowQuery) (*types.PageResult[*core.Workflow], error) {
	if query == nil {
		query = &core.WorkflowQuery{}
	}
	values := paginationQuery(query.Pagination)
	if query.TypeCode != "" {
		values.Set("typeCode", query.TypeCode)
	}
	if query.Status != nil {
		values.Set("status", strconv.Itoa(*query.Status))
	}

	var page types.PageResult[*core.Workflow]
	if err := s.transport.Get(ctx, "/v1/workflows", values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get 工作流详情
func (s *workflowService) Get(ctx context.Context, id int64) (*core.Workflow, error) {
	var workflow core.Workflow
	if err := s.transport.Get(ctx, fmt.Sprintf("/v1/workflows/%d", id), nil, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

// GetByType 按审批类型获取工作流
func (s *workflowService) GetByType(ctx context.Context, typeCode string) (*core.Workflow, error) {
	var workflow *core.Workflow
	values := url.Values{}
	values.Set("typeCode", typeCode)
	if err := s.transport.Get(ctx, "/v1/workflows/by-type", values, &workflow); err != nil {
		return nil, err
	}
	return workflow, nil
}

// Create 创建工作流
func (s *workflowService) Create(ctx context.Context, req *core.CreateWorkflowRequest) (*core.Workflow, error) {
	var workflow core.Workflow
	if err := s.transport.Post(ctx, "/v1/workflows", req, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

// Update 更新工作流
func (s *workflowService) Update(ctx context.Context, id int64, req *core.UpdateWorkflowRequest) (*core.Workflow, error) {
	var workflow core.Workflow
	if err := s.transport.Put(ctx, fmt.Sprintf("/v1/workflows/%d", id), req, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

// Delete 删除工作流
func (s *workflowService) Delete(ctx context.Context, id int64) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/v1/workflows/%d", id), nil)
}

// UpdateStatus 启用/禁用工作流
func (s *workflowService) UpdateStatus(ctx context.Context, id int64, status int) error {
	body := map[string]int{"status": status}
	return s.transport.Put(ctx, fmt.Sprintf("/v1/workflows/%d/status", id), body, nil)
}

var _ core.WorkflowService = (*workflowService)(nil)
