package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
)

// approvalService 审批接口实现
type approvalService struct {
	transport *Transport
}

// NewApprovalService 创建审批服务
func NewApprovalService(transport *Transport) core.ApprovalService {
	return &approvalService{transport: transport}
}

// ListTypes 获取可发起的审批类型
func (s *approvalService) ListTypes(ctx context.Context) ([]*core.ApprovalType, error) {
	var result []*core.ApprovalType
	if err := s.transport.Get(ctx, "/approvals/types", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Create 提交审批
func (s *approvalService) Create(ctx context.Context, req *core.CreateApprovalRequest) (*core.ApprovalRecord, error) {
	var record core.ApprovalRecord
	if err := s.transport.Post(ctx, "/approvals", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListMine 我发起的审批
func (s *approvalService) ListMine(ctx context.Context, query *core.ApprovalQuery) (*types.PageResult[*core.ApprovalRecord], error) {
	if query == nil {
		query = &core.ApprovalQuery{}
	}
	values := paginationQuery(query.Pagination)
	if query.Status != nil {
		values.Set("status", strconv.Itoa(int(*query.Status)))
	}

	var page types.PageResult[*core.ApprovalRecord]
	if err := s.transport.Get(ctx, "/approvals/my", values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListTodo 待我审批的
func (s *approvalService) ListTodo(ctx context.Context, pagination types.Pagination) (*types.PageResult[*core.ApprovalRecord], error) {
	var page types.PageResult[*core.ApprovalRecord]
	if err := s.transport.Get(ctx, "/approvals/todo", paginationQuery(pagination), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get 审批详情
func (s *approvalService) Get(ctx context.Context, id string) (*core.ApprovalRecord, error) {
	var record core.ApprovalRecord
	if err := s.transport.Get(ctx, "/approvals/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Approve 审批通过或拒绝
func (s *approvalService) Approve(ctx context.Context, id string, req *core.ApproveRequest) error {
	if req == nil {
		return fmt.Errorf("%w: 审批请求不能为空", core.ErrBadRequest)
	}
	return s.transport.Post(ctx, fmt.Sprintf("/approvals/%s/approve", url.PathEscape(id)), req, nil)
}

// Withdraw 撤回审批
func (s *approvalService) Withdraw(ctx context.Context, id string) error {
	return s.transport.Post(ctx, fmt.Sprintf("/approvals/%s/withdraw", url.PathEscape(id)), nil, nil)
}

var _ core.ApprovalService = (*approvalService)(nil)

// approvalTypeService 审批类型管理
type approvalTypeService struct {
	transport *Transport
}

// NewApprovalTypeService 创建审批类型管理服务
func NewApprovalTypeService(transport *Transport) core.ApprovalTypeService {
	return &approvalTypeService{transport: transport}
}

func (s *approvalTypeService) List(ctx context.Context) ([]*core.ApprovalType, error) {
	var result []*core.ApprovalType
	if err := s.transport.Get(ctx, "/v1/approval-types", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *approvalTypeService) Get(ctx context.Context, id int64) (*core.ApprovalType, error) {
	var result core.ApprovalType
	if err := s.transport.Get(ctx, fmt.Sprintf("/v1/approval-types/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *approvalTypeService) Create(ctx context.Context, req *core.ApprovalTypeRequest) (*core.ApprovalType, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	var result core.ApprovalType
	if err := s.transport.Post(ctx, "/v1/approval-types", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *approvalTypeService) Update(ctx context.Context, id int64, req *core.ApprovalTypeRequest) (*core.ApprovalType, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	var result core.ApprovalType
	if err := s.transport.Put(ctx, fmt.Sprintf("/v1/approval-types/%d", id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *approvalTypeService) Delete(ctx context.Context, id int64) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/v1/approval-types/%d", id), nil)
}

var _ core.ApprovalTypeService = (*approvalTypeService)(nil)
