package core

import (
	"context"
	"fmt"

	"github.com/codelieche/approval/pkg/utils/types"
)

// ApproverType 审批人类型
type ApproverType string

const (
	ApproverTypeUser           ApproverType = "USER"            // 指定用户
	ApproverTypePosition       ApproverType = "POSITION"        // 指定职位
	ApproverTypeDepartmentHead ApproverType = "DEPARTMENT_HEAD" // 提交人所在部门负责人，服务端运行时解析
)

// ApproverTypes 全部审批人类型
var ApproverTypes = []ApproverType{ApproverTypeUser, ApproverTypePosition, ApproverTypeDepartmentHead}

// String 审批人类型的中文名称
func (t ApproverType) String() string {
	switch t {
	case ApproverTypeUser:
		return "指定用户"
	case ApproverTypePosition:
		return "指定职位"
	case ApproverTypeDepartmentHead:
		return "部门负责人"
	default:
		return string(t)
	}
}

// NeedsApproverID 该类型是否需要指定审批人ID
func (t ApproverType) NeedsApproverID() bool {
	return t == ApproverTypeUser || t == ApproverTypePosition
}

// ParseApproverType 解析审批人类型
func ParseApproverType(value string) (ApproverType, error) {
	for _, t := range ApproverTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("无效的审批人类型: %s", value)
}

// WorkflowNode 工作流节点模板
type WorkflowNode struct {
	ID           int64        `json:"id,omitempty"`
	NodeName     string       `json:"nodeName" label:"节点名称" validate:"notblank,max=100"`
	NodeOrder    int          `json:"nodeOrder" label:"节点顺序" validate:"gte=1"`
	ApproverType ApproverType `json:"approverType" label:"审批人类型" validate:"oneof=USER POSITION DEPARTMENT_HEAD"`
	ApproverID   *int64       `json:"approverId,omitempty"`
	ApproverName string       `json:"approverName,omitempty"`
}

// Workflow 工作流模板
type Workflow struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	TypeCode      string          `json:"typeCode"`
	TypeName      string          `json:"typeName,omitempty"`
	Description   string          `json:"description,omitempty"`
	Status        int             `json:"status"` // 0-禁用 1-启用
	NodeCount     int             `json:"nodeCount,omitempty"`
	CreatedBy     int64           `json:"createdBy,omitempty"`
	CreatedByName string          `json:"createdByName,omitempty"`
	CreatedAt     *types.DateTime `json:"createdAt,omitempty"`
	UpdatedAt     *types.DateTime `json:"updatedAt,omitempty"`
	Nodes         []*WorkflowNode `json:"nodes,omitempty"`
}

// CreateWorkflowRequest 创建工作流
type CreateWorkflowRequest struct {
	Name        string          `json:"name" label:"工作流名称" validate:"notblank,max=100"`
	TypeCode    string          `json:"typeCode" label:"审批类型" validate:"required"`
	Description string          `json:"description,omitempty" label:"描述" validate:"max=500"`
	Status      int             `json:"status" label:"状态" validate:"oneof=0 1"`
	Nodes       []*WorkflowNode `json:"nodes" label:"审批节点" validate:"min=1,dive"`
}

// UpdateWorkflowRequest 更新工作流，typeCode不可修改
type UpdateWorkflowRequest struct {
	Name        string          `json:"name" label:"工作流名称" validate:"notblank,max=100"`
	Description string          `json:"description,omitempty" label:"描述" validate:"max=500"`
	Status      int             `json:"status" label:"状态" validate:"oneof=0 1"`
	Nodes       []*WorkflowNode `json:"nodes" label:"审批节点" validate:"min=1,dive"`
}

// WorkflowQuery 工作流列表查询
type WorkflowQuery struct {
	types.Pagination
	TypeCode string
	Status   *int
}

// WorkflowService 工作流模板接口
type WorkflowService interface {
	List(ctx context.Context, query *WorkflowQuery) (*types.PageResult[*Workflow], error)
	Get(ctx context.Context, id int64) (*Workflow, error)
	// GetByType 按审批类型获取工作流，不存在时返回 nil, nil
	GetByType(ctx context.Context, typeCode string) (*Workflow, error)
	Create(ctx context.Context, req *CreateWorkflowRequest) (*Workflow, error)
	Update(ctx context.Context, id int64, req *UpdateWorkflowRequest) (*Workflow, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status int) error
}
