package core

import (
	"context"
	"fmt"

	"github.com/codelieche/approval/pkg/utils/types"
)

// ApprovalStatus 审批记录状态
type ApprovalStatus int

const (
	ApprovalStatusDraft      ApprovalStatus = 0 // 草稿
	ApprovalStatusPending    ApprovalStatus = 1 // 待审批
	ApprovalStatusInProgress ApprovalStatus = 2 // 审批中
	ApprovalStatusApproved   ApprovalStatus = 3 // 已通过
	ApprovalStatusRejected   ApprovalStatus = 4 // 已拒绝
	ApprovalStatusWithdrawn  ApprovalStatus = 5 // 已撤回
)

// ApprovalStatuses 全部状态，按生命周期顺序
var ApprovalStatuses = []ApprovalStatus{
	ApprovalStatusDraft,
	ApprovalStatusPending,
	ApprovalStatusInProgress,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
	ApprovalStatusWithdrawn,
}

// String 状态的中文名称
func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalStatusDraft:
		return "草稿"
	case ApprovalStatusPending:
		return "待审批"
	case ApprovalStatusInProgress:
		return "审批中"
	case ApprovalStatusApproved:
		return "已通过"
	case ApprovalStatusRejected:
		return "已拒绝"
	case ApprovalStatusWithdrawn:
		return "已撤回"
	default:
		return fmt.Sprintf("未知(%d)", int(s))
	}
}

// Code 状态的英文编码
func (s ApprovalStatus) Code() string {
	switch s {
	case ApprovalStatusDraft:
		return "draft"
	case ApprovalStatusPending:
		return "pending"
	case ApprovalStatusInProgress:
		return "in_progress"
	case ApprovalStatusApproved:
		return "approved"
	case ApprovalStatusRejected:
		return "rejected"
	case ApprovalStatusWithdrawn:
		return "withdrawn"
	default:
		return "unknown"
	}
}

// Valid 是否是已知状态
func (s ApprovalStatus) Valid() bool {
	return s >= ApprovalStatusDraft && s <= ApprovalStatusWithdrawn
}

// IsTerminal 是否是终态：已通过、已拒绝、已撤回
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected || s == ApprovalStatusWithdrawn
}

// IsActive 是否在审批流转中：待审批、审批中
func (s ApprovalStatus) IsActive() bool {
	return s == ApprovalStatusPending || s == ApprovalStatusInProgress
}

// ParseApprovalStatus 解析状态，支持数字和英文编码
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, s := range ApprovalStatuses {
		if value == s.Code() || value == fmt.Sprintf("%d", int(s)) || value == s.String() {
			return s, nil
		}
	}
	return 0, fmt.Errorf("无效的审批状态: %s", value)
}

// NodeStatus 审批节点状态
type NodeStatus int

const (
	NodeStatusPending  NodeStatus = 0 // 待审批
	NodeStatusApproved NodeStatus = 1 // 已通过
	NodeStatusRejected NodeStatus = 2 // 已拒绝
)

// String 节点状态的中文名称
func (s NodeStatus) String() string {
	switch s {
	case NodeStatusPending:
		return "待审批"
	case NodeStatusApproved:
		return "已通过"
	case NodeStatusRejected:
		return "已拒绝"
	default:
		return fmt.Sprintf("未知(%d)", int(s))
	}
}

// Priority 优先级
type Priority int

const (
	PriorityNormal     Priority = 0 // 普通
	PriorityUrgent     Priority = 1 // 紧急
	PriorityVeryUrgent Priority = 2 // 非常紧急
)

// String 优先级的中文名称
func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "普通"
	case PriorityUrgent:
		return "紧急"
	case PriorityVeryUrgent:
		return "非常紧急"
	default:
		return fmt.Sprintf("未知(%d)", int(p))
	}
}

// Valid 是否是合法的优先级
func (p Priority) Valid() bool {
	return p >= PriorityNormal && p <= PriorityVeryUrgent
}

// ApprovalType 审批类型
type ApprovalType struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`                  // 类型编码，创建后不可修改
	Name        string `json:"name"`                  // 类型名称
	Description string `json:"description,omitempty"` // 描述
	Icon        string `json:"icon,omitempty"`        // 图标
	Color       string `json:"color,omitempty"`       // 颜色
	Status      int    `json:"status"`                // 状态: 0-禁用 1-启用
}

// ApprovalTypeRequest 创建/更新审批类型
type ApprovalTypeRequest struct {
	Code        string `json:"code" label:"类型编码" validate:"required,max=50"`
	Name        string `json:"name" label:"类型名称" validate:"required,max=100"`
	Description string `json:"description,omitempty" label:"描述" validate:"max=500"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Status      *int   `json:"status,omitempty" label:"状态" validate:"omitempty,oneof=0 1"`
}

// Attachment 附件
type Attachment struct {
	ID             string          `json:"id"`
	FileName       string          `json:"fileName"`
	FileSize       int64           `json:"fileSize"`
	FileType       string          `json:"fileType"`
	FileURL        string          `json:"fileUrl"`
	UploadedAt     *types.DateTime `json:"uploadedAt,omitempty"`
	PreviewSupport bool            `json:"previewSupport,omitempty"`
}

// ApprovalNode 审批节点实例，status 不为0后不再变化
type ApprovalNode struct {
	ID         int64           `json:"id"`
	NodeName   string          `json:"nodeName"`
	ApproverID int64           `json:"approverId"`
	NodeOrder  int             `json:"nodeOrder"`
	Status     NodeStatus      `json:"status"`
	Comment    string          `json:"comment,omitempty"`
	ApprovedAt *types.DateTime `json:"approvedAt,omitempty"`
	CreatedAt  *types.DateTime `json:"createdAt,omitempty"`
}

// ApprovalRecord 审批记录
type ApprovalRecord struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	TypeCode         string          `json:"typeCode"`
	TypeName         string          `json:"typeName"`
	TypeIcon         string          `json:"typeIcon,omitempty"`
	TypeColor        string          `json:"typeColor,omitempty"`
	Content          string          `json:"content"` // 按typeCode约定结构的JSON字符串
	InitiatorID      int64           `json:"initiatorId"`
	InitiatorName    string          `json:"initiatorName"`
	Priority         Priority        `json:"priority"`
	Status           ApprovalStatus  `json:"status"`
	StatusName       string          `json:"statusName,omitempty"`
	CurrentNodeOrder int             `json:"currentNodeOrder"`
	CreatedAt        *types.DateTime `json:"createdAt,omitempty"`
	UpdatedAt        *types.DateTime `json:"updatedAt,omitempty"`
	CompletedAt      *types.DateTime `json:"completedAt,omitempty"`
	Attachments      []*Attachment   `json:"attachments,omitempty"`
	Nodes            []*ApprovalNode `json:"nodes,omitempty"`
}

// CurrentNode 当前待处理的节点
//
// 只有在审批流转中，并且 nodeOrder == currentNodeOrder 且状态为待审批的节点才算当前节点。
func (r *ApprovalRecord) CurrentNode() *ApprovalNode {
	if r == nil || !r.Status.IsActive() {
		return nil
	}
	for _, node := range r.Nodes {
		if node.NodeOrder == r.CurrentNodeOrder && node.Status == NodeStatusPending {
			return node
		}
	}
	return nil
}

// PendingNodes 所有待审批的节点
func (r *ApprovalRecord) PendingNodes() []*ApprovalNode {
	var nodes []*ApprovalNode
	if r == nil {
		return nodes
	}
	for _, node := range r.Nodes {
		if node.Status == NodeStatusPending {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// CreateApprovalRequest 提交审批
type CreateApprovalRequest struct {
	Title         string   `json:"title" label:"标题" validate:"notblank,max=200"`
	TypeCode      string   `json:"typeCode" label:"审批类型" validate:"required"`
	Content       string   `json:"content" label:"审批内容" validate:"required"`
	Priority      Priority `json:"priority" label:"优先级" validate:"gte=0,lte=2"`
	Deadline      string   `json:"deadline,omitempty" label:"截止时间" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	AttachmentIDs []string `json:"attachmentIds,omitempty"`
}

// ApproveRequest 审批通过/拒绝
type ApproveRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty" label:"审批意见" validate:"max=500"`
}

// ApprovalQuery 审批列表查询
type ApprovalQuery struct {
	types.Pagination
	Status *ApprovalStatus // 状态过滤，nil表示全部
}

// ApprovalService 审批接口
type ApprovalService interface {
	ListTypes(ctx context.Context) ([]*ApprovalType, error)
	Create(ctx context.Context, req *CreateApprovalRequest) (*ApprovalRecord, error)
	ListMine(ctx context.Context, query *ApprovalQuery) (*types.PageResult[*ApprovalRecord], error)
	ListTodo(ctx context.Context, pagination types.Pagination) (*types.PageResult[*ApprovalRecord], error)
	Get(ctx context.Context, id string) (*ApprovalRecord, error)
	Approve(ctx context.Context, id string, req *ApproveRequest) error
	Withdraw(ctx context.Context, id string) error
}

// ApprovalTypeService 审批类型管理接口
type ApprovalTypeService interface {
	List(ctx context.Context) ([]*ApprovalType, error)
	Get(ctx context.Context, id int64) (*ApprovalType, error)
	Create(ctx context.Context, req *ApprovalTypeRequest) (*ApprovalType, error)
	Update(ctx context.Context, id int64, req *ApprovalTypeRequest) (*ApprovalType, error)
	Delete(ctx context.Context, id int64) error
}
