// Package workflow 工作流模板编辑
//
// Editor 维护一份工作流草稿，任何增删和移动之后节点顺序都重排为 1..N。
package workflow

import (
	"fmt"

	"github.com/codelieche/approval/pkg/core"
)

// Draft 工作流草稿
type Draft struct {
	Name        string
	TypeCode    string
	Description string
	Status      int
	Nodes       []*core.WorkflowNode
}

// NodePatch 节点的可编辑字段，nil 表示不修改
type NodePatch struct {
	NodeName     *string
	ApproverID   *int64
	ApproverName *string
}

// Editor 工作流编辑器
type Editor struct {
	id    int64 // 编辑模式下的工作流ID，新建时为0
	draft Draft
}

// NewEditor 新建工作流，默认一个部门负责人节点
func NewEditor() *Editor {
	return &Editor{
		draft: Draft{
			Status: 1,
			Nodes: []*core.WorkflowNode{
				{NodeName: "直属上级", NodeOrder: 1, ApproverType: core.ApproverTypeDepartmentHead},
			},
		},
	}
}

// EditWorkflow 编辑已有的工作流
func EditWorkflow(w *core.Workflow) *Editor {
	e := &Editor{
		id: w.ID,
		draft: Draft{
			Name:        w.Name,
			TypeCode:    w.TypeCode,
			Description: w.Description,
			Status:      w.Status,
			Nodes:       make([]*core.WorkflowNode, 0, len(w.Nodes)),
		},
	}
	for _, n := range w.Nodes {
		node := *n
		if n.ApproverID != nil {
			id := *n.ApproverID
			node.ApproverID = &id
		}
		e.draft.Nodes = append(e.draft.Nodes, &node)
	}
	e.reindex()
	return e
}

// ID 编辑中的工作流ID
func (e *Editor) ID() int64 {
	return e.id
}

// IsEdit 是否是编辑模式
func (e *Editor) IsEdit() bool {
	return e.id > 0
}

// Draft 当前草稿
func (e *Editor) Draft() Draft {
	return e.draft
}

// Nodes 当前节点
func (e *Editor) Nodes() []*core.WorkflowNode {
	return e.draft.Nodes
}

// SetName 修改名称
func (e *Editor) SetName(name string) {
	e.draft.Name = name
}

// SetDescription 修改描述
func (e *Editor) SetDescription(description string) {
	e.draft.Description = description
}

// SetStatus 修改状态
func (e *Editor) SetStatus(status int) error {
	if status != 0 && status != 1 {
		return core.NewValidationError("status", "状态只能是0或1")
	}
	e.draft.Status = status
	return nil
}

// SetTypeCode 修改审批类型，编辑模式下不允许
func (e *Editor) SetTypeCode(typeCode string) error {
	if e.IsEdit() {
		return fmt.Errorf("%w: 工作流创建后不能修改审批类型", core.ErrInvalidState)
	}
	e.draft.TypeCode = typeCode
	return nil
}

// AddNode 追加一个指定用户节点
func (e *Editor) AddNode() *core.WorkflowNode {
	order := len(e.draft.Nodes) + 1
	node := &core.WorkflowNode{
		NodeName:     fmt.Sprintf("审批节点 %d", order),
		NodeOrder:    order,
		ApproverType: core.ApproverTypeUser,
	}
	e.draft.Nodes = append(e.draft.Nodes, node)
	return node
}

// node 按下标获取节点
func (e *Editor) node(index int) (*core.WorkflowNode, error) {
	if index < 0 || index >= len(e.draft.Nodes) {
		return nil, fmt.Errorf("节点不存在: %d", index+1)
	}
	return e.draft.Nodes[index], nil
}

// UpdateNode 修改节点字段
func (e *Editor) UpdateNode(index int, patch NodePatch) error {
	node, err := e.node(index)
	if err != nil {
		return err
	}
	if patch.NodeName != nil {
		node.NodeName = *patch.NodeName
	}
	if patch.ApproverID != nil {
		id := *patch.ApproverID
		node.ApproverID = &id
	}
	if patch.ApproverName != nil {
		node.ApproverName = *patch.ApproverName
	}
	return nil
}

// SetApproverType 切换审批人类型，同时清空已选的审批人
func (e *Editor) SetApproverType(index int, approverType core.ApproverType) error {
	node, err := e.node(index)
	if err != nil {
		return err
	}
	if _, err := core.ParseApproverType(string(approverType)); err != nil {
		return err
	}
	node.ApproverType = approverType
	node.ApproverID = nil
	node.ApproverName = ""
	return nil
}

// RemoveNode 删除节点并重排顺序
func (e *Editor) RemoveNode(index int) error {
	if _, err := e.node(index); err != nil {
		return err
	}
	e.draft.Nodes = append(e.draft.Nodes[:index], e.draft.Nodes[index+1:]...)
	e.reindex()
	return nil
}

// MoveNode 把节点从from移动到to
func (e *Editor) MoveNode(from, to int) error {
	node, err := e.node(from)
	if err != nil {
		return err
	}
	if _, err := e.node(to); err != nil {
		return err
	}
	nodes := append(e.draft.Nodes[:from:from], e.draft.Nodes[from+1:]...)
	nodes = append(nodes[:to], append([]*core.WorkflowNode{node}, nodes[to:]...)...)
	e.draft.Nodes = nodes
	e.reindex()
	return nil
}

// reindex 节点顺序重排为 1..N
func (e *Editor) reindex() {
	for i, node := range e.draft.Nodes {
		node.NodeOrder = i + 1
	}
}

// Validate 保存前校验
func (e *Editor) Validate() error {
	var errs core.ValidationErrors
	if e.draft.Name == "" {
		errs = append(errs, &core.ValidationError{Field: "name", Message: "工作流名称不能为空"})
	}
	if e.draft.TypeCode == "" {
		errs = append(errs, &core.ValidationError{Field: "typeCode", Message: "请选择审批类型"})
	}
	if len(e.draft.Nodes) == 0 {
		errs = append(errs, &core.ValidationError{Field: "nodes", Message: "至少需要一个审批节点"})
	}
	for i, node := range e.draft.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if node.NodeOrder != i+1 {
			errs = append(errs, &core.ValidationError{Field: field, Message: "节点顺序不连续"})
		}
		if node.NodeName == "" {
			errs = append(errs, &core.ValidationError{Field: field, Message: fmt.Sprintf("第%d个节点名称不能为空", i+1)})
		}
		if node.ApproverType.NeedsApproverID() && node.ApproverID == nil {
			errs = append(errs, &core.ValidationError{Field: field, Message: fmt.Sprintf("第%d个节点需要选择%s", i+1, node.ApproverType)})
		}
		if node.ApproverType == core.ApproverTypeDepartmentHead && node.ApproverID != nil {
			errs = append(errs, &core.ValidationError{Field: field, Message: fmt.Sprintf("第%d个节点为部门负责人，不能指定审批人", i+1)})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateRequest 生成创建请求
func (e *Editor) CreateRequest() (*core.CreateWorkflowRequest, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	req := &core.CreateWorkflowRequest{
		Name:        e.draft.Name,
		TypeCode:    e.draft.TypeCode,
		Description: e.draft.Description,
		Status:      e.draft.Status,
		Nodes:       e.draft.Nodes,
	}
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateRequest 生成更新请求，不包含审批类型
func (e *Editor) UpdateRequest() (*core.UpdateWorkflowRequest, error) {
	if !e.IsEdit() {
		return nil, fmt.Errorf("%w: 新建的工作流不能生成更新请求", core.ErrInvalidState)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	req := &core.UpdateWorkflowRequest{
		Name:        e.draft.Name,
		Description: e.draft.Description,
		Status:      e.draft.Status,
		Nodes:       e.draft.Nodes,
	}
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}
