package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codelieche/approval/pkg/content"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/logger"
	"go.uber.org/zap"
)

// WizardState 发起审批的步骤
type WizardState int

const (
	StateSelectType WizardState = iota // 选择审批类型
	StateFillForm                      // 填写表单
	StateSubmitting                    // 提交中
	StateSuccess                       // 提交成功
)

// String 步骤名称
func (s WizardState) String() string {
	switch s {
	case StateSelectType:
		return "选择审批类型"
	case StateFillForm:
		return "填写表单"
	case StateSubmitting:
		return "提交中"
	case StateSuccess:
		return "提交成功"
	default:
		return fmt.Sprintf("未知(%d)", int(s))
	}
}

// deadlineLayout 截止日期输入格式
const deadlineLayout = "2006-01-02"

// Wizard 发起审批
//
// 选择类型 -> 填写表单 -> 提交中 -> 成功；提交失败回到填写表单，保留错误和已填内容。
type Wizard struct {
	service core.ApprovalService
	now     func() time.Time

	state       WizardState
	types       []*core.ApprovalType
	selected    *core.ApprovalType
	title       string
	priority    core.Priority
	deadline    string
	content     content.Content
	attachments []*core.Attachment
	lastErr     error
	record      *core.ApprovalRecord
}

// NewWizard 创建发起审批的向导
func NewWizard(service core.ApprovalService) *Wizard {
	return &Wizard{service: service, now: time.Now, state: StateSelectType}
}

// State 当前步骤
func (w *Wizard) State() WizardState {
	return w.state
}

// Types 可选的审批类型
func (w *Wizard) Types() []*core.ApprovalType {
	return w.types
}

// Selected 已选的审批类型
func (w *Wizard) Selected() *core.ApprovalType {
	return w.selected
}

// Title 标题
func (w *Wizard) Title() string {
	return w.title
}

// Content 表单内容，可以直接修改
func (w *Wizard) Content() content.Content {
	return w.content
}

// Attachments 已上传的附件
func (w *Wizard) Attachments() []*core.Attachment {
	return w.attachments
}

// Err 最近一次提交的错误
func (w *Wizard) Err() error {
	return w.lastErr
}

// Record 提交成功后的审批记录
func (w *Wizard) Record() *core.ApprovalRecord {
	return w.record
}

// LoadTypes 加载可发起的审批类型
func (w *Wizard) LoadTypes(ctx context.Context) error {
	types, err := w.service.ListTypes(ctx)
	if err != nil {
		return err
	}
	w.types = types
	return nil
}

// SelectType 选择审批类型，进入填写表单
//
// 标题默认为 "<类型名称>申请 - <年/月/日>"。
func (w *Wizard) SelectType(code string) error {
	if w.state != StateSelectType {
		return fmt.Errorf("%w: 当前步骤为%s", core.ErrInvalidState, w.state)
	}
	var selected *core.ApprovalType
	for _, t := range w.types {
		if strings.EqualFold(t.Code, code) {
			selected = t
			break
		}
	}
	if selected == nil {
		return core.NewValidationError("typeCode", fmt.Sprintf("审批类型不存在: %s", code))
	}

	today := w.now()
	w.selected = selected
	w.title = fmt.Sprintf("%s申请 - %d/%d/%d", selected.Name, today.Year(), int(today.Month()), today.Day())
	w.content = content.New(selected.Code)
	w.priority = core.PriorityNormal
	w.deadline = ""
	w.attachments = nil
	w.lastErr = nil
	w.state = StateFillForm
	return nil
}

// Back 返回选择类型
func (w *Wizard) Back() {
	if w.state == StateFillForm {
		w.state = StateSelectType
		w.selected = nil
		w.content = nil
		w.lastErr = nil
	}
}

// SetTitle 修改标题
func (w *Wizard) SetTitle(title string) {
	w.title = title
}

// SetPriority 修改优先级
func (w *Wizard) SetPriority(priority core.Priority) error {
	if !priority.Valid() {
		return core.NewValidationError("priority", "优先级只能是0、1、2")
	}
	w.priority = priority
	return nil
}

// SetDeadline 设置截止日期，格式 YYYY-MM-DD，空字符串表示不设置
func (w *Wizard) SetDeadline(deadline string) error {
	if deadline != "" {
		if _, err := time.Parse(deadlineLayout, deadline); err != nil {
			return core.NewValidationError("deadline", "截止日期格式应为 YYYY-MM-DD")
		}
	}
	w.deadline = deadline
	return nil
}

// SetContent 替换表单内容，类型必须与所选审批类型一致
func (w *Wizard) SetContent(c content.Content) error {
	if w.selected == nil {
		return fmt.Errorf("%w: 请先选择审批类型", core.ErrInvalidState)
	}
	if expected := content.New(w.selected.Code); fmt.Sprintf("%T", expected) != fmt.Sprintf("%T", c) {
		return core.NewValidationError("content", fmt.Sprintf("审批内容与类型%s不匹配", w.selected.Code))
	}
	w.content = c
	return nil
}

// AddAttachment 添加已上传的附件
func (w *Wizard) AddAttachment(attachment *core.Attachment) {
	w.attachments = append(w.attachments, attachment)
}

// RemoveAttachment 移除附件
func (w *Wizard) RemoveAttachment(id string) {
	for i, a := range w.attachments {
		if a.ID == id {
			w.attachments = append(w.attachments[:i], w.attachments[i+1:]...)
			return
		}
	}
}

// Validate 提交前校验，校验失败不会发送请求
func (w *Wizard) Validate() error {
	if w.selected == nil || w.content == nil {
		return fmt.Errorf("%w: 请先选择审批类型", core.ErrInvalidState)
	}
	if strings.TrimSpace(w.title) == "" {
		return core.NewValidationError("title", "请输入审批标题")
	}
	if !w.priority.Valid() {
		return core.NewValidationError("priority", "优先级只能是0、1、2")
	}
	return w.content.Validate()
}

// Request 生成提交请求
func (w *Wizard) Request() (*core.CreateApprovalRequest, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	raw, err := content.Encode(w.content)
	if err != nil {
		return nil, err
	}
	req := &core.CreateApprovalRequest{
		Title:         w.title,
		TypeCode:      w.selected.Code,
		Content:       raw,
		Priority:      w.priority,
		AttachmentIDs: make([]string, 0, len(w.attachments)),
	}
	if w.deadline != "" {
		req.Deadline = w.deadline + "T23:59:59"
	}
	for _, a := range w.attachments {
		req.AttachmentIDs = append(req.AttachmentIDs, a.ID)
	}
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Submit 提交审批
//
// 成功后进入成功状态；失败时回到填写表单并保留错误。
func (w *Wizard) Submit(ctx context.Context) (*core.ApprovalRecord, error) {
	if w.state != StateFillForm {
		return nil, fmt.Errorf("%w: 当前步骤为%s", core.ErrInvalidState, w.state)
	}
	req, err := w.Request()
	if err != nil {
		w.lastErr = err
		return nil, err
	}

	w.state = StateSubmitting
	record, err := w.service.Create(ctx, req)
	if err != nil {
		logger.Warn("提交审批失败", zap.String("type", req.TypeCode), zap.Error(err))
		w.lastErr = err
		w.state = StateFillForm
		return nil, err
	}

	logger.Info("提交审批成功", zap.String("id", record.ID), zap.String("type", req.TypeCode))
	w.lastErr = nil
	w.record = record
	w.state = StateSuccess
	return record, nil
}
