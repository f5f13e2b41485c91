package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/codelieche/approval/pkg/utils/types"
	"go.uber.org/zap"
)

// ErrStale 响应已经过期，有更新的请求在它之后发出
var ErrStale = errors.New("响应已过期")

// Tab 审批列表
type Tab string

const (
	TabTodo      Tab = "todo"      // 待我审批
	TabInitiated Tab = "initiated" // 我发起的
	TabDone      Tab = "done"      // 已处理(我发起的已结束的)
)

// Tabs 全部列表
var Tabs = []Tab{TabTodo, TabInitiated, TabDone}

// String 列表名称
func (t Tab) String() string {
	switch t {
	case TabTodo:
		return "待我审批"
	case TabInitiated:
		return "我发起的"
	case TabDone:
		return "已处理"
	default:
		return string(t)
	}
}

// ParseTab 解析列表名称
func ParseTab(value string) (Tab, error) {
	for _, t := range Tabs {
		if strings.EqualFold(string(t), value) {
			return t, nil
		}
	}
	return "", core.NewValidationError("tab", fmt.Sprintf("无效的列表: %s，可选 todo/initiated/done", value))
}

// TabState 单个列表的分页和过滤条件
type TabState struct {
	Pagination types.Pagination
	Status     *core.ApprovalStatus
	Page       *types.PageResult[*core.ApprovalRecord]
}

// Review 审批列表和详情
//
// 三个列表各自分页、各自过滤。每次加载都会领取一个代号，
// 同一位置如果已经发出了更新的请求，旧的响应直接丢弃，返回 ErrStale。
// 审批操作之后重新加载详情和当前列表，不在本地修改节点状态。
type Review struct {
	service core.ApprovalService

	mu          sync.Mutex
	active      Tab
	tabs        map[Tab]*TabState
	generations map[string]uint64
	detail      *core.ApprovalRecord
}

// NewReview 创建审批列表
func NewReview(service core.ApprovalService) *Review {
	r := &Review{
		service:     service,
		active:      TabTodo,
		tabs:        make(map[Tab]*TabState, len(Tabs)),
		generations: make(map[string]uint64),
	}
	for _, t := range Tabs {
		r.tabs[t] = &TabState{Pagination: types.NewPagination(1, types.DefaultPaginationConfig.DefaultPageSize)}
	}
	return r
}

// begin 领取代号
func (r *Review) begin(slot string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[slot]++
	return r.generations[slot]
}

// latest 调用方持有锁
func (r *Review) latest(slot string, generation uint64) bool {
	return r.generations[slot] == generation
}

// Active 当前列表
func (r *Review) Active() Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActive 切换列表
func (r *Review) SetActive(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	r.mu.Lock()
	r.active = tab
	r.mu.Unlock()
	return nil
}

// State 列表的当前状态
func (r *Review) State(tab Tab) TabState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.tabs[tab]; ok {
		return *state
	}
	return TabState{}
}

// SetPage 修改分页
func (r *Review) SetPage(tab Tab, page, pageSize int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.tabs[tab]; ok {
		state.Pagination = types.NewPagination(page, pageSize)
	}
}

// SetStatus 修改状态过滤，页码回到第一页
//
// 已处理列表只能按已结束的状态过滤。
func (r *Review) SetStatus(tab Tab, status *core.ApprovalStatus) error {
	if status != nil {
		if !status.Valid() {
			return core.NewValidationError("status", fmt.Sprintf("无效的审批状态: %d", int(*status)))
		}
		if tab == TabDone && !status.IsTerminal() {
			return core.NewValidationError("status", "已处理列表只能按已通过、已拒绝、已撤回过滤")
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.tabs[tab]
	if !ok {
		return core.NewValidationError("tab", fmt.Sprintf("无效的列表: %s", tab))
	}
	state.Status = status
	state.Pagination.Page = 1
	return nil
}

// LoadTab 加载列表
func (r *Review) LoadTab(ctx context.Context, tab Tab) (*types.PageResult[*core.ApprovalRecord], error) {
	slot := "tab:" + string(tab)
	generation := r.begin(slot)

	r.mu.Lock()
	state, ok := r.tabs[tab]
	if !ok {
		r.mu.Unlock()
		return nil, core.NewValidationError("tab", fmt.Sprintf("无效的列表: %s", tab))
	}
	pagination := state.Pagination
	var status *core.ApprovalStatus
	if state.Status != nil {
		s := *state.Status
		status = &s
	}
	r.mu.Unlock()

	page, err := r.fetch(ctx, tab, pagination, status)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.latest(slot, generation) {
		logger.Debug("丢弃过期的列表响应", zap.String("tab", string(tab)), zap.Uint64("generation", generation))
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	state.Page = page
	return page, nil
}

// fetch 按列表调用不同的接口
func (r *Review) fetch(ctx context.Context, tab Tab, pagination types.Pagination, status *core.ApprovalStatus) (*types.PageResult[*core.ApprovalRecord], error) {
	switch tab {
	case TabTodo:
		page, err := r.service.ListTodo(ctx, pagination)
		if err != nil || status == nil {
			return page, err
		}
		return page.Filter(func(record *core.ApprovalRecord) bool { return record.Status == *status }), nil

	case TabInitiated:
		return r.service.ListMine(ctx, &core.ApprovalQuery{Pagination: pagination, Status: status})

	default:
		// 已结束的状态直接交给服务端过滤，否则取我发起的再过滤出已结束的
		if status != nil {
			return r.service.ListMine(ctx, &core.ApprovalQuery{Pagination: pagination, Status: status})
		}
		page, err := r.service.ListMine(ctx, &core.ApprovalQuery{Pagination: pagination})
		if err != nil {
			return nil, err
		}
		return page.Filter(func(record *core.ApprovalRecord) bool { return record.Status.IsTerminal() }), nil
	}
}

// Select 加载审批详情
func (r *Review) Select(ctx context.Context, id string) (*core.ApprovalRecord, error) {
	generation := r.begin("detail")
	record, err := r.service.Get(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.latest("detail", generation) {
		logger.Debug("丢弃过期的详情响应", zap.String("id", id), zap.Uint64("generation", generation))
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	if invariantErr := CheckNodeInvariant(record); invariantErr != nil {
		logger.Warn("审批节点状态不一致", zap.String("id", id), zap.Error(invariantErr))
	}
	r.detail = record
	return record, nil
}

// Detail 当前详情
func (r *Review) Detail() *core.ApprovalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detail
}

// selectedID 当前详情的ID
func (r *Review) selectedID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detail == nil {
		return "", fmt.Errorf("%w: 请先选择审批记录", core.ErrInvalidState)
	}
	return r.detail.ID, nil
}

// Approve 通过当前审批，意见可以为空
func (r *Review) Approve(ctx context.Context, comment string) error {
	return r.act(ctx, "通过", func(id string) error {
		return r.service.Approve(ctx, id, &core.ApproveRequest{Approved: true, Comment: comment})
	})
}

// Reject 拒绝当前审批，必须填写意见
func (r *Review) Reject(ctx context.Context, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return core.NewValidationError("comment", "拒绝时必须填写审批意见")
	}
	return r.act(ctx, "拒绝", func(id string) error {
		return r.service.Approve(ctx, id, &core.ApproveRequest{Approved: false, Comment: comment})
	})
}

// Withdraw 撤回当前审批
func (r *Review) Withdraw(ctx context.Context) error {
	return r.act(ctx, "撤回", func(id string) error {
		return r.service.Withdraw(ctx, id)
	})
}

// act 执行审批操作，成功后重新加载详情和当前列表
func (r *Review) act(ctx context.Context, action string, do func(id string) error) error {
	id, err := r.selectedID()
	if err != nil {
		return err
	}
	if err := do(id); err != nil {
		return err
	}
	logger.Info("审批操作成功", zap.String("action", action), zap.String("id", id))

	if _, err := r.Select(ctx, id); err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("%s成功，刷新详情失败: %w", action, err)
	}
	if _, err := r.LoadTab(ctx, r.Active()); err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("%s成功，刷新列表失败: %w", action, err)
	}
	return nil
}
