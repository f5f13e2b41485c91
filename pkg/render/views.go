package render

import (
	"fmt"
	"strings"

	"github.com/codelieche/approval/pkg/content"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/department"
	"github.com/codelieche/approval/pkg/notify"
	"github.com/codelieche/approval/pkg/utils/types"
)

// pageFooter 分页信息
func pageFooter[T any](t *Table, page *types.PageResult[T]) {
	if page == nil {
		return
	}
	t.Line("第 %d/%d 页，共 %s 条", page.Page, max(page.TotalPages, 1), Count(page.Total))
}

// Approvals 审批列表
func (p *Printer) Approvals(page *types.PageResult[*core.ApprovalRecord]) error {
	return p.Print(page, func(t *Table) {
		t.Header("ID", "标题", "类型", "发起人", "优先级", "状态", "当前节点", "提交时间")
		for _, r := range page.List {
			t.Row(r.ID, Truncate(r.Title, 30), Text(r.TypeName), Text(r.InitiatorName), r.Priority, Status(r.Status), r.CurrentNodeOrder, Ago(r.CreatedAt))
		}
		pageFooter(t, page)
	})
}

// ApprovalDetail 审批详情
//
// actions 为当前用户可以执行的操作，只用于提示。
func (p *Printer) ApprovalDetail(r *core.ApprovalRecord, actions []string) error {
	return p.Print(r, func(t *Table) {
		t.Field("ID", r.ID)
		t.Field("标题", r.Title)
		t.Field("类型", fmt.Sprintf("%s (%s)", Text(r.TypeName), r.TypeCode))
		t.Field("发起人", Text(r.InitiatorName))
		t.Field("优先级", r.Priority)
		t.Field("状态", Status(r.Status))
		t.Field("提交时间", Time(r.CreatedAt))
		if r.CompletedAt != nil {
			t.Field("完成时间", Time(r.CompletedAt))
		}
		contentFields(t, content.Decode(r.TypeCode, r.Content))

		if len(r.Attachments) > 0 {
			t.Line("")
			t.Line("附件:")
			t.Header("ID", "文件名", "大小", "类型")
			for _, a := range r.Attachments {
				t.Row(a.ID, a.FileName, Size(a.FileSize), Text(a.FileType))
			}
		}

		if len(r.Nodes) > 0 {
			t.Line("")
			t.Line("审批进度:")
			t.Header("顺序", "节点", "审批人", "状态", "意见", "处理时间")
			for _, n := range r.Nodes {
				marker := ""
				if n.NodeOrder == r.CurrentNodeOrder && r.Status.IsActive() {
					marker = " *"
				}
				t.Row(fmt.Sprintf("%d%s", n.NodeOrder, marker), n.NodeName, n.ApproverID, n.Status, Text(n.Comment), Time(n.ApprovedAt))
			}
		}

		if len(actions) > 0 {
			t.Line("")
			t.Line("可执行操作: %s", strings.Join(actions, ", "))
		}
	})
}

// contentFields 按审批类型展示内容
func contentFields(t *Table, c content.Content) {
	switch v := c.(type) {
	case *content.LeaveContent:
		t.Field("请假类型", content.LeaveTypeLabel(v.LeaveType))
		t.Field("请假时间", fmt.Sprintf("%s 至 %s", v.StartDate, v.EndDate))
		t.Field("请假天数", fmt.Sprintf("%d天", v.Days))
		t.Field("请假事由", Text(v.Reason))
	case *content.ExpenseContent:
		t.Field("报销类型", content.ExpenseTypeLabel(v.ExpenseType))
		t.Field("报销金额", Money(v.TotalAmount))
		for i, item := range v.Items {
			t.Field(fmt.Sprintf("明细%d", i+1), fmt.Sprintf("%s %s %s", content.ExpenseTypeLabel(item.Type), Money(item.Amount), item.Description))
		}
		if v.Remark != "" {
			t.Field("备注", v.Remark)
		}
	case *content.GeneralContent:
		t.Field("内容", Text(v.Content))
	}
}

// ApprovalTypes 审批类型列表
func (p *Printer) ApprovalTypes(list []*core.ApprovalType) error {
	return p.Print(list, func(t *Table) {
		t.Header("ID", "编码", "名称", "描述", "状态")
		for _, a := range list {
			t.Row(a.ID, a.Code, a.Name, Text(Truncate(a.Description, 30)), EnabledLabel(a.Status))
		}
	})
}

// Approval 单条审批的简要信息，提交或操作后使用
func (p *Printer) Approval(r *core.ApprovalRecord) error {
	return p.Print(r, func(t *Table) {
		t.Field("ID", r.ID)
		t.Field("标题", r.Title)
		t.Field("状态", Status(r.Status))
		if node := r.CurrentNode(); node != nil {
			t.Field("当前节点", node.NodeName)
		}
	})
}

// Dashboard 工作台
func (p *Printer) Dashboard(stats *core.DashboardStatistics, activities []*core.RecentActivity) error {
	data := map[string]any{"statistics": stats, "activities": activities}
	return p.Print(data, func(t *Table) {
		t.Field("待我审批", Count(stats.Pending))
		t.Field("已通过", Count(stats.Approved))
		t.Field("已拒绝", Count(stats.Rejected))
		t.Field("全部", Count(stats.Total))
		if len(activities) == 0 {
			return
		}
		t.Line("")
		t.Line("最近动态:")
		t.Header("审批ID", "动态", "标题", "类型", "状态", "时间")
		for _, a := range activities {
			when := a.RelativeTime
			if when == "" {
				when = Ago(a.ActivityTime)
			}
			t.Row(a.ApprovalID, activityLabel(a.ActivityType), Truncate(a.Title, 30), Text(a.TypeName), Status(a.Status), when)
		}
	})
}

func activityLabel(activityType string) string {
	switch activityType {
	case "created":
		return "发起"
	case "approved":
		return "通过"
	case "rejected":
		return "拒绝"
	case "withdrawn":
		return "撤回"
	default:
		return activityType
	}
}

// Notifications 通知列表
func (p *Printer) Notifications(page *types.PageResult[*core.Notification], unread int64) error {
	return p.Print(page, func(t *Table) {
		t.Header("ID", "类型", "标题", "已读", "时间")
		for _, n := range page.List {
			t.Row(n.ID, n.Type, Truncate(n.Title, 40), Bool(n.IsRead), Ago(n.CreatedAt))
		}
		pageFooter(t, page)
		t.Line("未读: %s", Text(notify.Badge(unread)))
	})
}

// Users 用户列表
func (p *Printer) Users(page *types.PageResult[*core.User]) error {
	return p.Print(page, func(t *Table) {
		t.Header("ID", "用户名", "昵称", "邮箱", "部门", "角色", "状态", "最后登录")
		for _, u := range page.List {
			t.Row(u.ID, u.Username, Text(u.Nickname), Text(u.Email), Text(u.DepartmentName), Text(strings.Join(u.RoleCodes(), ",")), EnabledLabel(u.Status), Ago(u.LastLoginAt))
		}
		pageFooter(t, page)
	})
}

// User 用户详情
func (p *Printer) User(u *core.User) error {
	return p.Print(u, func(t *Table) {
		t.Field("ID", u.ID)
		t.Field("用户名", u.Username)
		t.Field("昵称", Text(u.Nickname))
		t.Field("邮箱", Text(u.Email))
		t.Field("手机号", Text(u.Phone))
		t.Field("部门", Text(u.DepartmentName))
		t.Field("角色", Text(strings.Join(u.RoleCodes(), ",")))
		t.Field("状态", EnabledLabel(u.Status))
		t.Field("头像", Text(u.Avatar))
		t.Field("最后登录", Time(u.LastLoginAt))
	})
}

// AuthUser 当前登录用户
func (p *Printer) AuthUser(u *core.AuthUser) error {
	return p.Print(u, func(t *Table) {
		t.Field("ID", u.ID)
		t.Field("用户名", u.Username)
		t.Field("昵称", Text(u.Nickname))
		t.Field("邮箱", Text(u.Email))
		t.Field("角色", Text(strings.Join(u.Roles, ",")))
	})
}

// Workflows 工作流列表
func (p *Printer) Workflows(page *types.PageResult[*core.Workflow]) error {
	return p.Print(page, func(t *Table) {
		t.Header("ID", "名称", "审批类型", "节点数", "状态", "创建人", "更新时间")
		for _, w := range page.List {
			count := w.NodeCount
			if count == 0 {
				count = len(w.Nodes)
			}
			t.Row(w.ID, w.Name, Text(w.TypeName), count, EnabledLabel(w.Status), Text(w.CreatedByName), Ago(w.UpdatedAt))
		}
		pageFooter(t, page)
	})
}

// Workflow 工作流详情
func (p *Printer) Workflow(w *core.Workflow) error {
	return p.Print(w, func(t *Table) {
		t.Field("ID", w.ID)
		t.Field("名称", w.Name)
		t.Field("审批类型", fmt.Sprintf("%s (%s)", Text(w.TypeName), w.TypeCode))
		t.Field("描述", Text(w.Description))
		t.Field("状态", EnabledLabel(w.Status))
		t.Line("")
		t.Header("顺序", "节点名称", "审批人类型", "审批人")
		for _, n := range w.Nodes {
			t.Row(n.NodeOrder, n.NodeName, n.ApproverType, approverLabel(n))
		}
	})
}

func approverLabel(n *core.WorkflowNode) string {
	if !n.ApproverType.NeedsApproverID() {
		return "-"
	}
	if n.ApproverName != "" {
		return n.ApproverName
	}
	if n.ApproverID != nil {
		return fmt.Sprintf("#%d", *n.ApproverID)
	}
	return "未指定"
}

// Departments 部门树
//
// expansion 为nil时全部展开，收起的部门前显示 +，展开的显示 -。
func (p *Printer) Departments(tree []*core.DepartmentTree, expansion *department.Expansion) error {
	if expansion == nil {
		expansion = department.NewExpansion()
	}
	return p.Print(tree, func(t *Table) {
		t.Header("部门", "ID", "负责人", "排序", "状态")
		expansion.Visible(tree, func(node *core.DepartmentTree, depth int) {
			marker := "  "
			if len(node.Children) > 0 {
				marker = "- "
				if !expansion.Expanded(node.ID) {
					marker = "+ "
				}
			}
			name := strings.Repeat("  ", depth) + marker + node.Name
			t.Row(name, node.ID, Text(node.LeaderName), node.SortOrder, EnabledLabel(node.Status))
		})
	})
}

// ParentOptions 可选的上级部门
func (p *Printer) ParentOptions(options []department.ParentOption) error {
	return p.Print(options, func(t *Table) {
		t.Header("ID", "部门")
		for _, o := range options {
			t.Row(o.ID, strings.Repeat("  ", o.Depth)+o.Name)
		}
	})
}

// Logs 操作日志
func (p *Printer) Logs(page *types.PageResult[*core.OperationLog]) error {
	return p.Print(page, func(t *Table) {
		logRows(t, page.List)
		pageFooter(t, page)
	})
}

// TargetLogs 某个对象的操作日志
func (p *Printer) TargetLogs(logs []*core.OperationLog) error {
	return p.Print(logs, func(t *Table) {
		logRows(t, logs)
	})
}

func logRows(t *Table, logs []*core.OperationLog) {
	t.Header("ID", "用户", "模块", "操作", "对象", "详情", "IP", "时间")
	for _, l := range logs {
		module := l.ModuleName
		if module == "" {
			module = core.LookupLogOption(core.LogModules, l.Module)
		}
		operation := l.OperationName
		if operation == "" {
			operation = core.LookupLogOption(core.LogOperations, l.Operation)
		}
		user := l.Username
		if l.Nickname != "" {
			user = fmt.Sprintf("%s(%s)", l.Nickname, l.Username)
		}
		t.Row(l.ID, Text(user), module, operation, Text(l.TargetID), Truncate(l.Detail, 40), Text(l.IPAddress), Time(l.CreatedAt))
	}
}

// LogStatistics 日志统计
func (p *Printer) LogStatistics(stats *core.LogStatistics) error {
	return p.Print(stats, func(t *Table) {
		t.Field("日志总数", Count(stats.TotalCount))
		t.Line("")
		t.Header("模块", "数量")
		for _, m := range stats.ModuleStats {
			t.Row(Text(m.ModuleName), Count(m.Count))
		}
		t.Line("")
		t.Header("操作", "数量")
		for _, o := range stats.OperationStats {
			t.Row(Text(o.OperationName), Count(o.Count))
		}
		if len(stats.DailyStats) > 0 {
			t.Line("")
			t.Header("日期", "数量")
			for _, d := range stats.DailyStats {
				t.Row(d.Date, Count(d.Count))
			}
		}
	})
}

// LogOptions 模块或操作类型
func (p *Printer) LogOptions(options []core.LogOption) error {
	return p.Print(options, func(t *Table) {
		t.Header("编码", "名称")
		for _, o := range options {
			t.Row(o.Code, o.Name)
		}
	})
}

// Attachment 文件信息
func (p *Printer) Attachment(a *core.Attachment, downloadURL string) error {
	return p.Print(a, func(t *Table) {
		t.Field("ID", a.ID)
		t.Field("文件名", a.FileName)
		t.Field("大小", Size(a.FileSize))
		t.Field("类型", Text(a.FileType))
		t.Field("上传时间", Time(a.UploadedAt))
		t.Field("可预览", Bool(a.PreviewSupport))
		t.Field("下载地址", downloadURL)
	})
}

// Roles 角色列表
func (p *Printer) Roles(roles []*core.RoleInfo) error {
	return p.Print(roles, func(t *Table) {
		t.Header("ID", "编码", "名称", "描述")
		for _, r := range roles {
			t.Row(r.ID, r.Code, r.Name, Text(r.Description))
		}
	})
}

// Positions 职位列表
func (p *Printer) Positions(positions []*core.Position) error {
	return p.Print(positions, func(t *Table) {
		t.Header("ID", "编码", "名称", "状态")
		for _, pos := range positions {
			t.Row(pos.ID, pos.Code, pos.Name, EnabledLabel(pos.Status))
		}
	})
}
