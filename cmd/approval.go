package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codelieche/approval/pkg/approval"
	"github.com/codelieche/approval/pkg/content"
	"github.com/codelieche/approval/pkg/core"
	"github.com/spf13/cobra"
)

func (c *cli) newApprovalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approval",
		Aliases: []string{"approvals", "ap"},
		Short:   "审批：发起、查看和处理",
	}
	cmd.AddCommand(
		c.newApprovalListCmd(),
		c.newApprovalTypesCmd(),
		c.newApprovalNewCmd(),
		c.newApprovalShowCmd(),
		c.newApprovalActionCmd("approve", "审批通过"),
		c.newApprovalActionCmd("reject", "审批拒绝"),
		c.newApprovalActionCmd("withdraw", "撤回审批"),
	)
	return cmd
}

func (c *cli) newApprovalListCmd() *cobra.Command {
	var (
		tab    string
		status string
		where  string
		page   pageFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "审批列表：待我审批、我发起的、已处理",
		Long: `审批列表

--tab todo       待我审批
--tab initiated  我发起的
--tab done       已处理，只显示已通过、已拒绝、已撤回的审批

--where 在当前页上再做一次过滤，例如:
  approvalctl approval list --tab initiated --where 'typeCode == "LEAVE" && priority > 0'
可用字段: id title typeCode status priority initiatorName currentNodeOrder`,
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := approval.ParseTab(tab)
			if err != nil {
				return err
			}
			review := c.app.NewReview()
			if err := review.SetActive(active); err != nil {
				return err
			}
			review.SetPage(active, page.page, page.pageSize)
			if status != "" {
				s, err := core.ParseApprovalStatus(status)
				if err != nil {
					return core.NewValidationError("status", err.Error())
				}
				if err := review.SetStatus(active, &s); err != nil {
					return err
				}
				// 修改过滤条件会回到第一页，这里保留命令行指定的页码
				review.SetPage(active, page.page, page.pageSize)
			}

			result, err := review.LoadTab(cmd.Context(), active)
			if err != nil {
				return err
			}
			if where != "" {
				matched, err := c.app.Filter.Apply(where, result.List)
				if err != nil {
					return err
				}
				keep := make(map[string]bool, len(matched))
				for _, record := range matched {
					keep[record.ID] = true
				}
				result = result.Filter(func(record *core.ApprovalRecord) bool {
					return keep[record.ID]
				})
			}
			return c.app.Printer.Approvals(result)
		},
	}
	cmd.Flags().StringVar(&tab, "tab", string(approval.TabInitiated), "列表: initiated/todo/done")
	cmd.Flags().StringVar(&status, "status", "", "状态过滤: 0-5 或 pending/approved/rejected/withdrawn 等")
	cmd.Flags().StringVar(&where, "where", "", "过滤表达式")
	page.bind(cmd)
	_ = cmd.RegisterFlagCompletionFunc("tab", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(approval.Tabs))
		for _, t := range approval.Tabs {
			names = append(names, string(t))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return withAction(cmd, "获取审批列表")
}

func (c *cli) newApprovalTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "types",
		Short:   "可以发起的审批类型",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			wizard := c.app.NewWizard()
			if err := wizard.LoadTypes(cmd.Context()); err != nil {
				return err
			}
			return c.app.Printer.ApprovalTypes(wizard.Types())
		},
	}
	return withAction(cmd, "获取审批类型")
}

// approvalForm 发起审批的表单参数
type approvalForm struct {
	typeCode      string
	title         string
	priority      int
	deadline      string
	contentJSON   string
	attach        []string
	attachmentIDs []string

	// 请假
	leaveType string
	startDate string
	endDate   string
	reason    string

	// 报销
	expenseType string
	items       []string
	remark      string

	// 通用
	text string
}

// fill 把命令行参数填入对应类型的内容
func (f *approvalForm) fill(c content.Content) error {
	switch v := c.(type) {
	case *content.LeaveContent:
		v.LeaveType = f.leaveType
		v.Reason = f.reason
		v.SetDates(f.startDate, f.endDate)
	case *content.ExpenseContent:
		v.ExpenseType = f.expenseType
		v.Remark = f.remark
		for i, raw := range f.items {
			item, err := parseExpenseItem(raw, f.expenseType)
			if err != nil {
				return err
			}
			if i == 0 {
				if err := v.UpdateItem(0, item); err != nil {
					return err
				}
				continue
			}
			v.AddItem(item)
		}
	case *content.GeneralContent:
		v.Content = f.text
	}
	return nil
}

// parseExpenseItem 解析 金额[:说明[:类型]]
func parseExpenseItem(raw, defaultType string) (content.ExpenseItem, error) {
	parts := strings.SplitN(raw, ":", 3)
	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return content.ExpenseItem{}, core.NewValidationError("items", fmt.Sprintf("无效的金额: %s", parts[0]))
	}
	item := content.ExpenseItem{Type: defaultType, Amount: amount}
	if len(parts) > 1 {
		item.Description = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		item.Type = parts[2]
	}
	return item, nil
}

func (c *cli) newApprovalNewCmd() *cobra.Command {
	var form approvalForm
	cmd := &cobra.Command{
		Use:   "new",
		Short: "发起审批",
		Long: `发起审批

请假:  approvalctl approval new --type LEAVE --leave-type annual --start 2024-01-01 --end 2024-01-03 --reason 回家
报销:  approvalctl approval new --type EXPENSE --expense-type travel --item 1200:机票 --item 300:酒店
其他:  approvalctl approval new --type GENERAL --text "申请一台显示器"

也可以用 --content 直接传入JSON内容，--attach 上传本地文件作为附件。`,
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wizard := c.app.NewWizard()
			if err := wizard.LoadTypes(ctx); err != nil {
				return err
			}
			if err := wizard.SelectType(form.typeCode); err != nil {
				return err
			}
			if form.title != "" {
				wizard.SetTitle(form.title)
			}
			if err := wizard.SetPriority(core.Priority(form.priority)); err != nil {
				return err
			}
			if err := wizard.SetDeadline(form.deadline); err != nil {
				return err
			}

			if form.contentJSON != "" {
				if !json.Valid([]byte(form.contentJSON)) {
					return core.NewValidationError("content", "审批内容不是有效的JSON")
				}
				if err := wizard.SetContent(content.Decode(wizard.Selected().Code, form.contentJSON)); err != nil {
					return err
				}
			} else if err := form.fill(wizard.Content()); err != nil {
				return err
			}
			// 先在本地校验，避免上传附件后才发现表单有误
			if err := wizard.Validate(); err != nil {
				return err
			}

			for _, id := range form.attachmentIDs {
				attachment, err := c.app.Services.Files.Get(ctx, id)
				if err != nil {
					return err
				}
				wizard.AddAttachment(attachment)
			}
			for _, path := range form.attach {
				attachment, err := c.upload(cmd, path)
				if err != nil {
					return err
				}
				wizard.AddAttachment(attachment)
			}

			record, err := wizard.Submit(ctx)
			if err != nil {
				return err
			}
			return c.app.Printer.Approval(record)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&form.typeCode, "type", "t", "", "审批类型编码，见 approvalctl approval types")
	flags.StringVar(&form.title, "title", "", "标题，默认 <类型>申请 - <日期>")
	flags.IntVar(&form.priority, "priority", 0, "优先级: 0-普通 1-紧急 2-非常紧急")
	flags.StringVar(&form.deadline, "deadline", "", "截止日期 YYYY-MM-DD")
	flags.StringVar(&form.contentJSON, "content", "", "JSON格式的审批内容")
	flags.StringSliceVar(&form.attach, "attach", nil, "上传本地文件作为附件，可以多次指定")
	flags.StringSliceVar(&form.attachmentIDs, "attachment-id", nil, "已上传的附件ID")
	flags.StringVar(&form.leaveType, "leave-type", "", "请假类型: annual/sick/personal/marriage/maternity/bereavement")
	flags.StringVar(&form.startDate, "start", "", "请假开始日期 YYYY-MM-DD")
	flags.StringVar(&form.endDate, "end", "", "请假结束日期 YYYY-MM-DD")
	flags.StringVar(&form.reason, "reason", "", "请假事由")
	flags.StringVar(&form.expenseType, "expense-type", "", "报销类型: travel/office/entertainment/training/equipment/other")
	flags.StringArrayVar(&form.items, "item", nil, "费用明细 金额[:说明[:类型]]，可以多次指定")
	flags.StringVar(&form.remark, "remark", "", "报销备注")
	flags.StringVar(&form.text, "text", "", "审批内容")
	_ = cmd.MarkFlagRequired("type")
	return withAction(cmd, "提交审批")
}

// availableActions 当前用户可以执行的操作
func availableActions(record *core.ApprovalRecord, user *core.AuthUser) []string {
	var actions []string
	if approval.CanAct(record, user) {
		actions = append(actions, "approve", "reject")
	}
	if approval.CanWithdraw(record, user) {
		actions = append(actions, "withdraw")
	}
	return actions
}

func (c *cli) newApprovalShowCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:     "show ID",
		Short:   "审批详情",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.currentUser()
			if err != nil {
				return err
			}
			review := c.app.NewReview()
			record, err := review.Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if strict {
				if err := approval.CheckNodeInvariant(record); err != nil {
					return err
				}
			}
			return c.app.Printer.ApprovalDetail(record, availableActions(record, user))
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "审批节点状态不一致时报错")
	return withAction(cmd, "获取审批详情")
}

// newApprovalActionCmd approve/reject/withdraw
func (c *cli) newApprovalActionCmd(name, action string) *cobra.Command {
	var (
		comment string
		force   bool
	)
	cmd := &cobra.Command{
		Use:     name + " ID",
		Short:   action,
		Args:    cobra.ExactArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := c.currentUser()
			if err != nil {
				return err
			}
			review := c.app.NewReview()
			record, err := review.Select(ctx, args[0])
			if err != nil {
				return err
			}

			// 本地判断只用于提示，--force 时交给服务端判断
			allowed := approval.CanAct(record, user)
			if name == "withdraw" {
				allowed = approval.CanWithdraw(record, user)
			}
			if !allowed && !force {
				return fmt.Errorf("%w: 当前状态为%s，你不能执行该操作 (使用 --force 仍然提交)", core.ErrForbidden, record.Status)
			}

			switch name {
			case "approve":
				err = review.Approve(ctx, comment)
			case "reject":
				err = review.Reject(ctx, comment)
			default:
				err = review.Withdraw(ctx)
			}
			if err != nil {
				return err
			}
			return c.app.Printer.Approval(review.Detail())
		},
	}
	if name != "withdraw" {
		usage := "审批意见"
		if name == "reject" {
			usage = "审批意见，拒绝时必填"
		}
		cmd.Flags().StringVarP(&comment, "comment", "m", "", usage)
	}
	cmd.Flags().BoolVar(&force, "force", false, "跳过本地权限判断")
	return withAction(cmd, action)
}

// upload 上传文件，进度输出到stderr
func (c *cli) upload(cmd *cobra.Command, path string) (*core.Attachment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	size := int64(-1)
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	name := filepath.Base(path)
	progress := func(percent int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r上传 %s: %3d%%", name, percent)
		if percent >= 100 {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
	return c.app.Services.Files.Upload(cmd.Context(), name, file, size, progress)
}
