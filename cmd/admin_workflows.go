package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/render"
	"github.com/codelieche/approval/pkg/workflow"
	"github.com/spf13/cobra"
)

// nodeSpec 命令行中的节点 名称:审批人类型[:审批人ID]
type nodeSpec struct {
	name         string
	approverType core.ApproverType
	approverID   *int64
}

func parseNodeSpec(raw string) (*nodeSpec, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, core.NewValidationError("nodes", fmt.Sprintf("节点格式应为 名称:审批人类型[:审批人ID]，实际: %s", raw))
	}
	approverType, err := core.ParseApproverType(strings.ToUpper(strings.TrimSpace(parts[1])))
	if err != nil {
		return nil, core.NewValidationError("nodes", err.Error())
	}
	spec := &nodeSpec{name: strings.TrimSpace(parts[0]), approverType: approverType}
	if len(parts) == 3 && parts[2] != "" {
		id, err := parseID(parts[2])
		if err != nil {
			return nil, err
		}
		spec.approverID = &id
	}
	return spec, nil
}

// parseMove 解析 FROM:TO，从1开始
func parseMove(raw string) (int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) == 2 {
		from, err1 := strconv.Atoi(parts[0])
		to, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil {
			return from - 1, to - 1, nil
		}
	}
	return 0, 0, core.NewValidationError("nodes", fmt.Sprintf("移动节点格式应为 FROM:TO，实际: %s", raw))
}

// workflowFlags 创建/修改工作流的参数
type workflowFlags struct {
	name        string
	typeCode    string
	description string
	status      string
	nodes       []string
	moves       []string
}

func (f *workflowFlags) bind(cmd *cobra.Command, withType bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "工作流名称")
	if withType {
		flags.StringVarP(&f.typeCode, "type", "t", "", "审批类型编码，创建后不可修改")
	}
	flags.StringVar(&f.description, "description", "", "描述")
	flags.StringVar(&f.status, "status", "", "状态: 1-启用 0-禁用")
	flags.StringArrayVar(&f.nodes, "node", nil, "审批节点 名称:USER|POSITION|DEPARTMENT_HEAD[:审批人ID]，按顺序多次指定，会替换全部节点")
	flags.StringArrayVar(&f.moves, "move", nil, "移动节点 FROM:TO，从1开始")
}

// apply 把参数写入编辑器
func (c *cli) applyWorkflowFlags(ctx context.Context, cmd *cobra.Command, f *workflowFlags, editor *workflow.Editor) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		editor.SetName(f.name)
	}
	if flags.Changed("type") {
		if err := editor.SetTypeCode(f.typeCode); err != nil {
			return err
		}
	}
	if flags.Changed("description") {
		editor.SetDescription(f.description)
	}
	if flags.Changed("status") {
		status, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		if err := editor.SetStatus(status); err != nil {
			return err
		}
	}

	if len(f.nodes) > 0 {
		specs := make([]*nodeSpec, 0, len(f.nodes))
		for _, raw := range f.nodes {
			spec, err := parseNodeSpec(raw)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		for len(editor.Nodes()) > len(specs) {
			if err := editor.RemoveNode(len(editor.Nodes()) - 1); err != nil {
				return err
			}
		}
		for len(editor.Nodes()) < len(specs) {
			editor.AddNode()
		}
		for i, spec := range specs {
			if err := editor.SetApproverType(i, spec.approverType); err != nil {
				return err
			}
			patch := workflow.NodePatch{NodeName: &spec.name, ApproverID: spec.approverID}
			if spec.approverID != nil {
				name := c.approverName(ctx, spec.approverType, *spec.approverID)
				patch.ApproverName = &name
			}
			if err := editor.UpdateNode(i, patch); err != nil {
				return err
			}
		}
	}

	for _, raw := range f.moves {
		from, to, err := parseMove(raw)
		if err != nil {
			return err
		}
		if err := editor.MoveNode(from, to); err != nil {
			return core.NewValidationError("nodes", err.Error())
		}
	}
	return nil
}

// approverName 审批人的显示名称，查不到时为空
func (c *cli) approverName(ctx context.Context, approverType core.ApproverType, id int64) string {
	switch approverType {
	case core.ApproverTypeUser:
		if user, err := c.app.Services.Users.Get(ctx, id); err == nil {
			if user.Nickname != "" {
				return user.Nickname
			}
			return user.Username
		}
	case core.ApproverTypePosition:
		if positions, err := c.app.Services.Positions.List(ctx); err == nil {
			for _, p := range positions {
				if p.ID == id {
					return p.Name
				}
			}
		}
	}
	return ""
}

func (c *cli) newAdminWorkflowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow", "wf"},
		Short:   "工作流模板管理",
	}

	var (
		typeCode string
		page     pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "工作流列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &core.WorkflowQuery{Pagination: page.pagination(), TypeCode: typeCode}
			var err error
			if query.Status, err = optionalInt(cmd, "status"); err != nil {
				return err
			}
			result, err := c.app.Services.Workflows.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			return c.app.Printer.Workflows(result)
		},
	}
	list.Flags().StringVarP(&typeCode, "type", "t", "", "审批类型编码")
	list.Flags().Int("status", -1, "状态过滤: 1-启用 0-禁用，不指定时不过滤")
	page.bind(list)

	show := &cobra.Command{
		Use:   "show ID|TYPE",
		Short: "工作流详情，参数可以是ID或审批类型编码",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				w   *core.Workflow
				err error
			)
			if id, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil {
				w, err = c.app.Services.Workflows.Get(ctx, id)
			} else {
				w, err = c.app.Services.Workflows.GetByType(ctx, args[0])
				if err == nil && w == nil {
					return fmt.Errorf("%w: 审批类型 %s 还没有配置工作流", core.ErrNotFound, args[0])
				}
			}
			if err != nil {
				return err
			}
			return c.app.Printer.Workflow(w)
		},
	}

	var createFlags workflowFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "创建工作流，未指定节点时默认一个直属上级节点",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor := workflow.NewEditor()
			if err := c.applyWorkflowFlags(ctx, cmd, &createFlags, editor); err != nil {
				return err
			}
			req, err := editor.CreateRequest()
			if err != nil {
				return err
			}
			w, err := c.app.Services.Workflows.Create(ctx, req)
			if err != nil {
				return err
			}
			return c.app.Printer.Workflow(w)
		},
	}
	createFlags.bind(create, true)

	var updateFlags workflowFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "修改工作流",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := c.app.Services.Workflows.Get(ctx, id)
			if err != nil {
				return err
			}
			editor := workflow.EditWorkflow(current)
			if err := c.applyWorkflowFlags(ctx, cmd, &updateFlags, editor); err != nil {
				return err
			}
			req, err := editor.UpdateRequest()
			if err != nil {
				return err
			}
			w, err := c.app.Services.Workflows.Update(ctx, id, req)
			if err != nil {
				return err
			}
			return c.app.Printer.Workflow(w)
		},
	}
	updateFlags.bind(update, false)

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "删除工作流",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Services.Workflows.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.app.Printer.Message("已删除工作流 %d", id)
		},
	}

	status := &cobra.Command{
		Use:   "status ID 0|1",
		Short: "启用或禁用工作流",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			value, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if err := c.app.Services.Workflows.UpdateStatus(cmd.Context(), id, value); err != nil {
				return err
			}
			return c.app.Printer.Message("工作流 %d 已%s", id, render.EnabledLabel(value))
		},
	}

	cmd.AddCommand(
		withAction(list, "获取工作流列表"),
		withAction(show, "获取工作流"),
		withAction(create, "创建工作流"),
		withAction(update, "修改工作流"),
		withAction(remove, "删除工作流"),
		withAction(status, "修改工作流状态"),
	)
	return cmd
}
