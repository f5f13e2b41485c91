package cmd

import (
	"github.com/codelieche/approval/pkg/core"
	"github.com/spf13/cobra"
)

// approvalTypeFlags 创建/修改审批类型的参数
type approvalTypeFlags struct {
	code        string
	name        string
	description string
	icon        string
	color       string
	status      string
}

func (f *approvalTypeFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.code, "code", "", "类型编码，例如 LEAVE")
	flags.StringVar(&f.name, "name", "", "类型名称")
	flags.StringVar(&f.description, "description", "", "描述")
	flags.StringVar(&f.icon, "icon", "", "图标")
	flags.StringVar(&f.color, "color", "", "颜色")
	flags.StringVar(&f.status, "status", "", "状态: 1-启用 0-禁用")
}

func (f *approvalTypeFlags) apply(cmd *cobra.Command, req *core.ApprovalTypeRequest) error {
	flags := cmd.Flags()
	if flags.Changed("code") {
		req.Code = f.code
	}
	if flags.Changed("name") {
		req.Name = f.name
	}
	if flags.Changed("description") {
		req.Description = f.description
	}
	if flags.Changed("icon") {
		req.Icon = f.icon
	}
	if flags.Changed("color") {
		req.Color = f.color
	}
	if flags.Changed("status") {
		status, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		req.Status = &status
	}
	return nil
}

func (c *cli) newAdminApprovalTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approval-types",
		Aliases: []string{"types"},
		Short:   "审批类型管理",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "审批类型列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Services.ApprovalTypes.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.app.Printer.ApprovalTypes(result)
		},
	}

	var createFlags approvalTypeFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "创建审批类型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &core.ApprovalTypeRequest{}
			if err := createFlags.apply(cmd, req); err != nil {
				return err
			}
			created, err := c.app.Services.ApprovalTypes.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.app.Printer.ApprovalTypes([]*core.ApprovalType{created})
		},
	}
	createFlags.bind(create)

	var updateFlags approvalTypeFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "修改审批类型，编码不可修改",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := c.app.Services.ApprovalTypes.Get(ctx, id)
			if err != nil {
				return err
			}
			status := current.Status
			req := &core.ApprovalTypeRequest{
				Code:        current.Code,
				Name:        current.Name,
				Description: current.Description,
				Icon:        current.Icon,
				Color:       current.Color,
				Status:      &status,
			}
			if err := updateFlags.apply(cmd, req); err != nil {
				return err
			}
			if req.Code != current.Code {
				return core.NewValidationError("code", "审批类型编码创建后不能修改")
			}
			updated, err := c.app.Services.ApprovalTypes.Update(ctx, id, req)
			if err != nil {
				return err
			}
			return c.app.Printer.ApprovalTypes([]*core.ApprovalType{updated})
		},
	}
	updateFlags.bind(update)

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "删除审批类型",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Services.ApprovalTypes.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.app.Printer.Message("已删除审批类型 %d", id)
		},
	}

	cmd.AddCommand(
		withAction(list, "获取审批类型"),
		withAction(create, "创建审批类型"),
		withAction(update, "修改审批类型"),
		withAction(remove, "删除审批类型"),
	)
	return cmd
}
