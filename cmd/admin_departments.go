package cmd

import (
	"context"
	"fmt"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/department"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// departmentTree 取部门列表在本地组装成树，负责人名称从用户列表中补充
func (c *cli) departmentTree(ctx context.Context) ([]*core.DepartmentTree, error) {
	flat, err := c.app.Services.Departments.List(ctx)
	if err != nil {
		return nil, err
	}
	leaderNames := map[int64]string{}
	if users, err := c.app.Services.Users.All(ctx); err == nil {
		for _, u := range users {
			name := u.Nickname
			if name == "" {
				name = u.Username
			}
			leaderNames[u.ID] = name
		}
	} else {
		logger.Warn("获取负责人名称失败", zap.Error(err))
	}
	return department.BuildTree(flat, leaderNames), nil
}

// printDepartmentTree 重新获取并输出完整的部门树
func (c *cli) printDepartmentTree(ctx context.Context, collapse []int64) error {
	nodes, err := c.departmentTree(ctx)
	if err != nil {
		return err
	}
	expansion := department.NewExpansion()
	for _, id := range collapse {
		expansion.Collapse(id)
	}
	return c.app.Printer.Departments(nodes, expansion)
}

// departmentFlags 创建/修改部门的参数
type departmentFlags struct {
	name      string
	parentID  int64
	leaderID  int64
	sortOrder int
	status    string
}

func (f *departmentFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "部门名称")
	flags.Int64Var(&f.parentID, "parent", department.RootOption, "上级部门ID，0表示顶级部门")
	flags.Int64Var(&f.leaderID, "leader", 0, "负责人用户ID，0表示不设置")
	flags.IntVar(&f.sortOrder, "sort", 0, "排序，越小越靠前")
	flags.StringVar(&f.status, "status", "", "状态: 1-启用 0-禁用")
}

func (f *departmentFlags) apply(cmd *cobra.Command, req *core.DepartmentRequest) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		req.Name = f.name
	}
	if flags.Changed("parent") {
		req.ParentID = f.parentID
	}
	if flags.Changed("leader") {
		req.LeaderID = nil
		if f.leaderID > 0 {
			id := f.leaderID
			req.LeaderID = &id
		}
	}
	if flags.Changed("sort") {
		req.SortOrder = f.sortOrder
	}
	if flags.Changed("status") {
		status, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		req.Status = status
	}
	return nil
}

// checkParent 上级部门不能是自己或自己的下级
func checkParent(tree []*core.DepartmentTree, editingID, parentID int64) error {
	if parentID != department.RootOption && department.Find(tree, parentID) == nil {
		return core.NewValidationError("parentId", "上级部门不存在")
	}
	if !department.ValidParent(tree, editingID, parentID) {
		return core.NewValidationError("parentId", "不能选择自己或下级部门作为上级部门")
	}
	return nil
}

func (c *cli) newAdminDepartmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"department", "dept"},
		Short:   "部门管理",
	}

	var collapse []int64
	tree := &cobra.Command{
		Use:   "tree",
		Short: "部门树",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printDepartmentTree(cmd.Context(), collapse)
		},
	}
	tree.Flags().Int64SliceVar(&collapse, "collapse", nil, "收起的部门ID")

	var editing int64
	parents := &cobra.Command{
		Use:   "parents",
		Short: "可以选择的上级部门",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := c.departmentTree(cmd.Context())
			if err != nil {
				return err
			}
			return c.app.Printer.ParentOptions(department.ParentOptions(nodes, editing))
		},
	}
	parents.Flags().Int64Var(&editing, "editing", 0, "正在编辑的部门ID，会排除它和它的下级")

	var createFlags departmentFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "创建部门",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := &core.DepartmentRequest{Status: 1}
			if err := createFlags.apply(cmd, req); err != nil {
				return err
			}
			nodes, err := c.departmentTree(ctx)
			if err != nil {
				return err
			}
			if err := checkParent(nodes, department.RootOption, req.ParentID); err != nil {
				return err
			}
			created, err := c.app.Services.Departments.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "已创建部门 %s (ID %d)\n", created.Name, created.ID)
			return c.printDepartmentTree(ctx, nil)
		},
	}
	createFlags.bind(create)

	var updateFlags departmentFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "修改部门",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := c.app.Services.Departments.Get(ctx, id)
			if err != nil {
				return err
			}
			req := &core.DepartmentRequest{
				Name:      current.Name,
				ParentID:  current.ParentID,
				LeaderID:  current.LeaderID,
				SortOrder: current.SortOrder,
				Status:    current.Status,
			}
			if err := updateFlags.apply(cmd, req); err != nil {
				return err
			}
			if req.ParentID != current.ParentID {
				nodes, err := c.departmentTree(ctx)
				if err != nil {
					return err
				}
				if err := checkParent(nodes, id, req.ParentID); err != nil {
					return err
				}
			}
			updated, err := c.app.Services.Departments.Update(ctx, id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "已修改部门 %s (ID %d)\n", updated.Name, updated.ID)
			return c.printDepartmentTree(ctx, nil)
		},
	}
	updateFlags.bind(update)

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "删除部门，有下级部门时不能删除",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.app.Services.Departments.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "已删除部门 %d\n", id)
			return c.printDepartmentTree(ctx, nil)
		},
	}

	cmd.AddCommand(
		withAction(tree, "获取部门树"),
		withAction(parents, "获取上级部门"),
		withAction(create, "创建部门"),
		withAction(update, "修改部门"),
		withAction(remove, "删除部门"),
	)
	return cmd
}
