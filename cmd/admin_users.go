package cmd

import (
	"fmt"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/render"
	"github.com/codelieche/approval/pkg/utils/tools"
	"github.com/spf13/cobra"
)

// userFlags 创建/修改用户的参数
type userFlags struct {
	username     string
	password     string
	nickname     string
	email        string
	phone        string
	departmentID int64
	roleIDs      []int64
	status       string
}

func (f *userFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.username, "username", "u", "", "用户名")
	flags.StringVarP(&f.password, "password", "p", "", "密码，创建时为空则随机生成，修改时为空表示不修改")
	flags.StringVar(&f.nickname, "nickname", "", "昵称")
	flags.StringVar(&f.email, "email", "", "邮箱")
	flags.StringVar(&f.phone, "phone", "", "手机号")
	flags.Int64Var(&f.departmentID, "department", 0, "部门ID")
	flags.Int64SliceVar(&f.roleIDs, "role", nil, "角色ID，可以多次指定")
	flags.StringVar(&f.status, "status", "", "状态: 1-启用 0-禁用")
}

// apply 把设置过的参数写入请求
func (f *userFlags) apply(cmd *cobra.Command, req *core.UserRequest) error {
	flags := cmd.Flags()
	if flags.Changed("username") {
		req.Username = f.username
	}
	if flags.Changed("password") {
		req.Password = f.password
	}
	if flags.Changed("nickname") {
		req.Nickname = f.nickname
	}
	if flags.Changed("email") {
		req.Email = f.email
	}
	if flags.Changed("phone") {
		req.Phone = f.phone
	}
	if flags.Changed("department") {
		id := f.departmentID
		req.DepartmentID = &id
		if id == 0 {
			req.DepartmentID = nil
		}
	}
	if flags.Changed("role") {
		req.RoleIDs = f.roleIDs
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

func (c *cli) newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "用户管理",
	}

	var (
		keyword string
		page    pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "用户列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &core.UserQuery{Pagination: page.pagination(), Keyword: keyword}
			var err error
			if query.Status, err = optionalInt(cmd, "status"); err != nil {
				return err
			}
			if query.DepartmentID, err = optionalInt64(cmd, "department"); err != nil {
				return err
			}
			result, err := c.app.Services.Users.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			return c.app.Printer.Users(result)
		},
	}
	list.Flags().StringVarP(&keyword, "keyword", "k", "", "用户名/昵称/邮箱关键词")
	list.Flags().Int("status", -1, "状态过滤: 1-启用 0-禁用，不指定时不过滤")
	list.Flags().Int64("department", 0, "部门ID")
	page.bind(list)

	var createFlags userFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "创建用户",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := 1
			req := &core.UserRequest{Status: &status}
			if err := createFlags.apply(cmd, req); err != nil {
				return err
			}
			if req.Nickname == "" {
				req.Nickname = req.Username
			}
			// 未指定密码时生成随机密码，只显示这一次
			generated := req.Password == ""
			if generated {
				req.Password = tools.RandomPassword(16)
			}
			user, err := c.app.Services.Users.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			if generated {
				fmt.Fprintf(cmd.ErrOrStderr(), "初始密码: %s\n", req.Password)
			}
			return c.app.Printer.User(user)
		},
	}
	createFlags.bind(create)

	var updateFlags userFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "修改用户",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := c.app.Services.Users.Get(ctx, id)
			if err != nil {
				return err
			}
			req := userRequest(user)
			if err := updateFlags.apply(cmd, req); err != nil {
				return err
			}
			updated, err := c.app.Services.Users.Update(ctx, id, req)
			if err != nil {
				return err
			}
			return c.app.Printer.User(updated)
		},
	}
	updateFlags.bind(update)

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "删除用户",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := c.currentUser()
			if err != nil {
				return err
			}
			if current.ID == id {
				return core.NewValidationError("id", "不能删除当前登录的用户")
			}
			if err := c.app.Services.Users.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.app.Printer.Message("已删除用户 %d", id)
		},
	}

	status := &cobra.Command{
		Use:   "status ID 0|1",
		Short: "启用或禁用用户",
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
			if err := c.app.Services.Users.UpdateStatus(cmd.Context(), id, value); err != nil {
				return err
			}
			return c.app.Printer.Message("用户 %d 已%s", id, render.EnabledLabel(value))
		},
	}

	roles := &cobra.Command{
		Use:   "roles",
		Short: "角色列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.Services.Roles.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.app.Printer.Roles(list)
		},
	}

	positions := &cobra.Command{
		Use:   "positions",
		Short: "职位列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.Services.Positions.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.app.Printer.Positions(list)
		},
	}

	cmd.AddCommand(
		withAction(list, "获取用户列表"),
		withAction(create, "创建用户"),
		withAction(update, "修改用户"),
		withAction(remove, "删除用户"),
		withAction(status, "修改用户状态"),
		withAction(roles, "获取角色列表"),
		withAction(positions, "获取职位列表"),
	)
	return cmd
}
