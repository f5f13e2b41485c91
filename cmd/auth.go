package cmd

import (
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/notify"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) newLoginCmd() *cobra.Command {
	var req core.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "登录",
		Long:  "使用用户名和密码登录，未指定 --password 时从标准输入读取。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				password, err := readLine(cmd, "密码: ")
				if err != nil {
					return err
				}
				req.Password = password
			}

			ctx := cmd.Context()
			resp, err := c.app.Services.Auth.Login(ctx, &req)
			if err != nil {
				return err
			}
			if err := c.app.Session.Login(ctx, resp); err != nil {
				return err
			}

			// 登录后顺便提示未读通知
			badge := ""
			if count, err := c.app.Services.Notifications.UnreadCount(ctx); err == nil {
				badge = notify.Badge(count)
			} else {
				logger.Warn("获取未读通知数量失败", zap.Error(err))
			}
			if badge != "" {
				return c.app.Printer.Message("登录成功，欢迎 %s (未读通知 %s)", resp.User.DisplayName(), badge)
			}
			return c.app.Printer.Message("登录成功，欢迎 %s", resp.User.DisplayName())
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "用户名")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "密码")
	return withAction(cmd, "登录")
}

func (c *cli) newRegisterCmd() *cobra.Command {
	var req core.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "注册新用户",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				password, err := readLine(cmd, "密码: ")
				if err != nil {
					return err
				}
				req.Password = password
			}
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			if err := c.app.Services.Auth.Register(cmd.Context(), &req); err != nil {
				return err
			}
			return c.app.Printer.Message("注册成功，请使用 approvalctl login 登录")
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "用户名")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "密码")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "确认密码，默认与密码相同")
	cmd.Flags().StringVar(&req.Nickname, "nickname", "", "昵称，默认使用用户名")
	cmd.Flags().StringVar(&req.Email, "email", "", "邮箱")
	return withAction(cmd, "注册")
}

func (c *cli) newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "退出登录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			return c.app.Printer.Message("已退出登录")
		},
	}
	return withAction(cmd, "退出登录")
}

func (c *cli) newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "当前登录的用户",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.currentUser()
			if err != nil {
				return err
			}
			return c.app.Printer.AuthUser(user)
		},
	}
	return withAction(cmd, "获取当前用户")
}

func (c *cli) newDashboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "dashboard",
		Short:   "工作台：审批统计和最近动态",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stats, err := c.app.Services.Dashboard.Statistics(ctx)
			if err != nil {
				return err
			}
			activities, err := c.app.Services.Dashboard.RecentActivities(ctx, limit)
			if err != nil {
				return err
			}
			return c.app.Printer.Dashboard(stats, activities)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "最近动态条数")
	return withAction(cmd, "获取工作台")
}
