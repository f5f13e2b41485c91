package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/codelieche/approval/pkg/core"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// 头像限制
const maxAvatarSize = 2 * 1024 * 1024

var avatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

func (c *cli) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "个人资料",
	}
	cmd.AddCommand(
		c.newProfileShowCmd(),
		c.newProfileUpdateCmd(),
		c.newProfilePasswordCmd(),
		c.newProfileAvatarCmd(),
	)
	return cmd
}

// userRequest 用当前资料生成更新请求，角色和状态不变
func userRequest(user *core.User) *core.UserRequest {
	req := &core.UserRequest{
		Username:     user.Username,
		Nickname:     user.Nickname,
		Email:        user.Email,
		Phone:        user.Phone,
		Avatar:       user.Avatar,
		DepartmentID: user.DepartmentID,
	}
	for _, role := range user.Roles {
		req.RoleIDs = append(req.RoleIDs, role.ID)
	}
	status := user.Status
	req.Status = &status
	return req
}

func (c *cli) newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "查看个人资料",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.refreshUser(cmd.Context())
			if err != nil {
				return err
			}
			return c.app.Printer.User(user)
		},
	}
	return withAction(cmd, "获取个人资料")
}

func (c *cli) newProfileUpdateCmd() *cobra.Command {
	var username, nickname, email, phone string
	cmd := &cobra.Command{
		Use:     "update",
		Short:   "修改个人资料，修改用户名后需要重新登录",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := c.currentUser()
			if err != nil {
				return err
			}
			user, err := c.app.Services.Users.Get(ctx, current.ID)
			if err != nil {
				return err
			}

			req := userRequest(user)
			flags := cmd.Flags()
			if flags.Changed("username") {
				req.Username = strings.TrimSpace(username)
			}
			if flags.Changed("nickname") {
				req.Nickname = nickname
			}
			if flags.Changed("email") {
				req.Email = email
			}
			if flags.Changed("phone") {
				req.Phone = phone
			}

			updated, err := c.app.Services.Users.Update(ctx, user.ID, req)
			if err != nil {
				return err
			}
			if updated.Username != user.Username {
				if err := c.app.Session.Logout(ctx); err != nil {
					return err
				}
				return c.app.Printer.Message("用户名已修改为 %s，请重新登录", updated.Username)
			}
			if _, err := c.refreshUser(ctx); err != nil {
				return err
			}
			return c.app.Printer.User(updated)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "用户名")
	cmd.Flags().StringVar(&nickname, "nickname", "", "昵称")
	cmd.Flags().StringVar(&email, "email", "", "邮箱")
	cmd.Flags().StringVar(&phone, "phone", "", "手机号")
	return withAction(cmd, "修改个人资料")
}

func (c *cli) newProfilePasswordCmd() *cobra.Command {
	var req core.ChangePasswordRequest
	cmd := &cobra.Command{
		Use:     "password",
		Short:   "修改密码，成功后需要重新登录",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.OldPassword == "" {
				if req.OldPassword, err = readLine(cmd, "原密码: "); err != nil {
					return err
				}
			}
			if req.NewPassword == "" {
				if req.NewPassword, err = readLine(cmd, "新密码: "); err != nil {
					return err
				}
			}
			if req.ConfirmPassword == "" {
				if req.ConfirmPassword, err = readLine(cmd, "确认新密码: "); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if err := c.app.Services.Users.ChangePassword(ctx, &req); err != nil {
				return err
			}
			if err := c.app.Session.Logout(ctx); err != nil {
				return err
			}
			return c.app.Printer.Message("密码已修改，请重新登录")
		},
	}
	cmd.Flags().StringVar(&req.OldPassword, "old", "", "原密码")
	cmd.Flags().StringVar(&req.NewPassword, "new", "", "新密码")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm", "", "确认新密码")
	return withAction(cmd, "修改密码")
}

// checkAvatar 头像只能是图片，并且不超过2MB
func checkAvatar(path string, size int64) error {
	if !avatarExtensions[strings.ToLower(filepath.Ext(path))] {
		return core.NewValidationError("avatar", "头像只能是 png/jpg/gif/webp 图片")
	}
	if size > maxAvatarSize {
		return core.NewValidationError("avatar", fmt.Sprintf("头像不能超过 %s", humanize.IBytes(maxAvatarSize)))
	}
	return nil
}

func (c *cli) newProfileAvatarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "avatar FILE",
		Short:   "上传头像",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			size, err := fileSize(args[0])
			if err != nil {
				return err
			}
			if err := checkAvatar(args[0], size); err != nil {
				return err
			}

			current, err := c.currentUser()
			if err != nil {
				return err
			}
			user, err := c.app.Services.Users.Get(ctx, current.ID)
			if err != nil {
				return err
			}
			attachment, err := c.upload(cmd, args[0])
			if err != nil {
				return err
			}

			req := userRequest(user)
			req.Avatar = attachment.FileURL
			if _, err := c.app.Services.Users.Update(ctx, user.ID, req); err != nil {
				return err
			}
			updated, err := c.refreshUser(ctx)
			if err != nil {
				return err
			}
			return c.app.Printer.User(updated)
		},
	}
	return withAction(cmd, "上传头像")
}
