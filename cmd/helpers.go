package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/spf13/cobra"
)

// withAction 设置失败提示中的动作名称
func withAction(cmd *cobra.Command, action string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationAction] = action
	return cmd
}

// parseID 解析数字ID
func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", fmt.Sprintf("无效的ID: %s", value))
	}
	return id, nil
}

// parseStatus 解析启用/禁用状态
func parseStatus(value string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "on", "enable", "enabled", "启用":
		return 1, nil
	case "0", "off", "disable", "disabled", "禁用":
		return 0, nil
	default:
		return 0, core.NewValidationError("status", fmt.Sprintf("无效的状态: %s", value))
	}
}

// readLine 从标准输入读取一行，用于不在命令行中出现的密码
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("读取输入失败: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// pageFlags 分页参数
type pageFlags struct {
	page     int
	pageSize int
}

func (p *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "页码")
	cmd.Flags().IntVar(&p.pageSize, "page-size", types.DefaultPaginationConfig.DefaultPageSize, "每页数量")
}

func (p *pageFlags) pagination() types.Pagination {
	return types.NewPagination(p.page, p.pageSize)
}

// optionalInt 标志设置过时返回指针
func optionalInt(cmd *cobra.Command, name string) (*int, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// optionalInt64 标志设置过时返回指针
func optionalInt64(cmd *cobra.Command, name string) (*int64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	value, err := cmd.Flags().GetInt64(name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// currentUser 已登录的用户
func (c *cli) currentUser() (*core.AuthUser, error) {
	return c.app.Session.RequireUser()
}

// requireLogin 需要登录的命令
func (c *cli) requireLogin(cmd *cobra.Command, args []string) error {
	_, err := c.currentUser()
	return err
}

// refreshUser 重新获取当前用户并更新会话
func (c *cli) refreshUser(ctx context.Context) (*core.User, error) {
	current, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	user, err := c.app.Services.Users.Get(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	updated := *current
	updated.Username = user.Username
	updated.Nickname = user.Nickname
	updated.Email = user.Email
	updated.Avatar = user.Avatar
	updated.DepartmentID = user.DepartmentID
	if len(user.Roles) > 0 {
		updated.Roles = user.RoleCodes()
	}
	if err := c.app.Session.SetUser(ctx, &updated); err != nil {
		return nil, err
	}
	return user, nil
}
