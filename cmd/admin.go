package cmd

import (
	"github.com/spf13/cobra"
)

func (c *cli) newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "系统管理，需要管理员角色",
	}
	cmd.AddCommand(
		c.newAdminUsersCmd(),
		c.newAdminWorkflowsCmd(),
		c.newAdminDepartmentsCmd(),
		c.newAdminApprovalTypesCmd(),
		c.newAdminLogsCmd(),
	)
	adminOnly(cmd, c.requireAdmin)
	return cmd
}

// requireAdmin 只在本地按角色判断，服务端仍然会校验
func (c *cli) requireAdmin(cmd *cobra.Command, args []string) error {
	_, err := c.app.Session.RequireAdmin()
	return err
}

// adminOnly 给所有可执行的子命令加上管理员检查
func adminOnly(cmd *cobra.Command, check func(cmd *cobra.Command, args []string) error) {
	for _, child := range cmd.Commands() {
		adminOnly(child, check)
	}
	if cmd.RunE == nil {
		return
	}
	pre := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return err
		}
		if pre != nil {
			return pre(cmd, args)
		}
		return nil
	}
}
