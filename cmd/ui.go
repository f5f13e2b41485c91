package cmd

import (
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/render"
	"github.com/spf13/cobra"
)

func (c *cli) newUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "界面偏好",
	}

	sidebar := &cobra.Command{
		Use:       "sidebar [on|off|toggle]",
		Short:     "侧边栏展开状态，保存在会话中",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager := c.app.Session
			if len(args) == 1 {
				switch args[0] {
				case "on":
					if err := manager.SetSidebar(ctx, true); err != nil {
						return err
					}
				case "off":
					if err := manager.SetSidebar(ctx, false); err != nil {
						return err
					}
				case "toggle":
					if _, err := manager.ToggleSidebar(ctx); err != nil {
						return err
					}
				default:
					return core.NewValidationError("sidebar", "只能是 on/off/toggle")
				}
			}
			state := "收起"
			if manager.SidebarOpen() {
				state = "展开"
			}
			return c.app.Printer.Print(map[string]bool{"sidebarOpen": manager.SidebarOpen()}, func(t *render.Table) {
				t.Field("侧边栏", state)
			})
		},
	}

	cmd.AddCommand(withAction(sidebar, "设置侧边栏"))
	return cmd
}
