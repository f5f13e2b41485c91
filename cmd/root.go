// Package cmd approvalctl 命令行
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/codelieche/approval/pkg/app"
	"github.com/codelieche/approval/pkg/render"
	"github.com/spf13/cobra"
)

// annotationAction 命令失败时提示中的动作名称
const annotationAction = "action"

// cli 命令共享的状态，app 在执行命令前创建
type cli struct {
	opts app.Options
	app  *app.App
}

// newCLI 创建命令行
func newCLI(opts app.Options) *cli {
	return &cli{opts: opts}
}

// root 根命令
func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "approvalctl",
		Short: "审批系统命令行客户端",
		Long: `approvalctl 是审批系统的命令行客户端，
可以发起和处理审批、查看通知，管理员还可以维护用户、部门、审批类型和工作流。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.app = app.NewApp(c.opts)
			return c.app.Initialize(cmd.Context())
		},
	}
	if c.opts.Out != nil {
		root.SetOut(c.opts.Out)
	}
	if c.opts.ErrOut != nil {
		root.SetErr(c.opts.ErrOut)
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigFile, "config", "", "配置文件路径 (默认 $HOME/.approvalctl/config.yaml)")
	flags.BoolVarP(&c.opts.Verbose, "verbose", "v", false, "输出调试日志")
	flags.StringVarP(&c.opts.Output, "output", "o", "", "输出格式: table/json/yaml")
	flags.BoolVar(&c.opts.MetricsDump, "metrics-dump", false, "退出前输出请求指标")
	_ = root.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		c.newLoginCmd(),
		c.newRegisterCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newDashboardCmd(),
		c.newApprovalCmd(),
		c.newProfileCmd(),
		c.newNotificationsCmd(),
		c.newAdminCmd(),
		c.newFilesCmd(),
		c.newUICmd(),
	)
	return root
}

// Run 执行一次命令，失败时输出一行提示，返回退出码
func Run(ctx context.Context, opts app.Options, args []string) int {
	c := newCLI(opts)
	root := c.root()
	root.SetArgs(args)
	executed, err := root.ExecuteContextC(ctx)

	if c.app == nil {
		c.app = app.NewApp(c.opts)
	}
	defer c.app.Shutdown()

	if err != nil {
		action := ""
		if executed != nil {
			action = executed.Annotations[annotationAction]
		}
		c.app.HandleError(ctx, err, "cli", action)
		return 1
	}
	return 0
}

// Execute main 调用的入口
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, app.Options{}, os.Args[1:])
	stop()
	os.Exit(code)
}
