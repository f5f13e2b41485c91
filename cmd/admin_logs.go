package cmd

import (
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) newAdminLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"log"},
		Short:   "操作日志",
	}

	var (
		query core.LogQuery
		page  pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "操作日志列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Pagination = page.pagination()
			var err error
			if query.UserID, err = optionalInt64(cmd, "user-id"); err != nil {
				return err
			}
			result, err := c.app.Services.Logs.List(cmd.Context(), &query)
			if err != nil {
				return err
			}
			return c.app.Printer.Logs(result)
		},
	}
	flags := list.Flags()
	flags.StringVar(&query.Module, "module", "", "模块，见 approvalctl admin logs modules")
	flags.StringVar(&query.Operation, "operation", "", "操作类型，见 approvalctl admin logs operations")
	flags.Int64("user-id", 0, "用户ID")
	flags.StringVar(&query.TargetID, "target", "", "操作对象ID")
	flags.StringVar(&query.StartDate, "start", "", "开始日期 YYYY-MM-DD")
	flags.StringVar(&query.EndDate, "end", "", "结束日期 YYYY-MM-DD")
	flags.StringVarP(&query.Keyword, "keyword", "k", "", "详情关键词")
	flags.StringVar(&query.UsernameKeyword, "user", "", "用户名或昵称关键词")
	page.bind(list)

	var startDate, endDate string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "操作日志统计",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Services.Logs.Statistics(cmd.Context(), startDate, endDate)
			if err != nil {
				return err
			}
			return c.app.Printer.LogStatistics(result)
		},
	}
	stats.Flags().StringVar(&startDate, "start", "", "开始日期 YYYY-MM-DD")
	stats.Flags().StringVar(&endDate, "end", "", "结束日期 YYYY-MM-DD")

	target := &cobra.Command{
		Use:   "target ID",
		Short: "某个对象的操作日志，例如一条审批的全部操作",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Services.Logs.ByTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.app.Printer.TargetLogs(result)
		},
	}

	modules := &cobra.Command{
		Use:   "modules",
		Short: "日志模块",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := c.app.Services.Logs.Modules(cmd.Context())
			if err != nil {
				logger.Warn("获取日志模块失败，使用本地列表", zap.Error(err))
				options = core.LogModules
			}
			return c.app.Printer.LogOptions(options)
		},
	}

	operations := &cobra.Command{
		Use:   "operations",
		Short: "日志操作类型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := c.app.Services.Logs.Operations(cmd.Context())
			if err != nil {
				logger.Warn("获取日志操作类型失败，使用本地列表", zap.Error(err))
				options = core.LogOperations
			}
			return c.app.Printer.LogOptions(options)
		},
	}

	cmd.AddCommand(
		withAction(list, "获取操作日志"),
		withAction(stats, "获取日志统计"),
		withAction(target, "获取操作日志"),
		withAction(modules, "获取日志模块"),
		withAction(operations, "获取日志操作类型"),
	)
	return cmd
}
