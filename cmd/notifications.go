package cmd

import (
	"fmt"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/notify"
	"github.com/spf13/cobra"
)

func (c *cli) newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notification", "nt"},
		Short:   "站内通知",
	}

	var (
		unread bool
		page   pageFlags
	)
	list := &cobra.Command{
		Use:     "list",
		Short:   "通知列表",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := &core.NotificationQuery{Pagination: page.pagination()}
			if unread {
				isRead := false
				query.IsRead = &isRead
			}
			result, err := c.app.Services.Notifications.List(ctx, query)
			if err != nil {
				return err
			}
			count, err := c.app.Services.Notifications.UnreadCount(ctx)
			if err != nil {
				return err
			}
			return c.app.Printer.Notifications(result, count)
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "只显示未读")
	page.bind(list)

	read := &cobra.Command{
		Use:     "read ID...",
		Short:   "标记为已读",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := c.app.Services.Notifications.MarkRead(cmd.Context(), id); err != nil {
					return err
				}
			}
			return c.app.Printer.Message("已标记 %d 条通知为已读", len(args))
		},
	}

	readAll := &cobra.Command{
		Use:     "read-all",
		Short:   "全部标记为已读",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			return c.app.Printer.Message("全部通知已标记为已读")
		},
	}

	watch := &cobra.Command{
		Use:     "watch",
		Short:   "定时查看未读通知数量，Ctrl+C 退出",
		Args:    cobra.NoArgs,
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			last := int64(-1)
			poller := c.app.NewPoller(func(count int64) {
				if count == last {
					return
				}
				last = count
				badge := notify.Badge(count)
				if badge == "" {
					badge = "0"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "未读通知: %s\n", badge)
			})
			return poller.Run(cmd.Context())
		},
	}

	cmd.AddCommand(
		withAction(list, "获取通知"),
		withAction(read, "标记已读"),
		withAction(readAll, "全部标记已读"),
		withAction(watch, "获取未读通知"),
	)
	return cmd
}
