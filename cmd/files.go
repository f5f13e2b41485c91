package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// fileSize 本地文件大小
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("读取文件失败: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s 是目录", path)
	}
	return info.Size(), nil
}

func (c *cli) newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "附件文件",
	}

	upload := &cobra.Command{
		Use:     "upload FILE...",
		Short:   "上传文件，返回的ID可用于 approval new --attachment-id",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := fileSize(path); err != nil {
					return err
				}
				attachment, err := c.upload(cmd, path)
				if err != nil {
					return err
				}
				if err := c.app.Printer.Attachment(attachment, c.app.Services.Files.DownloadURL(attachment.FileURL)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	info := &cobra.Command{
		Use:     "info ID",
		Short:   "文件信息",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			attachment, err := c.app.Services.Files.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.app.Printer.Attachment(attachment, c.app.Services.Files.DownloadURL(attachment.FileURL))
		},
	}

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "删除文件",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.Files.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.app.Printer.Message("已删除文件 %s", args[0])
		},
	}

	cmd.AddCommand(
		withAction(upload, "上传文件"),
		withAction(info, "获取文件信息"),
		withAction(remove, "删除文件"),
	)
	return cmd
}
