package core

import (
	"context"
	"io"
)

// ProgressFunc 上传进度回调，percent 为 0-100
type ProgressFunc func(percent int)

// FileService 文件接口
type FileService interface {
	// Upload 以multipart方式上传文件，size 未知时传 -1
	Upload(ctx context.Context, fileName string, reader io.Reader, size int64, progress ProgressFunc) (*Attachment, error)
	Get(ctx context.Context, id string) (*Attachment, error)
	Delete(ctx context.Context, id string) error
	// DownloadURL 文件的完整访问地址
	DownloadURL(fileURL string) string
}
