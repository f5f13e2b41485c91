package services

import (
	"context"
	"io"
	"net/url"

	"github.com/codelieche/approval/pkg/core"
)

// fileService 文件接口实现
type fileService struct {
	transport *Transport
}

// NewFileService 创建文件服务
func NewFileService(transport *Transport) core.FileService {
	return &fileService{transport: transport}
}

// Upload 上传文件，字段名为 file
func (s *fileService) Upload(ctx context.Context, fileName string, reader io.Reader, size int64, progress core.ProgressFunc) (*core.Attachment, error) {
	var attachment core.Attachment
	if err := s.transport.Upload(ctx, "/files/upload", "file", fileName, reader, size, progress, &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Get 文件信息
func (s *fileService) Get(ctx context.Context, id string) (*core.Attachment, error) {
	var attachment core.Attachment
	if err := s.transport.Get(ctx, "/files/"+url.PathEscape(id), nil, &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Delete 删除文件
func (s *fileService) Delete(ctx context.Context, id string) error {
	return s.transport.Delete(ctx, "/files/"+url.PathEscape(id), nil)
}

// DownloadURL 文件的完整访问地址
func (s *fileService) DownloadURL(fileURL string) string {
	return s.transport.DownloadURL(fileURL)
}

var _ core.FileService = (*fileService)(nil)
