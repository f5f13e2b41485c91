package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"golang.org/x/time/rate"
)

// progressReader 统计已读取的字节数并回调上传进度
type progressReader struct {
	reader    io.Reader
	total     int64
	loaded    int64
	last      int
	sometimes *rate.Sometimes
	progress  core.ProgressFunc
	mu        sync.Mutex
}

// newProgressReader 创建进度统计的reader，回调最多每100ms一次
func newProgressReader(reader io.Reader, total int64, progress core.ProgressFunc) *progressReader {
	return &progressReader{
		reader:    reader,
		total:     total,
		last:      -1,
		sometimes: &rate.Sometimes{First: 1, Interval: 100 * time.Millisecond},
		progress:  progress,
	}
}

// Read 实现io.Reader
func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.mu.Lock()
		p.loaded += int64(n)
		p.mu.Unlock()
		p.sometimes.Do(func() { p.report(false) })
	}
	return n, err
}

// Loaded 已读取的字节数
func (p *progressReader) Loaded() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// percent 当前进度，上传完成前最多报告99
func (p *progressReader) percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return 0
	}
	percent := int(p.loaded * 100 / p.total)
	if percent > 99 {
		percent = 99
	}
	return percent
}

// report 回调进度，相同的百分比只回调一次
func (p *progressReader) report(done bool) {
	if p.progress == nil {
		return
	}
	percent := 100
	if !done {
		percent = p.percent()
	}
	p.mu.Lock()
	if percent <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = percent
	p.mu.Unlock()
	p.progress(percent)
}

// Upload 以multipart方式上传文件
//
// 参数:
//   - path: 上传接口路径
//   - field: 文件字段名
//   - fileName: 文件名
//   - reader: 文件内容
//   - size: 文件大小，未知时传-1，此时只在完成时回调100
//   - progress: 进度回调，可以为nil
//   - out: data字段解析的目标
func (t *Transport) Upload(ctx context.Context, path, field, fileName string, reader io.Reader, size int64, progress core.ProgressFunc, out interface{}) error {
	counter := newProgressReader(reader, size, progress)

	// 边读边写，不把整个文件读入内存
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		part, err := writer.CreateFormFile(field, fileName)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, counter); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if err := writer.Close(); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.buildURL(path, nil), pipeReader)
	if err != nil {
		pipeReader.CloseWithError(err)
		return fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := t.send(req, path, out); err != nil {
		pipeReader.CloseWithError(err)
		return err
	}

	if t.metrics != nil {
		t.metrics.UploadBytes.Add(float64(counter.Loaded()))
	}
	counter.report(true)
	return nil
}
