// Package services 审批系统的REST客户端
//
// 每个资源一个服务，全部通过 Transport 发起请求：
// - 自动携带会话中的 Bearer token
// - 解开 {code, message, data, timestamp} 信封
// - 每次调用只发一次HTTP请求，不重试、不缓存
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource 提供当前会话的token
type TokenSource interface {
	Token() string
}

// StaticToken 固定的token，测试或脚本中使用
type StaticToken string

// Token 实现 TokenSource
func (s StaticToken) Token() string {
	return string(s)
}

// Transport 接口调用的公共部分
type Transport struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	metrics *monitoring.MetricsCollector
}

// Option Transport的可选配置
type Option func(*Transport)

// WithHTTPClient 使用自定义的http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		t.client = client
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			t.client.Timeout = timeout
		}
	}
}

// WithMetrics 记录调用指标
func WithMetrics(metrics *monitoring.MetricsCollector) Option {
	return func(t *Transport) {
		t.metrics = metrics
	}
}

// NewTransport 创建Transport
//
// 参数:
//   - baseURL: 服务端地址，例如 http://127.0.0.1:8080/api
//   - tokens: token来源，可以为nil
//
// 返回值:
//   - *Transport: 接口调用实例
func NewTransport(baseURL string, tokens TokenSource, opts ...Option) *Transport {
	t := &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client: &http.Client{
			Timeout: 30 * time.Second, // 设置30秒超时
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BaseURL 服务端地址
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Get 发起GET请求
func (t *Transport) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return t.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post 发起POST请求
func (t *Transport) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return t.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put 发起PUT请求
func (t *Transport) Put(ctx context.Context, path string, body interface{}, out interface{}) error {
	return t.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete 发起DELETE请求
func (t *Transport) Delete(ctx context.Context, path string, out interface{}) error {
	return t.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do 发起请求并解析信封
//
// 参数:
//   - method: 请求方法
//   - path: 相对于baseURL的路径
//   - query: 查询参数，可以为nil
//   - body: 请求体，会序列化为JSON，可以为nil
//   - out: data字段解析的目标，可以为nil
//
// 返回值:
//   - error: *core.APIError 或请求构建错误
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	// 1. 序列化请求体
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求数据失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	// 2. 创建HTTP请求
	req, err := http.NewRequestWithContext(ctx, method, t.buildURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return t.send(req, path, out)
}

// buildURL 拼接完整的请求地址
func (t *Transport) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := t.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL
}

// send 发送请求，检查状态码，解开信封
func (t *Transport) send(req *http.Request, path string, out interface{}) (err error) {
	method := req.Method
	start := time.Now()
	outcome := monitoring.OutcomeSuccess

	if t.metrics != nil {
		t.metrics.RequestsInFlight.Inc()
	}
	defer func() {
		if t.metrics != nil {
			t.metrics.RequestsInFlight.Dec()
			t.metrics.RecordRequest(method, path, outcome, time.Since(start))
		}
		if err != nil {
			logger.Debug("接口调用失败",
				zap.String("method", method),
				zap.String("path", path),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
		}
	}()

	// 设置请求头
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	transportErr := func(status int, message string, cause error) error {
		outcome = monitoring.OutcomeTransport
		return &core.APIError{
			Kind:       core.ErrKindTransport,
			Method:     method,
			Path:       path,
			HTTPStatus: status,
			Message:    message,
			Err:        cause,
		}
	}

	// 发送请求
	resp, err := t.client.Do(req)
	if err != nil {
		return transportErr(0, "", err)
	}
	defer resp.Body.Close()

	// 读取响应体
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(resp.StatusCode, "", fmt.Errorf("读取响应体失败: %w", err))
	}

	// 检查HTTP状态码，错误响应中通常也带有信封，尽量取出message
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope types.Response
		message := ""
		if json.Unmarshal(respBody, &envelope) == nil {
			message = envelope.Message
		}
		return transportErr(resp.StatusCode, message, nil)
	}

	// 解析响应JSON
	var envelope types.Response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return transportErr(resp.StatusCode, "", fmt.Errorf("解析响应JSON失败: %w", err))
	}

	// 检查API返回的code
	if !envelope.OK() {
		outcome = monitoring.OutcomeEnvelope
		return &core.APIError{
			Kind:       core.ErrKindEnvelope,
			Method:     method,
			Path:       path,
			HTTPStatus: resp.StatusCode,
			Code:       envelope.Code,
			Message:    envelope.Message,
		}
	}

	// 将data字段解析为目标对象
	if out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return transportErr(resp.StatusCode, "", fmt.Errorf("解析data字段失败: %w", err))
		}
	}

	logger.Debug("接口调用成功",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// DownloadURL 文件的完整访问地址
//
// 已经是完整地址时原样返回，否则拼接服务端的 scheme://host
func (t *Transport) DownloadURL(fileURL string) string {
	if strings.HasPrefix(fileURL, "http://") || strings.HasPrefix(fileURL, "https://") {
		return fileURL
	}
	base, err := url.Parse(t.baseURL)
	if err != nil || base.Host == "" {
		return fileURL
	}
	if !strings.HasPrefix(fileURL, "/") {
		fileURL = "/" + fileURL
	}
	return base.Scheme + "://" + base.Host + fileURL
}

// paginationQuery 构建分页查询参数
func paginationQuery(p types.Pagination) url.Values {
	p.Normalize(types.DefaultPaginationConfig)
	values := url.Values{}
	p.Encode(values)
	return values
}
