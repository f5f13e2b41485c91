// Package monitoring 客户端监控指标
//
// 记录每次接口调用的次数、耗时和结果，以及未读通知轮询的情况。
// 指标注册在收集器自己的Registry上，通过 --metrics-dump 输出。
package monitoring

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 调用结果
const (
	OutcomeSuccess   = "success"   // 成功
	OutcomeTransport = "transport" // 网络错误或非2xx
	OutcomeEnvelope  = "envelope"  // 信封code不为0
)

// MetricsCollector 监控指标收集器
type MetricsCollector struct {
	registry *prometheus.Registry

	// 接口调用指标
	RequestsTotal    *prometheus.CounterVec   // 接口调用次数
	RequestDuration  *prometheus.HistogramVec // 接口调用耗时
	RequestsInFlight prometheus.Gauge         // 当前正在进行的调用
	UploadBytes      prometheus.Counter       // 上传的字节数

	// 未读通知轮询指标
	UnreadPolls *prometheus.CounterVec // 轮询次数
	UnreadCount prometheus.Gauge       // 最近一次的未读数
}

// NewMetricsCollector 创建监控指标收集器
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "approval_client_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "approval_client_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "approval_client_requests_in_flight",
				Help: "Current number of API requests in flight",
			},
		),
		UploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "approval_client_upload_bytes_total",
				Help: "Total bytes uploaded",
			},
		),
		UnreadPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "approval_client_unread_polls_total",
				Help: "Total number of unread notification polls",
			},
			[]string{"result"},
		),
		UnreadCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "approval_client_unread_count",
				Help: "Last polled unread notification count",
			},
		),
	}
}

// Registry 指标注册表
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RecordRequest 记录一次接口调用
func (mc *MetricsCollector) RecordRequest(method, path, outcome string, duration time.Duration) {
	endpoint := NormalizeEndpoint(path)
	mc.RequestsTotal.WithLabelValues(method, endpoint, outcome).Inc()
	mc.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordUnreadPoll 记录一次未读数轮询
func (mc *MetricsCollector) RecordUnreadPoll(count int64, err error) {
	if err != nil {
		mc.UnreadPolls.WithLabelValues("error").Inc()
		return
	}
	mc.UnreadPolls.WithLabelValues("success").Inc()
	mc.UnreadCount.Set(float64(count))
}

// NormalizeEndpoint 把路径中的ID替换成 {id}，避免标签基数过大
func NormalizeEndpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = "{id}"
			continue
		}
		if _, err := uuid.Parse(segment); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// Dump 以文本形式输出所有指标
func (mc *MetricsCollector) Dump(w io.Writer) error {
	families, err := mc.registry.Gather()
	if err != nil {
		return fmt.Errorf("收集指标失败: %w", err)
	}

	for _, family := range families {
		lines := make([]string, 0, len(family.GetMetric()))
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}
			name := family.GetName()
			if len(labels) > 0 {
				name = fmt.Sprintf("%s{%s}", name, strings.Join(labels, ","))
			}

			switch {
			case metric.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case metric.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetGauge().GetValue()))
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%gs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
		sort.Strings(lines)
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
