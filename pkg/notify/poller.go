// Package notify 未读通知数量的定时轮询
package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
	"github.com/codelieche/approval/pkg/utils/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval 默认轮询间隔
const DefaultInterval = 30 * time.Second

// maxBadge 超过后显示 99+
const maxBadge = 99

// Badge 角标文字
func Badge(count int64) string {
	switch {
	case count <= 0:
		return ""
	case count > maxBadge:
		return strconv.Itoa(maxBadge) + "+"
	default:
		return strconv.FormatInt(count, 10)
	}
}

// Poller 未读数量轮询器
type Poller struct {
	service  core.NotificationService
	interval time.Duration
	onChange func(count int64)
	metrics  *monitoring.MetricsCollector

	cron    *cron.Cron
	mu      sync.Mutex
	count   int64
	started bool
}

// Option 轮询器选项
type Option func(*Poller)

// WithInterval 轮询间隔，小于1秒按1秒
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithCallback 每次轮询成功后回调
func WithCallback(fn func(count int64)) Option {
	return func(p *Poller) {
		p.onChange = fn
	}
}

// WithMetrics 记录轮询结果
func WithMetrics(metrics *monitoring.MetricsCollector) Option {
	return func(p *Poller) {
		p.metrics = metrics
	}
}

// NewPoller 创建轮询器
func NewPoller(service core.NotificationService, opts ...Option) *Poller {
	p := &Poller{
		service:  service,
		interval: DefaultInterval,
		cron:     cron.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval 轮询间隔
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Count 最近一次成功获取的未读数量
func (p *Poller) Count() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Badge 当前角标
func (p *Poller) Badge() string {
	return Badge(p.Count())
}

// PollOnce 立即获取一次，失败时保留之前的数量
func (p *Poller) PollOnce(ctx context.Context) (int64, error) {
	count, err := p.service.UnreadCount(ctx)
	if p.metrics != nil {
		p.metrics.RecordUnreadPoll(count, err)
	}
	if err != nil {
		logger.Warn("获取未读通知数量失败", zap.Error(err))
		return p.Count(), err
	}

	p.mu.Lock()
	p.count = count
	onChange := p.onChange
	p.mu.Unlock()

	logger.Debug("未读通知数量", zap.Int64("count", count))
	if onChange != nil {
		onChange(count)
	}
	return count, nil
}

// Start 先获取一次，然后按间隔定时获取
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return core.ErrInvalidState
	}
	p.started = true
	p.mu.Unlock()

	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, func() {
		_, _ = p.PollOnce(ctx)
	}); err != nil {
		logger.Error("注册未读通知轮询失败", zap.String("spec", spec), zap.Error(err))
		return err
	}

	logger.Info("启动未读通知轮询", zap.Duration("interval", p.interval))
	_, _ = p.PollOnce(ctx)
	p.cron.Start()
	return nil
}

// Stop 停止轮询，等待正在执行的一次结束
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
	logger.Info("未读通知轮询已停止")
}

// Run 启动轮询直到ctx结束
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Stop()
	return nil
}
