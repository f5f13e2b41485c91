package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countService 按顺序返回预设的结果
type countService struct {
	core.NotificationService
	mu      sync.Mutex
	results []result
	calls   int
}

type result struct {
	count int64
	err   error
}

func (s *countService) UnreadCount(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return 0, nil
	}
	r := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return r.count, r.err
}

func (s *countService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestBadge(t *testing.T) {
	t.Run("角标文字", func(t *testing.T) {
		assert.Equal(t, "", Badge(0))
		assert.Equal(t, "", Badge(-1))
		assert.Equal(t, "1", Badge(1))
		assert.Equal(t, "99", Badge(99))
		assert.Equal(t, "99+", Badge(100))
	})
}

func TestPoller(t *testing.T) {
	ctx := context.Background()

	t.Run("失败时保留之前的数量", func(t *testing.T) {
		service := &countService{results: []result{
			{count: 3},
			{err: errors.New("网络错误")},
			{count: 120},
		}}
		metrics := monitoring.NewMetricsCollector()
		var seen []int64
		p := NewPoller(service, WithMetrics(metrics), WithCallback(func(count int64) {
			seen = append(seen, count)
		}))

		count, err := p.PollOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = p.PollOnce(ctx)
		assert.Error(t, err)
		assert.Equal(t, int64(3), count)
		assert.Equal(t, "3", p.Badge())

		_, err = p.PollOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, "99+", p.Badge())
		assert.Equal(t, []int64{3, 120}, seen)

		assert.Equal(t, float64(2), testutil.ToFloat64(metrics.UnreadPolls.WithLabelValues("success")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.UnreadPolls.WithLabelValues("error")))
		assert.Equal(t, float64(120), testutil.ToFloat64(metrics.UnreadCount))
	})

	t.Run("默认间隔", func(t *testing.T) {
		p := NewPoller(&countService{}, WithInterval(0))
		assert.Equal(t, DefaultInterval, p.Interval())
	})

	t.Run("启动后定时获取", func(t *testing.T) {
		service := &countService{results: []result{{count: 5}}}
		p := NewPoller(service, WithInterval(time.Second))
		require.NoError(t, p.Start(ctx))
		defer p.Stop()

		assert.Equal(t, 1, service.Calls())
		assert.Equal(t, int64(5), p.Count())
		assert.ErrorIs(t, p.Start(ctx), core.ErrInvalidState)

		assert.Eventually(t, func() bool {
			return service.Calls() >= 2
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("ctx结束后停止", func(t *testing.T) {
		service := &countService{results: []result{{count: 1}}}
		p := NewPoller(service, WithInterval(time.Second))
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- p.Run(runCtx) }()

		assert.Eventually(t, func() bool { return service.Calls() >= 1 }, time.Second, 10*time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("轮询没有停止")
		}
	})
}
