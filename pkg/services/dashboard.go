package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
)

// dashboardService 工作台接口实现
type dashboardService struct {
	transport *Transport
}

// NewDashboardService 创建工作台服务
func NewDashboardService(transport *Transport) core.DashboardService {
	return &dashboardService{transport: transport}
}

// Statistics 审批统计
func (s *dashboardService) Statistics(ctx context.Context) (*core.DashboardStatistics, error) {
	var stats core.DashboardStatistics
	if err := s.transport.Get(ctx, "/dashboard/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentActivities 最近动态，limit默认10
func (s *dashboardService) RecentActivities(ctx context.Context, limit int) ([]*core.RecentActivity, error) {
	if limit <= 0 {
		limit = 10
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))

	var activities []*core.RecentActivity
	if err := s.transport.Get(ctx, "/dashboard/recent-activities", values, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

var _ core.DashboardService = (*dashboardService)(nil)
