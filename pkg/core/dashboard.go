package core

import (
	"context"

	"github.com/codelieche/approval/pkg/utils/types"
)

// DashboardStatistics 工作台统计
type DashboardStatistics struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// RecentActivity 最近动态
type RecentActivity struct {
	ApprovalID   string          `json:"approvalId"`
	ActivityType string          `json:"activityType"` // created/approved/rejected/withdrawn
	Title        string          `json:"title"`
	TypeName     string          `json:"typeName"`
	TypeIcon     string          `json:"typeIcon,omitempty"`
	TypeColor    string          `json:"typeColor,omitempty"`
	ActivityTime *types.DateTime `json:"activityTime,omitempty"`
	Status       ApprovalStatus  `json:"status"`
	RelativeTime string          `json:"relativeTime,omitempty"`
}

// DashboardService 工作台接口
type DashboardService interface {
	Statistics(ctx context.Context) (*DashboardStatistics, error)
	RecentActivities(ctx context.Context, limit int) ([]*RecentActivity, error)
}
