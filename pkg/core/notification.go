package core

import (
	"context"

	"github.com/codelieche/approval/pkg/utils/types"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotificationTypeApproval NotificationType = "APPROVAL" // 审批通知
	NotificationTypeSystem   NotificationType = "SYSTEM"   // 系统通知
	NotificationTypeReminder NotificationType = "REMINDER" // 提醒
)

// String 通知类型的中文名称
func (t NotificationType) String() string {
	switch t {
	case NotificationTypeApproval:
		return "审批"
	case NotificationTypeSystem:
		return "系统"
	case NotificationTypeReminder:
		return "提醒"
	default:
		return string(t)
	}
}

// Notification 站内通知
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      NotificationType `json:"type"`
	RelatedID string           `json:"relatedId,omitempty"` // 关联的审批ID
	IsRead    bool             `json:"isRead"`
	ReadAt    *types.DateTime  `json:"readAt,omitempty"`
	CreatedAt *types.DateTime  `json:"createdAt,omitempty"`
}

// NotificationQuery 通知列表查询
type NotificationQuery struct {
	types.Pagination
	IsRead *bool
}

// NotificationService 通知接口
type NotificationService interface {
	List(ctx context.Context, query *NotificationQuery) (*types.PageResult[*Notification], error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
}
