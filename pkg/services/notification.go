package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
)

// notificationService 通知接口实现
type notificationService struct {
	transport *Transport
}

// NewNotificationService 创建通知服务
func NewNotificationService(transport *Transport) core.NotificationService {
	return &notificationService{transport: transport}
}

// List 通知列表，isRead 为nil时返回全部
func (s *notificationService) List(ctx context.Context, query *core.NotificationQuery) (*types.PageResult[*core.Notification], error) {
	if query == nil {
		query = &core.NotificationQuery{}
	}
	values := paginationQuery(query.Pagination)
	if query.IsRead != nil {
		values.Set("isRead", strconv.FormatBool(*query.IsRead))
	}

	var page types.PageResult[*core.Notification]
	if err := s.transport.Get(ctx, "/v1/notifications", values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MarkRead 标记为已读
func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.transport.Put(ctx, fmt.Sprintf("/v1/notifications/%s/read", url.PathEscape(id)), nil, nil)
}

// MarkAllRead 全部标记为已读
func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.transport.Put(ctx, "/v1/notifications/read-all", nil, nil)
}

// UnreadCount 未读数量
func (s *notificationService) UnreadCount(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"count"`
	}
	if err := s.transport.Get(ctx, "/v1/notifications/unread-count", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

var _ core.NotificationService = (*notificationService)(nil)
