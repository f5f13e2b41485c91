package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
)

// logService 操作日志接口实现
type logService struct {
	transport *Transport
}

// NewLogService 创建操作日志服务
func NewLogService(transport *Transport) core.LogService {
	return &logService{transport: transport}
}

// List 日志分页查询
func (s *logService) List(ctx context.Context, query *core.LogQuery) (*types.PageResult[*core.OperationLog], error) {
	if query == nil {
		query = &core.LogQuery{}
	}
	values := paginationQuery(query.Pagination)
	setIfNotEmpty(values, "module", query.Module)
	setIfNotEmpty(values, "operation", query.Operation)
	setIfNotEmpty(values, "targetId", query.TargetID)
	setIfNotEmpty(values, "startDate", query.StartDate)
	setIfNotEmpty(values, "endDate", query.EndDate)
	setIfNotEmpty(values, "keyword", query.Keyword)
	setIfNotEmpty(values, "usernameKeyword", query.UsernameKeyword)
	if query.UserID != nil {
		values.Set("userId", strconv.FormatInt(*query.UserID, 10))
	}

	var page types.PageResult[*core.OperationLog]
	if err := s.transport.Get(ctx, "/v1/logs", values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Statistics 日志统计，日期格式 YYYY-MM-DD，可以为空
func (s *logService) Statistics(ctx context.Context, startDate, endDate string) (*core.LogStatistics, error) {
	values := url.Values{}
	setIfNotEmpty(values, "startDate", startDate)
	setIfNotEmpty(values, "endDate", endDate)

	var stats core.LogStatistics
	if err := s.transport.Get(ctx, "/v1/logs/statistics", values, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ByTarget 某个业务对象的操作记录，比如某条审批
func (s *logService) ByTarget(ctx context.Context, targetID string) ([]*core.OperationLog, error) {
	var logs []*core.OperationLog
	if err := s.transport.Get(ctx, "/v1/logs/target/"+url.PathEscape(targetID), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Modules 日志模块选项
func (s *logService) Modules(ctx context.Context) ([]core.LogOption, error) {
	var options []core.LogOption
	if err := s.transport.Get(ctx, "/v1/logs/modules", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// Operations 日志操作类型选项
func (s *logService) Operations(ctx context.Context) ([]core.LogOption, error) {
	var options []core.LogOption
	if err := s.transport.Get(ctx, "/v1/logs/operations", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// setIfNotEmpty 值不为空时设置查询参数
func setIfNotEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

var _ core.LogService = (*logService)(nil)
