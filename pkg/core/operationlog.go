package core

import (
	"context"

	"github.com/codelieche/approval/pkg/utils/types"
)

// LogOption 模块/操作选项
type LogOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LogModules 日志模块，服务端不可用时作为本地兜底
var LogModules = []LogOption{
	{Code: "AUTH", Name: "认证模块"},
	{Code: "USER", Name: "用户管理"},
	{Code: "DEPARTMENT", Name: "部门管理"},
	{Code: "ROLE", Name: "角色管理"},
	{Code: "APPROVAL", Name: "审批管理"},
	{Code: "WORKFLOW", Name: "工作流管理"},
	{Code: "FILE", Name: "文件管理"},
	{Code: "SYSTEM", Name: "系统配置"},
}

// LogOperations 日志操作类型
var LogOperations = []LogOption{
	{Code: "LOGIN", Name: "登录"},
	{Code: "LOGOUT", Name: "登出"},
	{Code: "LOGIN_FAIL", Name: "登录失败"},
	{Code: "PASSWORD_CHANGE", Name: "密码修改"},
	{Code: "CREATE", Name: "创建"},
	{Code: "UPDATE", Name: "更新"},
	{Code: "DELETE", Name: "删除"},
	{Code: "VIEW", Name: "查看"},
	{Code: "SUBMIT", Name: "提交"},
	{Code: "APPROVE", Name: "审批通过"},
	{Code: "REJECT", Name: "审批拒绝"},
	{Code: "WITHDRAW", Name: "撤回"},
	{Code: "ASSIGN_ROLE", Name: "分配角色"},
	{Code: "UPLOAD", Name: "上传"},
	{Code: "DOWNLOAD", Name: "下载"},
}

// LookupLogOption 根据编码查找名称，找不到时返回编码本身
func LookupLogOption(options []LogOption, code string) string {
	for _, o := range options {
		if o.Code == code {
			return o.Name
		}
	}
	return code
}

// OperationLog 操作日志
type OperationLog struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Username      string          `json:"username"`
	Nickname      string          `json:"nickname"`
	Module        string          `json:"module"`
	ModuleName    string          `json:"moduleName"`
	Operation     string          `json:"operation"`
	OperationName string          `json:"operationName"`
	TargetID      string          `json:"targetId,omitempty"`
	Detail        string          `json:"detail"`
	IPAddress     string          `json:"ipAddress"`
	UserAgent     string          `json:"userAgent"`
	CreatedAt     *types.DateTime `json:"createdAt,omitempty"`
}

// LogQuery 日志查询参数
type LogQuery struct {
	types.Pagination
	Module          string
	Operation       string
	UserID          *int64
	TargetID        string
	StartDate       string // YYYY-MM-DD
	EndDate         string // YYYY-MM-DD
	Keyword         string // 详情关键词
	UsernameKeyword string // 用户名/昵称关键词
}

// ModuleStatItem 模块统计
type ModuleStatItem struct {
	Module     string `json:"module"`
	ModuleName string `json:"moduleName"`
	Count      int64  `json:"count"`
}

// OperationStatItem 操作统计
type OperationStatItem struct {
	Operation     string `json:"operation"`
	OperationName string `json:"operationName"`
	Count         int64  `json:"count"`
}

// DailyStatItem 每日统计
type DailyStatItem struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// LogStatistics 日志统计
type LogStatistics struct {
	TotalCount     int64                `json:"totalCount"`
	ModuleStats    []*ModuleStatItem    `json:"moduleStats"`
	OperationStats []*OperationStatItem `json:"operationStats"`
	DailyStats     []*DailyStatItem     `json:"dailyStats"`
}

// LogService 操作日志接口
type LogService interface {
	List(ctx context.Context, query *LogQuery) (*types.PageResult[*OperationLog], error)
	Statistics(ctx context.Context, startDate, endDate string) (*LogStatistics, error)
	ByTarget(ctx context.Context, targetID string) ([]*OperationLog, error)
	Modules(ctx context.Context) ([]LogOption, error)
	Operations(ctx context.Context) ([]LogOption, error)
}
