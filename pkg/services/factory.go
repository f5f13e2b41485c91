package services

import (
	"github.com/codelieche/approval/pkg/config"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
)

// Services 全部资源服务
type Services struct {
	Transport     *Transport
	Auth          core.AuthService
	Approvals     core.ApprovalService
	ApprovalTypes core.ApprovalTypeService
	Workflows     core.WorkflowService
	Departments   core.DepartmentService
	Positions     core.PositionService
	Users         core.UserService
	Roles         core.RoleService
	Notifications core.NotificationService
	Logs          core.LogService
	Files         core.FileService
	Dashboard     core.DashboardService
}

// NewServices 基于同一个Transport创建所有服务
func NewServices(transport *Transport) *Services {
	return &Services{
		Transport:     transport,
		Auth:          NewAuthService(transport),
		Approvals:     NewApprovalService(transport),
		ApprovalTypes: NewApprovalTypeService(transport),
		Workflows:     NewWorkflowService(transport),
		Departments:   NewDepartmentService(transport),
		Positions:     NewPositionService(transport),
		Users:         NewUserService(transport),
		Roles:         NewRoleService(transport),
		Notifications: NewNotificationService(transport),
		Logs:          NewLogService(transport),
		Files:         NewFileService(transport),
		Dashboard:     NewDashboardService(transport),
	}
}

// CreateServices 按全局配置创建所有服务实例
//
// 参数:
//   - tokens: token来源，通常是会话管理器
//   - metrics: 指标收集器，可以为nil
//
// 返回值:
//   - *Services: 全部服务
func CreateServices(tokens TokenSource, metrics *monitoring.MetricsCollector) *Services {
	opts := []Option{WithTimeout(config.Server.Timeout)}
	if metrics != nil {
		opts = append(opts, WithMetrics(metrics))
	}
	transport := NewTransport(config.Server.Address(), tokens, opts...)
	return NewServices(transport)
}
