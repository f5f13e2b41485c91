// Package app 命令行客户端的运行环境
//
// App 持有一次命令执行需要的全部依赖：配置、日志、会话、接口服务、指标和输出。
// 各个命令通过 App 取用，不直接读写包级别的状态。
package app

import (
	"context"
	"io"
	"os"

	"github.com/codelieche/approval/pkg/approval"
	"github.com/codelieche/approval/pkg/config"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
	"github.com/codelieche/approval/pkg/notify"
	"github.com/codelieche/approval/pkg/render"
	"github.com/codelieche/approval/pkg/services"
	"github.com/codelieche/approval/pkg/session"
	"github.com/codelieche/approval/pkg/utils/logger"
	"go.uber.org/zap"
)

// Options 启动参数，来自全局命令行标志
type Options struct {
	ConfigFile  string // 配置文件路径
	Verbose     bool   // 输出调试日志到stderr
	Output      string // 输出格式，为空时使用配置
	MetricsDump bool   // 退出前输出请求指标

	Out    io.Writer     // 命令结果，默认stdout
	ErrOut io.Writer     // 错误提示，默认stderr
	Store  session.Store // 会话存储，为空时按配置创建
}

// App 命令行应用
type App struct {
	opts Options

	Session  *session.Manager
	Services *services.Services
	Metrics  *monitoring.MetricsCollector
	Errors   core.ErrorHandler
	Printer  *render.Printer
	Filter   *approval.Filter

	store       session.Store
	initialized bool
}

// NewApp 创建应用实例
func NewApp(opts Options) *App {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	return &App{opts: opts}
}

// Out 命令结果的输出位置
func (a *App) Out() io.Writer {
	return a.opts.Out
}

// ErrOut 错误提示的输出位置
func (a *App) ErrOut() io.Writer {
	return a.opts.ErrOut
}

// Initialize 初始化应用
func (a *App) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	// 加载配置文件，环境变量优先
	if err := config.Load(a.opts.ConfigFile); err != nil {
		return err
	}
	if a.opts.Verbose {
		config.Log.Level = "debug"
		config.Log.Output = "both"
	}

	// 初始化日志
	logger.InitLogger()
	if a.opts.Verbose {
		logger.SetLevel("debug")
	}
	a.printConfig()

	a.Metrics = monitoring.NewMetricsCollector()
	a.Errors = core.NewErrorHandler(a.opts.ErrOut)
	a.Filter = approval.NewFilter()

	format := a.opts.Output
	if format == "" {
		format = config.Output.Format
	}
	printer, err := render.NewPrinter(a.opts.Out, format)
	if err != nil {
		return err
	}
	a.Printer = printer

	// 恢复登录会话
	a.store = a.opts.Store
	if a.store == nil {
		if a.store, err = session.NewStore(); err != nil {
			return err
		}
	}
	a.Session = session.NewManager(a.store)
	if err := a.Session.Init(ctx); err != nil {
		a.Errors.HandleRecoverableError(ctx, err, core.ErrorContext{Component: "session", Action: "恢复会话"})
	}

	a.Services = services.CreateServices(a.Session, a.Metrics)
	a.initialized = true
	return nil
}

// printConfig 打印配置信息
func (a *App) printConfig() {
	logger.Debug("客户端配置信息",
		zap.String("api_url", config.Server.Address()),
		zap.Duration("timeout", config.Server.Timeout),
		zap.String("session_backend", config.Session.Backend),
		zap.String("output", config.Output.Format))
}

// NewReview 审批列表和详情
func (a *App) NewReview() *approval.Review {
	return approval.NewReview(a.Services.Approvals)
}

// NewWizard 发起审批
func (a *App) NewWizard() *approval.Wizard {
	return approval.NewWizard(a.Services.Approvals)
}

// NewPoller 未读通知轮询
func (a *App) NewPoller(onChange func(count int64)) *notify.Poller {
	return notify.NewPoller(a.Services.Notifications,
		notify.WithInterval(config.Notify.Interval),
		notify.WithMetrics(a.Metrics),
		notify.WithCallback(onChange))
}

// HandleError 输出错误提示并记录日志
func (a *App) HandleError(ctx context.Context, err error, component, action string) string {
	if a.Errors == nil {
		a.Errors = core.NewErrorHandler(a.opts.ErrOut)
	}
	return a.Errors.HandleError(ctx, err, core.ErrorContext{
		Component: component,
		Action:    action,
		Level:     core.LevelError,
	})
}

// Shutdown 命令结束时调用
func (a *App) Shutdown() {
	if !a.initialized {
		return
	}
	if a.opts.MetricsDump {
		if err := a.Metrics.Dump(a.opts.ErrOut); err != nil {
			logger.Warn("输出指标失败", zap.Error(err))
		}
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("关闭会话存储失败", zap.Error(err))
		}
	}
	_ = logger.Sync()
}
