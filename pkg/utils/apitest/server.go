// Package apitest 内存版的审批服务端，用于测试
//
// 使用gin实现与真实服务端一致的接口和信封格式，数据保存在内存中。
// 审批流转按工作流模板逐个生成节点，同一时间最多一个待审批节点。
package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 预置的用户
const (
	AdminID int64 = 1 // admin，总公司负责人
	AliceID int64 = 2 // alice，研发部负责人
	BobID   int64 = 3 // bob，研发部员工
)

// RecordedRequest 记录收到的请求
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
}

// failure 注入的错误响应
type failure struct {
	httpStatus int
	code       int
	message    string
}

// Server 内存版服务端
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	now           func() time.Time
	tokens        map[string]int64
	passwords     map[string]string
	users         map[int64]*core.User
	roles         []*core.RoleInfo
	positions     []*core.Position
	positionUsers map[int64]int64
	departments   map[int64]*core.Department
	approvalTypes []*core.ApprovalType
	workflows     map[int64]*core.Workflow
	approvals     map[string]*core.ApprovalRecord
	approvalOrder []string
	notifications []ownedNotification
	logs          []*core.OperationLog
	files         map[string]*core.Attachment
	requests      []RecordedRequest
	failures      map[string]failure
	nextID        int64
}

// New 创建并启动内存服务端，测试结束时自动关闭
func New(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		now:           time.Now,
		tokens:        make(map[string]int64),
		passwords:     make(map[string]string),
		users:         make(map[int64]*core.User),
		positionUsers: make(map[int64]int64),
		departments:   make(map[int64]*core.Department),
		workflows:     make(map[int64]*core.Workflow),
		approvals:     make(map[string]*core.ApprovalRecord),
		files:         make(map[string]*core.Attachment),
		failures:      make(map[string]failure),
		nextID:        100,
	}
	s.seed()

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL 接口地址
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// TokenFor 给用户签发token，返回的token可以直接用于请求
func (s *Server) TokenFor(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(userID)
}

// issueToken 签发token，调用方持有锁
func (s *Server) issueToken(userID int64) string {
	token := fmt.Sprintf("token-%d-%s", userID, uuid.New().String())
	s.tokens[token] = userID
	return token
}

// Requests 已收到的请求
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]RecordedRequest, len(s.requests))
	copy(result, s.requests)
	return result
}

// LastRequest 最后一次请求
func (s *Server) LastRequest() RecordedRequest {
	requests := s.Requests()
	if len(requests) == 0 {
		return RecordedRequest{}
	}
	return requests[len(requests)-1]
}

// CountRequests 某个方法和路径的请求次数
func (s *Server) CountRequests(method, path string) int {
	count := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

// FailNext 下一次匹配的请求返回信封错误(HTTP 200, code != 0)
func (s *Server) FailNext(method, path string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{httpStatus: http.StatusOK, code: code, message: message}
}

// FailNextHTTP 下一次匹配的请求返回非2xx状态码
func (s *Server) FailNextHTTP(method, path string, httpStatus int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{httpStatus: httpStatus, code: httpStatus, message: message}
}

// Approval 直接读取审批记录，用于断言
func (s *Server) Approval(id string) *core.ApprovalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.approvals[id]
}

// File 直接读取文件信息
func (s *Server) File(id string) *core.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[id]
}

// router 注册路由
func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record, s.inject)

	api := r.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)

	authed := api.Group("", s.authenticate)

	authed.GET("/approvals/types", s.listEnabledTypes)
	authed.POST("/approvals", s.createApproval)
	authed.GET("/approvals/my", s.listMyApprovals)
	authed.GET("/approvals/todo", s.listTodoApprovals)
	authed.GET("/approvals/:id", s.getApproval)
	authed.POST("/approvals/:id/approve", s.approve)
	authed.POST("/approvals/:id/withdraw", s.withdraw)

	authed.GET("/v1/approval-types", s.listApprovalTypes)
	authed.POST("/v1/approval-types", s.adminOnly, s.createApprovalType)
	authed.GET("/v1/approval-types/:id", s.getApprovalType)
	authed.PUT("/v1/approval-types/:id", s.adminOnly, s.updateApprovalType)
	authed.DELETE("/v1/approval-types/:id", s.adminOnly, s.deleteApprovalType)

	authed.GET("/v1/workflows", s.listWorkflows)
	authed.GET("/v1/workflows/by-type", s.getWorkflowByType)
	authed.GET("/v1/workflows/:id", s.getWorkflow)
	authed.POST("/v1/workflows", s.adminOnly, s.createWorkflow)
	authed.PUT("/v1/workflows/:id", s.adminOnly, s.updateWorkflow)
	authed.DELETE("/v1/workflows/:id", s.adminOnly, s.deleteWorkflow)
	authed.PUT("/v1/workflows/:id/status", s.adminOnly, s.updateWorkflowStatus)

	authed.GET("/departments/tree", s.departmentTree)
	authed.GET("/departments", s.listDepartments)
	authed.GET("/departments/:id", s.getDepartment)
	authed.POST("/departments", s.adminOnly, s.createDepartment)
	authed.PUT("/departments/:id", s.adminOnly, s.updateDepartment)
	authed.DELETE("/departments/:id", s.adminOnly, s.deleteDepartment)

	authed.GET("/users", s.listUsers)
	authed.GET("/users/all", s.allUsers)
	authed.PUT("/users/password", s.changePassword)
	authed.GET("/users/:id", s.getUser)
	authed.POST("/users", s.adminOnly, s.createUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.DELETE("/users/:id", s.adminOnly, s.deleteUser)
	authed.PUT("/users/:id/status", s.adminOnly, s.updateUserStatus)
	authed.GET("/roles", s.listRoles)
	authed.GET("/v1/positions", s.listPositions)

	authed.GET("/v1/notifications", s.listNotifications)
	authed.GET("/v1/notifications/unread-count", s.unreadCount)
	authed.PUT("/v1/notifications/read-all", s.markAllRead)
	authed.PUT("/v1/notifications/:id/read", s.markRead)

	authed.GET("/v1/logs", s.adminOnly, s.listLogs)
	authed.GET("/v1/logs/statistics", s.adminOnly, s.logStatistics)
	authed.GET("/v1/logs/modules", s.logModules)
	authed.GET("/v1/logs/operations", s.logOperations)
	authed.GET("/v1/logs/target/:id", s.logsByTarget)

	authed.POST("/files/upload", s.uploadFile)
	authed.GET("/files/:id", s.getFile)
	authed.DELETE("/files/:id", s.deleteFile)

	authed.GET("/dashboard/statistics", s.dashboardStatistics)
	authed.GET("/dashboard/recent-activities", s.recentActivities)
	return r
}

// record 记录请求
func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        c.Request.Method,
		Path:          strings.TrimPrefix(c.Request.URL.Path, "/api"),
		Query:         c.Request.URL.RawQuery,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
		ContentType:   c.GetHeader("Content-Type"),
	})
	s.mu.Unlock()
	c.Next()
}

// inject 返回注入的错误
func (s *Server) inject(c *gin.Context) {
	key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, "/api")
	s.mu.Lock()
	f, ok := s.failures[key]
	if ok {
		delete(s.failures, key)
	}
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	// 读掉请求体，避免客户端写入时报错
	_, _ = io.Copy(io.Discard, c.Request.Body)
	c.AbortWithStatusJSON(f.httpStatus, envelope(f.code, f.message, nil))
}

// authenticate 校验Bearer token
func (s *Server) authenticate(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	userID, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope(http.StatusUnauthorized, "未登录或登录已过期", nil))
		return
	}
	c.Set("userID", userID)
	c.Next()
}

// adminOnly 只允许管理员
func (s *Server) adminOnly(c *gin.Context) {
	s.mu.Lock()
	user := s.users[c.GetInt64("userID")]
	s.mu.Unlock()
	if user == nil || !hasAdminRole(user) {
		c.AbortWithStatusJSON(http.StatusForbidden, envelope(http.StatusForbidden, "权限不足", nil))
		return
	}
	c.Next()
}

func hasAdminRole(user *core.User) bool {
	for _, code := range user.RoleCodes() {
		if code == core.RoleAdmin || code == core.RoleSuperAdmin {
			return true
		}
	}
	return false
}

// envelope 构建统一的响应
func envelope(code int, message string, data interface{}) gin.H {
	return gin.H{
		"code":      code,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UnixMilli(),
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(0, "success", data))
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, envelope(code, message, nil))
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, envelope(http.StatusNotFound, core.ErrNotFound.Error(), nil))
}

// paginate 对列表分页
func paginate[T any](c *gin.Context, list []T) *types.PageResult[T] {
	var p types.Pagination
	_ = c.ShouldBindQuery(&p)
	p.Normalize(types.DefaultPaginationConfig)

	total := len(list)
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	totalPages := (total + p.PageSize - 1) / p.PageSize

	page := make([]T, 0, end-start)
	page = append(page, list[start:end]...)
	return &types.PageResult[T]{
		List:       page,
		Total:      int64(total),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}

// id 生成自增ID，调用方持有锁
func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// timestamp 当前时间
func (s *Server) timestamp() *types.DateTime {
	return types.NewDateTime(s.now())
}

// addLog 记录操作日志，调用方持有锁
func (s *Server) addLog(userID int64, module, operation, targetID, detail string) {
	user := s.users[userID]
	entry := &core.OperationLog{
		ID:            s.id(),
		UserID:        userID,
		Module:        module,
		ModuleName:    core.LookupLogOption(core.LogModules, module),
		Operation:     operation,
		OperationName: core.LookupLogOption(core.LogOperations, operation),
		TargetID:      targetID,
		Detail:        detail,
		IPAddress:     "127.0.0.1",
		CreatedAt:     s.timestamp(),
	}
	if user != nil {
		entry.Username = user.Username
		entry.Nickname = user.Nickname
	}
	s.logs = append(s.logs, entry)
}

// notify 发送站内通知，调用方持有锁
func (s *Server) notify(userID int64, title, content, relatedID string) {
	s.notifications = append(s.notifications, ownedNotification{
		userID: userID,
		Notification: &core.Notification{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Type:      core.NotificationTypeApproval,
			RelatedID: relatedID,
			CreatedAt: s.timestamp(),
		},
	})
}

// ownedNotification 带接收人的通知
type ownedNotification struct {
	userID int64
	*core.Notification
}
