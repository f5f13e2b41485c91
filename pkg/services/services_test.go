package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/monitoring"
	"github.com/codelieche/approval/pkg/utils/apitest"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServices 以指定用户身份创建服务
func newTestServices(t *testing.T, server *apitest.Server, userID int64) *Services {
	t.Helper()
	token := server.TokenFor(userID)
	return NewServices(NewTransport(server.BaseURL(), StaticToken(token)))
}

// TestTransport_Headers 测试请求头
func TestTransport_Headers(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()

	t.Run("登录请求不带token", func(t *testing.T) {
		svc := NewServices(NewTransport(server.BaseURL(), nil))
		resp, err := svc.Auth.Login(ctx, &core.LoginRequest{Username: "alice", Password: "password"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)

		last := server.LastRequest()
		assert.Equal(t, "/auth/login", last.Path)
		assert.Empty(t, last.Authorization)
		assert.NotEmpty(t, last.RequestID)
	})

	t.Run("携带Bearer token", func(t *testing.T) {
		token := server.TokenFor(apitest.BobID)
		svc := NewServices(NewTransport(server.BaseURL(), StaticToken(token)))
		_, err := svc.Approvals.ListTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+token, server.LastRequest().Authorization)
	})

	t.Run("自定义http.Client", func(t *testing.T) {
		client := &http.Client{Timeout: time.Second}
		transport := NewTransport(server.BaseURL(), StaticToken(server.TokenFor(apitest.BobID)), WithHTTPClient(client))
		_, err := NewServices(transport).Approvals.ListTypes(ctx)
		require.NoError(t, err)
	})

	t.Run("每次请求的ID不同", func(t *testing.T) {
		svc := newTestServices(t, server, apitest.BobID)
		_, _ = svc.Roles.List(ctx)
		first := server.LastRequest().RequestID
		_, _ = svc.Roles.List(ctx)
		assert.NotEqual(t, first, server.LastRequest().RequestID)
	})
}

// TestTransport_Errors 测试错误的分类
func TestTransport_Errors(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	svc := newTestServices(t, server, apitest.BobID)

	t.Run("信封错误", func(t *testing.T) {
		server.FailNext(http.MethodGet, "/approvals/my", 1001, "业务错误")
		_, err := svc.Approvals.ListMine(ctx, nil)
		require.Error(t, err)

		apiErr, ok := core.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, core.ErrKindEnvelope, apiErr.Kind)
		assert.Equal(t, 1001, apiErr.Code)
		assert.Equal(t, "业务错误", core.ErrorMessage(err))
	})

	t.Run("非2xx状态码", func(t *testing.T) {
		server.FailNextHTTP(http.MethodGet, "/approvals/todo", http.StatusInternalServerError, "内部错误")
		_, err := svc.Approvals.ListTodo(ctx, types.NewPagination(1, 10))
		require.Error(t, err)

		apiErr, ok := core.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, core.ErrKindTransport, apiErr.Kind)
		assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus)
		assert.Equal(t, "内部错误", apiErr.Message)
	})

	t.Run("未登录", func(t *testing.T) {
		anonymous := NewServices(NewTransport(server.BaseURL(), nil))
		_, err := anonymous.Approvals.ListTypes(ctx)
		assert.True(t, errors.Is(err, core.ErrUnauthorized))
	})

	t.Run("记录不存在", func(t *testing.T) {
		_, err := svc.Approvals.Get(ctx, "not-exists")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("网络错误", func(t *testing.T) {
		broken := NewServices(NewTransport("http://127.0.0.1:1/api", StaticToken("x")))
		_, err := broken.Approvals.ListTypes(ctx)
		apiErr, ok := core.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, core.ErrKindTransport, apiErr.Kind)
		assert.Equal(t, 0, apiErr.HTTPStatus)
	})

	t.Run("本地校验失败不发请求", func(t *testing.T) {
		before := len(server.Requests())
		_, err := svc.Auth.Login(ctx, &core.LoginRequest{Username: "bob"})
		assert.True(t, core.IsValidation(err))
		assert.Len(t, server.Requests(), before)
	})
}

// TestApprovalService_Flow 测试完整的审批流转
func TestApprovalService_Flow(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	bob := newTestServices(t, server, apitest.BobID)
	alice := newTestServices(t, server, apitest.AliceID)
	admin := newTestServices(t, server, apitest.AdminID)

	// 1. bob提交请假
	record, err := bob.Approvals.Create(ctx, &core.CreateApprovalRequest{
		Title:    "请假申请",
		TypeCode: "LEAVE",
		Content:  `{"leaveType":"annual","days":3}`,
		Priority: core.PriorityNormal,
	})
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalStatusPending, record.Status)
	require.NotNil(t, record.CurrentNode())
	assert.Equal(t, apitest.AliceID, record.CurrentNode().ApproverID)

	// 2. alice的待办中可以看到
	todo, err := alice.Approvals.ListTodo(ctx, types.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, todo.List, 1)
	assert.Equal(t, record.ID, todo.List[0].ID)

	// 3. alice通过，流转到admin
	require.NoError(t, alice.Approvals.Approve(ctx, record.ID, &core.ApproveRequest{Approved: true, Comment: "同意"}))
	record, err = bob.Approvals.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalStatusInProgress, record.Status)
	assert.Equal(t, 2, record.CurrentNodeOrder)
	assert.Equal(t, apitest.AdminID, record.CurrentNode().ApproverID)

	// 4. admin通过，审批结束
	require.NoError(t, admin.Approvals.Approve(ctx, record.ID, &core.ApproveRequest{Approved: true}))
	record, err = bob.Approvals.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalStatusApproved, record.Status)
	assert.Nil(t, record.CurrentNode())
	assert.NotNil(t, record.CompletedAt)

	// 5. 已结束的不能撤回
	err = bob.Approvals.Withdraw(ctx, record.ID)
	apiErr, ok := core.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrKindEnvelope, apiErr.Kind)

	t.Run("按状态查询我发起的", func(t *testing.T) {
		status := core.ApprovalStatusApproved
		page, err := bob.Approvals.ListMine(ctx, &core.ApprovalQuery{Pagination: types.NewPagination(1, 10), Status: &status})
		require.NoError(t, err)
		assert.Len(t, page.List, 1)

		query := server.LastRequest().Query
		assert.Contains(t, query, "status=3")
		assert.Contains(t, query, "page=1")
		assert.Contains(t, query, "pageSize=10")
	})

	t.Run("撤回审批中的记录", func(t *testing.T) {
		pending, err := bob.Approvals.Create(ctx, &core.CreateApprovalRequest{
			Title: "通用申请", TypeCode: "GENERAL", Content: `{"content":"x"}`,
		})
		require.NoError(t, err)
		require.NoError(t, bob.Approvals.Withdraw(ctx, pending.ID))

		withdrawn := server.Approval(pending.ID)
		assert.Equal(t, core.ApprovalStatusWithdrawn, withdrawn.Status)
		assert.Empty(t, withdrawn.PendingNodes())
	})

	t.Run("非当前审批人不能审批", func(t *testing.T) {
		pending, err := bob.Approvals.Create(ctx, &core.CreateApprovalRequest{
			Title: "报销", TypeCode: "EXPENSE", Content: `{"items":[]}`,
		})
		require.NoError(t, err)
		err = alice.Approvals.Approve(ctx, pending.ID, &core.ApproveRequest{Approved: true})
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("拒绝", func(t *testing.T) {
		pending, err := bob.Approvals.Create(ctx, &core.CreateApprovalRequest{
			Title: "请假", TypeCode: "LEAVE", Content: `{}`,
		})
		require.NoError(t, err)
		require.NoError(t, alice.Approvals.Approve(ctx, pending.ID, &core.ApproveRequest{Approved: false, Comment: "不同意"}))
		assert.Equal(t, core.ApprovalStatusRejected, server.Approval(pending.ID).Status)
	})
}

// TestWorkflowService_GetByType 测试按类型获取工作流
func TestWorkflowService_GetByType(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	svc := newTestServices(t, server, apitest.AdminID)

	t.Run("存在", func(t *testing.T) {
		workflow, err := svc.Workflows.GetByType(ctx, "LEAVE")
		require.NoError(t, err)
		require.NotNil(t, workflow)
		assert.Len(t, workflow.Nodes, 2)
		assert.Equal(t, "typeCode=LEAVE", server.LastRequest().Query)
	})

	t.Run("不存在返回nil", func(t *testing.T) {
		workflow, err := svc.Workflows.GetByType(ctx, "UNKNOWN")
		assert.NoError(t, err)
		assert.Nil(t, workflow)
	})

	t.Run("更新状态", func(t *testing.T) {
		require.NoError(t, svc.Workflows.UpdateStatus(ctx, 1, 0))
		workflow, err := svc.Workflows.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, workflow.Status)
	})
}

// TestDepartmentService_Update 测试更新部门
func TestDepartmentService_Update(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	svc := newTestServices(t, server, apitest.AdminID)

	t.Run("上级部门不能是自己", func(t *testing.T) {
		before := len(server.Requests())
		_, err := svc.Departments.Update(ctx, 2, &core.DepartmentRequest{Name: "研发部", ParentID: 2, Status: 1})
		assert.True(t, core.IsValidation(err))
		assert.Len(t, server.Requests(), before)
	})

	t.Run("普通用户无权限", func(t *testing.T) {
		bob := newTestServices(t, server, apitest.BobID)
		_, err := bob.Departments.Create(ctx, &core.DepartmentRequest{Name: "测试部", ParentID: 1, Status: 1})
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("树形结构", func(t *testing.T) {
		tree, err := svc.Departments.Tree(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, "研发部", tree[0].Children[0].Name)
	})
}

// TestUserService 测试用户相关接口
func TestUserService(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()

	t.Run("注册时昵称默认为用户名", func(t *testing.T) {
		anonymous := NewServices(NewTransport(server.BaseURL(), nil))
		err := anonymous.Auth.Register(ctx, &core.RegisterRequest{
			Username: "carol", Password: "secret1", ConfirmPassword: "secret1", Email: "carol@example.com",
		})
		require.NoError(t, err)

		resp, err := anonymous.Auth.Login(ctx, &core.LoginRequest{Username: "carol", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "carol", resp.User.Nickname)
	})

	t.Run("修改密码", func(t *testing.T) {
		bob := newTestServices(t, server, apitest.BobID)
		err := bob.Users.ChangePassword(ctx, &core.ChangePasswordRequest{
			OldPassword: "password", NewPassword: "newpass1", ConfirmPassword: "newpass1",
		})
		require.NoError(t, err)
		assert.Equal(t, "/users/password", server.LastRequest().Path)

		anonymous := NewServices(NewTransport(server.BaseURL(), nil))
		_, err = anonymous.Auth.Login(ctx, &core.LoginRequest{Username: "bob", Password: "newpass1"})
		assert.NoError(t, err)
	})

	t.Run("状态只能是0或1", func(t *testing.T) {
		admin := newTestServices(t, server, apitest.AdminID)
		err := admin.Users.UpdateStatus(ctx, apitest.BobID, 2)
		assert.True(t, core.IsValidation(err))
	})

	t.Run("创建用户时校验密码", func(t *testing.T) {
		admin := newTestServices(t, server, apitest.AdminID)
		_, err := admin.Users.Create(ctx, &core.UserRequest{Username: "dave", Nickname: "Dave", Password: "123"})
		require.Error(t, err)
		var errs core.ValidationErrors
		require.True(t, errors.As(err, &errs))
		assert.NotNil(t, errs.Field("password"))
	})
}

// TestNotificationService 测试通知接口
func TestNotificationService(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	svc := newTestServices(t, server, apitest.BobID)

	server.Notify(apitest.BobID, "通知一")
	server.Notify(apitest.BobID, "通知二")
	server.Notify(apitest.AliceID, "别人的通知")

	count, err := svc.Notifications.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := svc.Notifications.List(ctx, &core.NotificationQuery{Pagination: types.NewPagination(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.Equal(t, "通知二", page.List[0].Title)

	require.NoError(t, svc.Notifications.MarkRead(ctx, page.List[0].ID))
	count, _ = svc.Notifications.UnreadCount(ctx)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.Notifications.MarkAllRead(ctx))
	count, _ = svc.Notifications.UnreadCount(ctx)
	assert.Equal(t, int64(0), count)
}

// TestFileService_Upload 测试文件上传
func TestFileService_Upload(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	metrics := monitoring.NewMetricsCollector()
	token := server.TokenFor(apitest.BobID)
	svc := NewServices(NewTransport(server.BaseURL(), StaticToken(token), WithMetrics(metrics)))

	content := bytes.Repeat([]byte("a"), 256*1024)

	var mu sync.Mutex
	var percents []int
	attachment, err := svc.Files.Upload(ctx, "invoice.pdf", bytes.NewReader(content), int64(len(content)), func(percent int) {
		mu.Lock()
		defer mu.Unlock()
		percents = append(percents, percent)
	})
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", attachment.FileName)
	assert.Equal(t, int64(len(content)), attachment.FileSize)
	assert.True(t, attachment.PreviewSupport)
	assert.True(t, strings.HasPrefix(server.LastRequest().ContentType, "multipart/form-data"))

	t.Run("进度单调递增并以100结束", func(t *testing.T) {
		mu.Lock()
		defer mu.Unlock()
		require.NotEmpty(t, percents)
		assert.Equal(t, 100, percents[len(percents)-1])
		for i := 1; i < len(percents); i++ {
			assert.Greater(t, percents[i], percents[i-1])
		}
	})

	t.Run("记录上传字节数", func(t *testing.T) {
		assert.Equal(t, float64(len(content)), testutil.ToFloat64(metrics.UploadBytes))
	})

	t.Run("下载地址", func(t *testing.T) {
		url := svc.Files.DownloadURL(attachment.FileURL)
		assert.Equal(t, server.URL+attachment.FileURL, url)
		assert.Equal(t, "https://cdn.example.com/a.png", svc.Files.DownloadURL("https://cdn.example.com/a.png"))
	})

	t.Run("获取和删除", func(t *testing.T) {
		got, err := svc.Files.Get(ctx, attachment.ID)
		require.NoError(t, err)
		assert.Equal(t, attachment.ID, got.ID)

		require.NoError(t, svc.Files.Delete(ctx, attachment.ID))
		assert.Nil(t, server.File(attachment.ID))
	})
}

// TestTransport_Metrics 测试调用指标
func TestTransport_Metrics(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	metrics := monitoring.NewMetricsCollector()
	token := server.TokenFor(apitest.BobID)
	svc := NewServices(NewTransport(server.BaseURL(), StaticToken(token), WithMetrics(metrics)))

	_, _ = svc.Departments.Get(ctx, 1)
	_, _ = svc.Departments.Get(ctx, 2)
	server.FailNext(http.MethodGet, "/departments/1", 500, "失败")
	_, _ = svc.Departments.Get(ctx, 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/departments/{id}", monitoring.OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/departments/{id}", monitoring.OutcomeEnvelope)))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.RequestsInFlight))
}

// TestDashboardAndLogs 测试工作台和操作日志
func TestDashboardAndLogs(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	bob := newTestServices(t, server, apitest.BobID)
	admin := newTestServices(t, server, apitest.AdminID)

	record, err := bob.Approvals.Create(ctx, &core.CreateApprovalRequest{Title: "通用", TypeCode: "GENERAL", Content: "{}"})
	require.NoError(t, err)

	stats, err := bob.Dashboard.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Total)

	activities, err := bob.Dashboard.RecentActivities(ctx, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Contains(t, server.LastRequest().Query, "limit=10")

	logs, err := admin.Logs.ByTarget(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "SUBMIT", logs[0].Operation)

	page, err := admin.Logs.List(ctx, &core.LogQuery{Pagination: types.NewPagination(1, 10), Module: "APPROVAL"})
	require.NoError(t, err)
	assert.Len(t, page.List, 1)

	statistics, err := admin.Logs.Statistics(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), statistics.TotalCount)

	_, err = bob.Logs.List(ctx, nil)
	assert.True(t, errors.Is(err, core.ErrForbidden))
}
