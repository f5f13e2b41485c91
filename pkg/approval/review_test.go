package approval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/apitest"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService 可以控制返回时机的审批服务
type stubService struct {
	core.ApprovalService
	get func(ctx context.Context, id string) (*core.ApprovalRecord, error)
}

func (s *stubService) Get(ctx context.Context, id string) (*core.ApprovalRecord, error) {
	return s.get(ctx, id)
}

// submit 以bob身份提交审批
func submit(t *testing.T, server *apitest.Server, typeCode string) *core.ApprovalRecord {
	t.Helper()
	svc := newServices(t, server, apitest.BobID)
	record, err := svc.Approvals.Create(context.Background(), &core.CreateApprovalRequest{
		Title: typeCode + "申请", TypeCode: typeCode, Content: `{"content":"x"}`,
	})
	require.NoError(t, err)
	return record
}

// TestReview_Approver 测试审批人处理待办
func TestReview_Approver(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	leave := submit(t, server, "LEAVE")
	general := submit(t, server, "GENERAL")

	alice := NewReview(newServices(t, server, apitest.AliceID).Approvals)
	page, err := alice.LoadTab(ctx, TabTodo)
	require.NoError(t, err)
	assert.Len(t, page.List, 2)

	t.Run("通过后重新加载详情和列表", func(t *testing.T) {
		_, err := alice.Select(ctx, leave.ID)
		require.NoError(t, err)
		assert.True(t, CanAct(alice.Detail(), &core.AuthUser{ID: apitest.AliceID}))

		require.NoError(t, alice.Approve(ctx, "同意"))
		detail := alice.Detail()
		assert.Equal(t, core.ApprovalStatusInProgress, detail.Status)
		assert.Equal(t, 2, detail.CurrentNodeOrder)
		assert.False(t, CanAct(detail, &core.AuthUser{ID: apitest.AliceID}))

		todo := alice.State(TabTodo).Page
		require.Len(t, todo.List, 1)
		assert.Equal(t, general.ID, todo.List[0].ID)
	})

	t.Run("拒绝必须填写意见", func(t *testing.T) {
		_, err := alice.Select(ctx, general.ID)
		require.NoError(t, err)
		before := len(server.Requests())
		assert.True(t, core.IsValidation(alice.Reject(ctx, " ")))
		assert.Len(t, server.Requests(), before)

		require.NoError(t, alice.Reject(ctx, "预算不足"))
		assert.Equal(t, core.ApprovalStatusRejected, alice.Detail().Status)
		assert.True(t, alice.State(TabTodo).Page.Empty())
	})

	t.Run("未选择记录", func(t *testing.T) {
		r := NewReview(newServices(t, server, apitest.AliceID).Approvals)
		assert.True(t, errors.Is(r.Approve(ctx, ""), core.ErrInvalidState))
	})

	t.Run("重复获取详情结果一致", func(t *testing.T) {
		first, err := alice.Select(ctx, leave.ID)
		require.NoError(t, err)
		second, err := alice.Select(ctx, leave.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.CurrentNodeOrder, second.CurrentNodeOrder)
		require.Equal(t, len(first.Nodes), len(second.Nodes))
		for i := range first.Nodes {
			assert.Equal(t, first.Nodes[i].Status, second.Nodes[i].Status)
		}
	})
}

// TestReview_Initiator 测试发起人的列表
func TestReview_Initiator(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	submit(t, server, "LEAVE")
	withdrawn := submit(t, server, "GENERAL")

	bob := NewReview(newServices(t, server, apitest.BobID).Approvals)
	require.NoError(t, bob.SetActive(TabInitiated))
	_, err := bob.Select(ctx, withdrawn.ID)
	require.NoError(t, err)
	assert.True(t, CanWithdraw(bob.Detail(), &core.AuthUser{ID: apitest.BobID}))
	require.NoError(t, bob.Withdraw(ctx))
	assert.Equal(t, core.ApprovalStatusWithdrawn, bob.Detail().Status)
	assert.Len(t, bob.State(TabInitiated).Page.List, 2)

	t.Run("已处理只包含已结束的", func(t *testing.T) {
		page, err := bob.LoadTab(ctx, TabDone)
		require.NoError(t, err)
		require.Len(t, page.List, 1)
		assert.Equal(t, withdrawn.ID, page.List[0].ID)
		assert.NotContains(t, server.LastRequest().Query, "status=")
	})

	t.Run("已处理按状态过滤交给服务端", func(t *testing.T) {
		status := core.ApprovalStatusRejected
		require.NoError(t, bob.SetStatus(TabDone, &status))
		page, err := bob.LoadTab(ctx, TabDone)
		require.NoError(t, err)
		assert.True(t, page.Empty())
		assert.True(t, strings.Contains(server.LastRequest().Query, "status=4"))
	})

	t.Run("已处理不能按进行中的状态过滤", func(t *testing.T) {
		status := core.ApprovalStatusPending
		assert.True(t, core.IsValidation(bob.SetStatus(TabDone, &status)))
	})

	t.Run("我发起的按状态过滤", func(t *testing.T) {
		status := core.ApprovalStatusPending
		require.NoError(t, bob.SetStatus(TabInitiated, &status))
		page, err := bob.LoadTab(ctx, TabInitiated)
		require.NoError(t, err)
		assert.Len(t, page.List, 1)
	})

	t.Run("待办在本地按状态过滤", func(t *testing.T) {
		alice := NewReview(newServices(t, server, apitest.AliceID).Approvals)
		status := core.ApprovalStatusInProgress
		require.NoError(t, alice.SetStatus(TabTodo, &status))
		page, err := alice.LoadTab(ctx, TabTodo)
		require.NoError(t, err)
		assert.True(t, page.Empty())
		assert.NotContains(t, server.LastRequest().Query, "status=")
	})

	t.Run("分页", func(t *testing.T) {
		bob.SetPage(TabInitiated, 2, 1)
		state := bob.State(TabInitiated)
		assert.Equal(t, types.NewPagination(2, 1), state.Pagination)
	})
}

// TestReview_Stale 测试丢弃过期的响应
func TestReview_Stale(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &stubService{get: func(ctx context.Context, id string) (*core.ApprovalRecord, error) {
		if id == "slow" {
			close(started)
			<-release
		}
		return &core.ApprovalRecord{ID: id, Status: core.ApprovalStatusPending}, nil
	}}
	r := NewReview(stub)

	result := make(chan error, 1)
	go func() {
		_, err := r.Select(ctx, "slow")
		result <- err
	}()
	<-started

	record, err := r.Select(ctx, "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", record.ID)

	close(release)
	assert.True(t, errors.Is(<-result, ErrStale))
	assert.Equal(t, "fast", r.Detail().ID)
}

// TestParseTab 测试解析列表名称
func TestParseTab(t *testing.T) {
	tab, err := ParseTab("DONE")
	require.NoError(t, err)
	assert.Equal(t, TabDone, tab)

	_, err = ParseTab("archived")
	assert.True(t, core.IsValidation(err))
}
