package approval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/codelieche/approval/pkg/content"
	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/services"
	"github.com/codelieche/approval/pkg/utils/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServices 以指定用户身份创建服务
func newServices(t *testing.T, server *apitest.Server, userID int64) *services.Services {
	t.Helper()
	transport := services.NewTransport(server.BaseURL(), services.StaticToken(server.TokenFor(userID)))
	return services.NewServices(transport)
}

// newWizard 创建日期固定的向导
func newWizard(t *testing.T, svc *services.Services) *Wizard {
	t.Helper()
	w := NewWizard(svc.Approvals)
	w.now = func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local) }
	require.NoError(t, w.LoadTypes(context.Background()))
	return w
}

// TestWizard_LeaveJSON 用JSON内容发起请假时天数按日期计算
func TestWizard_LeaveJSON(t *testing.T) {
	server := apitest.New(t)
	w := newWizard(t, newServices(t, server, apitest.BobID))
	require.NoError(t, w.SelectType("LEAVE"))

	raw := `{"leaveType":"annual","startDate":"2024-01-01","endDate":"2024-01-03","days":7,"reason":"回家"}`
	require.NoError(t, w.SetContent(content.Decode("LEAVE", raw)))

	req, err := w.Request()
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Content), &fields))
	assert.Equal(t, float64(3), fields["days"])
}

// TestWizard_Leave 测试发起请假
func TestWizard_Leave(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	w := newWizard(t, newServices(t, server, apitest.BobID))

	// 1. 选择类型
	assert.Equal(t, StateSelectType, w.State())
	require.NoError(t, w.SelectType("LEAVE"))
	assert.Equal(t, StateFillForm, w.State())
	assert.Equal(t, "请假申请 - 2024/1/5", w.Title())

	// 2. 填写表单
	leave, ok := w.Content().(*content.LeaveContent)
	require.True(t, ok)
	leave.LeaveType = "annual"
	leave.Reason = "回家"
	leave.SetDates("2024-01-01", "2024-01-03")
	require.NoError(t, w.SetDeadline("2024-01-10"))
	require.NoError(t, w.SetPriority(core.PriorityUrgent))
	w.AddAttachment(&core.Attachment{ID: "f1"})
	w.AddAttachment(&core.Attachment{ID: "f2"})
	w.RemoveAttachment("f2")
	w.RemoveAttachment("not-exist")

	req, err := w.Request()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10T23:59:59", req.Deadline)
	assert.Equal(t, []string{"f1"}, req.AttachmentIDs)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Content), &fields))
	assert.Equal(t, float64(3), fields["days"])
	assert.Equal(t, "annual", fields["leaveType"])

	// 3. 提交
	record, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, w.State())
	assert.Equal(t, core.PriorityUrgent, server.Approval(record.ID).Priority)
	assert.Equal(t, "LEAVE", record.TypeCode)

	// 4. 成功后不能重复提交
	_, err = w.Submit(ctx)
	assert.True(t, errors.Is(err, core.ErrInvalidState))
}

// TestWizard_Validation 测试提交前校验
func TestWizard_Validation(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	w := newWizard(t, newServices(t, server, apitest.BobID))

	t.Run("类型不存在", func(t *testing.T) {
		assert.True(t, core.IsValidation(w.SelectType("UNKNOWN")))
		assert.Equal(t, StateSelectType, w.State())
	})

	require.NoError(t, w.SelectType("EXPENSE"))

	t.Run("标题为空", func(t *testing.T) {
		w.SetTitle("  ")
		before := server.CountRequests(http.MethodPost, "/approvals")
		_, err := w.Submit(ctx)
		assert.True(t, core.IsValidation(err))
		assert.Equal(t, before, server.CountRequests(http.MethodPost, "/approvals"))
		assert.Equal(t, StateFillForm, w.State())
		assert.Equal(t, err, w.Err())
	})

	t.Run("报销缺少类型", func(t *testing.T) {
		w.SetTitle("报销")
		_, err := w.Submit(ctx)
		require.Error(t, err)
		errs := err.(core.ValidationErrors)
		assert.NotNil(t, errs.Field("expenseType"))
	})

	t.Run("截止日期格式", func(t *testing.T) {
		assert.True(t, core.IsValidation(w.SetDeadline("2024/01/10")))
	})

	t.Run("内容类型不匹配", func(t *testing.T) {
		assert.True(t, core.IsValidation(w.SetContent(&content.LeaveContent{})))
		assert.NoError(t, w.SetContent(content.NewExpenseContent()))
	})

	t.Run("返回选择类型", func(t *testing.T) {
		w.Back()
		assert.Equal(t, StateSelectType, w.State())
		assert.Nil(t, w.Content())
	})
}

// TestWizard_SubmitFailure 测试提交失败
func TestWizard_SubmitFailure(t *testing.T) {
	server := apitest.New(t)
	ctx := context.Background()
	w := newWizard(t, newServices(t, server, apitest.BobID))

	require.NoError(t, w.SelectType("GENERAL"))
	general := w.Content().(*content.GeneralContent)
	general.Content = "申请一台显示器"

	server.FailNext(http.MethodPost, "/approvals", 1001, "该审批类型未配置工作流")
	_, err := w.Submit(ctx)
	require.Error(t, err)

	// 回到填写表单，保留错误和已填内容
	assert.Equal(t, StateFillForm, w.State())
	assert.Equal(t, "该审批类型未配置工作流", core.ErrorMessage(w.Err()))
	assert.Equal(t, "申请一台显示器", w.Content().(*content.GeneralContent).Content)

	// 再次提交成功
	record, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Nil(t, w.Err())
	assert.Equal(t, record, w.Record())
}
