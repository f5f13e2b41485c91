package content

import (
	"encoding/json"
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLeaveDays 测试请假天数计算
func TestLeaveDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"同一天", "2024-01-01", "2024-01-01", 1},
		{"连续三天", "2024-01-01", "2024-01-03", 3},
		{"跨月", "2024-01-30", "2024-02-02", 4},
		{"结束早于开始", "2024-01-05", "2024-01-01", 0},
		{"缺少结束日期", "2024-01-01", "", 0},
		{"缺少开始日期", "", "2024-01-01", 0},
		{"格式错误", "2024/01/01", "2024-01-03", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeaveDays(tt.start, tt.end))
		})
	}
}

// TestLeaveContent 测试请假内容
func TestLeaveContent(t *testing.T) {
	t.Run("修改日期时重新计算天数", func(t *testing.T) {
		c := &LeaveContent{LeaveType: "annual", Reason: "旅行"}
		c.SetStartDate("2024-01-01")
		assert.Equal(t, 0, c.Days)
		c.SetEndDate("2024-01-03")
		assert.Equal(t, 3, c.Days)
		c.SetEndDate("")
		assert.Equal(t, 0, c.Days)
	})

	t.Run("序列化包含全部字段", func(t *testing.T) {
		c := &LeaveContent{LeaveType: "annual", Reason: "旅行"}
		c.SetDates("2024-01-01", "2024-01-03")
		require.NoError(t, c.Validate())

		raw, err := Encode(c)
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &fields))
		assert.Equal(t, "annual", fields["leaveType"])
		assert.Equal(t, "2024-01-01", fields["startDate"])
		assert.Equal(t, "2024-01-03", fields["endDate"])
		assert.Equal(t, float64(3), fields["days"])
		assert.Equal(t, "旅行", fields["reason"])
	})

	t.Run("直接设置字段时校验会修正天数", func(t *testing.T) {
		c := &LeaveContent{LeaveType: "sick", StartDate: "2024-01-01", EndDate: "2024-01-02", Days: 10, Reason: "感冒"}
		require.NoError(t, c.Validate())
		assert.Equal(t, 2, c.Days)
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		c := &LeaveContent{StartDate: "2024-01-01"}
		err := c.Validate()
		require.Error(t, err)

		errs, ok := err.(core.ValidationErrors)
		require.True(t, ok)
		assert.NotNil(t, errs.Field("leaveType"))
		assert.NotNil(t, errs.Field("endDate"))
		assert.NotNil(t, errs.Field("reason"))
		assert.Nil(t, errs.Field("startDate"))
	})

	t.Run("请假类型名称", func(t *testing.T) {
		assert.Equal(t, "年假", LeaveTypeLabel("annual"))
		assert.Equal(t, "unknown", LeaveTypeLabel("unknown"))
	})
}

// TestExpenseContent 测试报销内容
func TestExpenseContent(t *testing.T) {
	t.Run("总金额等于明细之和", func(t *testing.T) {
		c := NewExpenseContent()
		require.NoError(t, c.UpdateItem(0, ExpenseItem{Type: "机票", Amount: 1200.5}))
		c.AddItem(ExpenseItem{Type: "酒店", Amount: 399.3})
		assert.Equal(t, 1599.8, c.TotalAmount)

		require.NoError(t, c.RemoveItem(0))
		assert.Equal(t, 399.3, c.TotalAmount)
		assert.Len(t, c.Items, 1)
	})

	t.Run("不能删除最后一行", func(t *testing.T) {
		c := NewExpenseContent()
		err := c.RemoveItem(0)
		assert.True(t, core.IsValidation(err))
		assert.Len(t, c.Items, 1)
	})

	t.Run("越界", func(t *testing.T) {
		c := NewExpenseContent()
		assert.Error(t, c.UpdateItem(3, ExpenseItem{}))
		assert.Error(t, c.RemoveItem(-1))
	})

	t.Run("校验", func(t *testing.T) {
		c := &ExpenseContent{}
		err := c.Validate()
		require.Error(t, err)
		errs := err.(core.ValidationErrors)
		assert.NotNil(t, errs.Field("expenseType"))
		assert.NotNil(t, errs.Field("items"))

		c = NewExpenseContent()
		c.ExpenseType = "travel"
		assert.NoError(t, c.Validate())
	})
}

// TestDecode 测试按类型解析内容
func TestDecode(t *testing.T) {
	t.Run("请假", func(t *testing.T) {
		c := Decode("LEAVE", `{"leaveType":"sick","startDate":"2024-01-01","endDate":"2024-01-02","days":2,"reason":"感冒"}`)
		leave, ok := c.(*LeaveContent)
		require.True(t, ok)
		assert.Equal(t, "sick", leave.LeaveType)
		assert.Equal(t, 2, leave.Days)
	})

	t.Run("请假天数按日期重新计算", func(t *testing.T) {
		c := Decode("LEAVE", `{"leaveType":"annual","startDate":"2024-01-01","endDate":"2024-01-03","days":7,"reason":"回家"}`)
		assert.Equal(t, 3, c.(*LeaveContent).Days)
	})

	t.Run("报销", func(t *testing.T) {
		c := Decode("EXPENSE", `{"expenseType":"travel","totalAmount":10,"items":[{"type":"a","amount":10,"description":""}]}`)
		expense, ok := c.(*ExpenseContent)
		require.True(t, ok)
		assert.Len(t, expense.Items, 1)
	})

	t.Run("解析失败退回通用内容", func(t *testing.T) {
		c := Decode("LEAVE", "not json")
		general, ok := c.(*GeneralContent)
		require.True(t, ok)
		assert.Equal(t, "not json", general.Content)
	})

	t.Run("其它类型", func(t *testing.T) {
		c := Decode("PURCHASE", `{"content":"采购显示器"}`)
		assert.Equal(t, "采购显示器", c.(*GeneralContent).Content)

		c = Decode("PURCHASE", "纯文本")
		assert.Equal(t, "纯文本", c.(*GeneralContent).Content)
	})

	t.Run("New按类型创建", func(t *testing.T) {
		assert.IsType(t, &LeaveContent{}, New("leave"))
		assert.Len(t, New("EXPENSE").(*ExpenseContent).Items, 1)
		assert.IsType(t, &GeneralContent{}, New("OTHER"))
	})
}
