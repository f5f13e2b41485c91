package approval

import (
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFilter 测试表达式过滤
func TestFilter(t *testing.T) {
	records := []*core.ApprovalRecord{
		{ID: "a", Title: "请假申请", TypeCode: "LEAVE", Status: core.ApprovalStatusPending, Priority: core.PriorityUrgent, InitiatorName: "Bob"},
		{ID: "b", Title: "报销申请", TypeCode: "EXPENSE", Status: core.ApprovalStatusApproved, Priority: core.PriorityNormal, InitiatorName: "Alice"},
		{ID: "c", Title: "出差报销", TypeCode: "EXPENSE", Status: core.ApprovalStatusInProgress, Priority: core.PriorityVeryUrgent, InitiatorName: "Bob", CurrentNodeOrder: 2},
	}
	filter := NewFilter()

	ids := func(list []*core.ApprovalRecord) []string {
		result := make([]string, 0, len(list))
		for _, r := range list {
			result = append(result, r.ID)
		}
		return result
	}

	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{"空表达式", "", []string{"a", "b", "c"}},
		{"按状态", "status in [1, 2]", []string{"a", "c"}},
		{"按类型和优先级", "typeCode == 'EXPENSE' && priority >= 1", []string{"c"}},
		{"按标题", "title contains '报销'", []string{"b", "c"}},
		{"按发起人", "initiatorName == 'Bob' && currentNodeOrder > 1", []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := filter.Apply(tt.expression, records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(result))
		})
	}

	t.Run("语法错误", func(t *testing.T) {
		_, err := filter.Apply("status ==", records)
		assert.True(t, core.IsValidation(err))
	})

	t.Run("结果不是bool", func(t *testing.T) {
		_, err := filter.Apply("status + 1", records)
		assert.Error(t, err)
	})

	t.Run("编译结果缓存", func(t *testing.T) {
		_, err := filter.Match("priority == 2", records[2])
		require.NoError(t, err)
		filter.mutex.RLock()
		_, cached := filter.cache["priority == 2"]
		filter.mutex.RUnlock()
		assert.True(t, cached)
	})
}
