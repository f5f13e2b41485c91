package approval

import (
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/stretchr/testify/assert"
)

// newRecord 构造审批记录，nodes 为 (approverId, nodeOrder, status)
func newRecord(status core.ApprovalStatus, current int, initiator int64, nodes ...[3]int64) *core.ApprovalRecord {
	record := &core.ApprovalRecord{ID: "r1", Status: status, CurrentNodeOrder: current, InitiatorID: initiator}
	for _, n := range nodes {
		record.Nodes = append(record.Nodes, &core.ApprovalNode{
			ApproverID: n[0],
			NodeOrder:  int(n[1]),
			Status:     core.NodeStatus(n[2]),
		})
	}
	return record
}

// TestCanAct 测试审批入口
func TestCanAct(t *testing.T) {
	alice := &core.AuthUser{ID: 2}
	bob := &core.AuthUser{ID: 3}

	tests := []struct {
		name   string
		record *core.ApprovalRecord
		user   *core.AuthUser
		want   bool
	}{
		{"当前审批人", newRecord(core.ApprovalStatusPending, 1, 3, [3]int64{2, 1, 0}), alice, true},
		{"不是审批人", newRecord(core.ApprovalStatusPending, 1, 3, [3]int64{2, 1, 0}), bob, false},
		{"审批中的第二个节点", newRecord(core.ApprovalStatusInProgress, 2, 3, [3]int64{1, 1, 1}, [3]int64{2, 2, 0}), alice, true},
		{"已经处理过的节点", newRecord(core.ApprovalStatusInProgress, 2, 3, [3]int64{2, 1, 1}, [3]int64{1, 2, 0}), alice, false},
		{"已结束", newRecord(core.ApprovalStatusApproved, 1, 3, [3]int64{2, 1, 1}), alice, false},
		{"节点顺序不匹配", newRecord(core.ApprovalStatusPending, 2, 3, [3]int64{2, 1, 0}), alice, false},
		{"草稿", newRecord(core.ApprovalStatusDraft, 1, 3, [3]int64{2, 1, 0}), alice, false},
		{"未登录", newRecord(core.ApprovalStatusPending, 1, 3, [3]int64{2, 1, 0}), nil, false},
		{"记录为空", nil, alice, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAct(tt.record, tt.user))
		})
	}
}

// TestCanWithdraw 测试撤回入口
func TestCanWithdraw(t *testing.T) {
	bob := &core.AuthUser{ID: 3}
	alice := &core.AuthUser{ID: 2}

	for _, status := range core.ApprovalStatuses {
		record := newRecord(status, 1, 3)
		t.Run(status.String(), func(t *testing.T) {
			assert.Equal(t, status.IsActive(), CanWithdraw(record, bob))
			assert.False(t, CanWithdraw(record, alice))
		})
	}
}

// TestCheckNodeInvariant 测试节点状态检查
func TestCheckNodeInvariant(t *testing.T) {
	t.Run("正常", func(t *testing.T) {
		assert.NoError(t, CheckNodeInvariant(newRecord(core.ApprovalStatusInProgress, 2, 3, [3]int64{1, 1, 1}, [3]int64{2, 2, 0})))
		assert.NoError(t, CheckNodeInvariant(newRecord(core.ApprovalStatusRejected, 1, 3, [3]int64{2, 1, 2})))
		assert.NoError(t, CheckNodeInvariant(nil))
	})

	t.Run("多个待审批节点", func(t *testing.T) {
		assert.Error(t, CheckNodeInvariant(newRecord(core.ApprovalStatusPending, 1, 3, [3]int64{2, 1, 0}, [3]int64{1, 2, 0})))
	})

	t.Run("待审批节点顺序不对", func(t *testing.T) {
		assert.Error(t, CheckNodeInvariant(newRecord(core.ApprovalStatusPending, 1, 3, [3]int64{2, 2, 0})))
	})

	t.Run("终态还有待审批节点", func(t *testing.T) {
		assert.Error(t, CheckNodeInvariant(newRecord(core.ApprovalStatusWithdrawn, 1, 3, [3]int64{2, 1, 0})))
	})
}
