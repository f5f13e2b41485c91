// Package approval 审批的发起和处理
//
// Wizard 负责发起审批，Review 负责待办/已发起/已处理三个列表和详情。
//
// CanAct 和 CanWithdraw 只决定是否展示操作入口，真正的权限由服务端校验：
// 即使这里返回 true，服务端仍可能拒绝请求，调用方按普通错误处理即可。
package approval

import (
	"fmt"

	"github.com/codelieche/approval/pkg/core"
)

// CanAct 用户是否可以审批（通过/拒绝）
//
// 审批流转中，并且当前节点的审批人是该用户。
func CanAct(record *core.ApprovalRecord, user *core.AuthUser) bool {
	if record == nil || user == nil {
		return false
	}
	node := record.CurrentNode()
	return node != nil && node.ApproverID == user.ID
}

// CanWithdraw 用户是否可以撤回
//
// 只有发起人可以撤回审批流转中的记录。
func CanWithdraw(record *core.ApprovalRecord, user *core.AuthUser) bool {
	if record == nil || user == nil {
		return false
	}
	return record.InitiatorID == user.ID && record.Status.IsActive()
}

// CheckNodeInvariant 检查审批节点的状态是否一致
//
// 审批流转中最多一个待审批节点，且其顺序等于 currentNodeOrder；终态时不能有待审批节点。
func CheckNodeInvariant(record *core.ApprovalRecord) error {
	if record == nil {
		return nil
	}
	pending := record.PendingNodes()
	switch {
	case record.Status.IsTerminal():
		if len(pending) > 0 {
			return fmt.Errorf("审批已结束(%s)，但仍有%d个待审批节点", record.Status, len(pending))
		}
	case record.Status.IsActive():
		if len(pending) > 1 {
			return fmt.Errorf("存在%d个待审批节点", len(pending))
		}
		if len(pending) == 1 && pending[0].NodeOrder != record.CurrentNodeOrder {
			return fmt.Errorf("待审批节点顺序为%d，当前节点为%d", pending[0].NodeOrder, record.CurrentNodeOrder)
		}
	}
	return nil
}
