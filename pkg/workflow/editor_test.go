package workflow

import (
	"errors"
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

// assertContiguous 节点顺序为 1..N
func assertContiguous(t *testing.T, e *Editor) {
	t.Helper()
	for i, node := range e.Nodes() {
		assert.Equal(t, i+1, node.NodeOrder)
	}
}

// TestNewEditor 测试新建工作流的默认值
func TestNewEditor(t *testing.T) {
	e := NewEditor()
	assert.False(t, e.IsEdit())
	assert.Equal(t, 1, e.Draft().Status)
	require.Len(t, e.Nodes(), 1)
	assert.Equal(t, "直属上级", e.Nodes()[0].NodeName)
	assert.Equal(t, core.ApproverTypeDepartmentHead, e.Nodes()[0].ApproverType)

	node := e.AddNode()
	assert.Equal(t, "审批节点 2", node.NodeName)
	assert.Equal(t, 2, node.NodeOrder)
	assert.Equal(t, core.ApproverTypeUser, node.ApproverType)
}

// TestEditor_NodeOrder 测试增删移动后节点顺序连续
func TestEditor_NodeOrder(t *testing.T) {
	t.Run("删除中间节点", func(t *testing.T) {
		e := NewEditor()
		e.AddNode()
		e.AddNode()
		e.AddNode()
		require.NoError(t, e.RemoveNode(1))
		assert.Len(t, e.Nodes(), 3)
		assertContiguous(t, e)
		assert.Equal(t, "审批节点 3", e.Nodes()[1].NodeName)
	})

	t.Run("交替增删", func(t *testing.T) {
		e := NewEditor()
		for i := 0; i < 5; i++ {
			e.AddNode()
			if i%2 == 0 {
				require.NoError(t, e.RemoveNode(0))
			}
			assertContiguous(t, e)
		}
	})

	t.Run("移动节点", func(t *testing.T) {
		e := NewEditor()
		e.AddNode()
		e.AddNode()
		require.NoError(t, e.MoveNode(2, 0))
		assertContiguous(t, e)
		assert.Equal(t, "审批节点 3", e.Nodes()[0].NodeName)
		assert.Equal(t, "直属上级", e.Nodes()[1].NodeName)

		require.NoError(t, e.MoveNode(0, 2))
		assert.Equal(t, "审批节点 3", e.Nodes()[2].NodeName)
		assertContiguous(t, e)
	})

	t.Run("越界", func(t *testing.T) {
		e := NewEditor()
		assert.Error(t, e.RemoveNode(1))
		assert.Error(t, e.MoveNode(0, 3))
	})
}

// TestEditor_SetApproverType 测试切换审批人类型
func TestEditor_SetApproverType(t *testing.T) {
	e := NewEditor()
	e.AddNode()
	name := "Alice"
	require.NoError(t, e.UpdateNode(1, NodePatch{ApproverID: int64Ptr(2), ApproverName: &name}))
	assert.Equal(t, int64(2), *e.Nodes()[1].ApproverID)

	require.NoError(t, e.SetApproverType(1, core.ApproverTypePosition))
	assert.Nil(t, e.Nodes()[1].ApproverID)
	assert.Empty(t, e.Nodes()[1].ApproverName)

	// 切换成相同的类型也会清空
	require.NoError(t, e.UpdateNode(1, NodePatch{ApproverID: int64Ptr(1)}))
	require.NoError(t, e.SetApproverType(1, core.ApproverTypePosition))
	assert.Nil(t, e.Nodes()[1].ApproverID)

	assert.Error(t, e.SetApproverType(1, "MANAGER"))
}

// TestEditor_Validate 测试保存前校验
func TestEditor_Validate(t *testing.T) {
	e := NewEditor()
	e.AddNode()

	err := e.Validate()
	require.Error(t, err)
	errs := err.(core.ValidationErrors)
	assert.NotNil(t, errs.Field("name"))
	assert.NotNil(t, errs.Field("typeCode"))
	assert.NotNil(t, errs.Field("nodes[1]"))

	e.SetName("请假流程")
	require.NoError(t, e.SetTypeCode("LEAVE"))
	require.NoError(t, e.UpdateNode(1, NodePatch{ApproverID: int64Ptr(1)}))
	require.NoError(t, e.Validate())

	req, err := e.CreateRequest()
	require.NoError(t, err)
	assert.Equal(t, "LEAVE", req.TypeCode)
	assert.Len(t, req.Nodes, 2)

	_, err = e.UpdateRequest()
	assert.True(t, errors.Is(err, core.ErrInvalidState))

	t.Run("没有节点", func(t *testing.T) {
		e := NewEditor()
		e.SetName("x")
		_ = e.SetTypeCode("GENERAL")
		require.NoError(t, e.RemoveNode(0))
		err := e.Validate()
		require.Error(t, err)
		assert.NotNil(t, err.(core.ValidationErrors).Field("nodes"))
	})
}

// TestEditWorkflow 测试编辑已有工作流
func TestEditWorkflow(t *testing.T) {
	original := &core.Workflow{
		ID:       7,
		Name:     "报销流程",
		TypeCode: "EXPENSE",
		Status:   1,
		Nodes: []*core.WorkflowNode{
			{ID: 1, NodeName: "财务", NodeOrder: 1, ApproverType: core.ApproverTypePosition, ApproverID: int64Ptr(1)},
			{ID: 2, NodeName: "总经理", NodeOrder: 3, ApproverType: core.ApproverTypeUser, ApproverID: int64Ptr(1)},
		},
	}
	e := EditWorkflow(original)
	assert.True(t, e.IsEdit())
	assertContiguous(t, e)

	t.Run("审批类型不可修改", func(t *testing.T) {
		err := e.SetTypeCode("LEAVE")
		assert.True(t, errors.Is(err, core.ErrInvalidState))
		assert.Equal(t, "EXPENSE", e.Draft().TypeCode)
	})

	t.Run("不修改原始数据", func(t *testing.T) {
		require.NoError(t, e.SetApproverType(0, core.ApproverTypeDepartmentHead))
		assert.NotNil(t, original.Nodes[0].ApproverID)
		assert.Equal(t, 3, original.Nodes[1].NodeOrder)
	})

	t.Run("生成更新请求", func(t *testing.T) {
		req, err := e.UpdateRequest()
		require.NoError(t, err)
		assert.Equal(t, "报销流程", req.Name)
		assert.Len(t, req.Nodes, 2)
	})
}
