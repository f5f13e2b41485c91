package department

import (
	"testing"

	"github.com/codelieche/approval/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dept(id, parentID int64, sortOrder int) *core.Department {
	return &core.Department{ID: id, Name: "部门", ParentID: parentID, SortOrder: sortOrder}
}

func optionIDs(options []ParentOption) []int64 {
	ids := make([]int64, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	return ids
}

// TestBuildTree 测试组装部门树
func TestBuildTree(t *testing.T) {
	t.Run("按上级嵌套", func(t *testing.T) {
		tree := BuildTree([]*core.Department{dept(1, 0, 0), dept(2, 1, 0)}, nil)
		require.Len(t, tree, 1)
		assert.Equal(t, int64(1), tree[0].ID)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, int64(2), tree[0].Children[0].ID)
	})

	t.Run("同级按排序号和ID排序", func(t *testing.T) {
		tree := BuildTree([]*core.Department{dept(3, 0, 2), dept(1, 0, 2), dept(2, 0, 1)}, nil)
		assert.Equal(t, []int64{2, 1, 3}, []int64{tree[0].ID, tree[1].ID, tree[2].ID})
	})

	t.Run("上级不存在作为根节点", func(t *testing.T) {
		tree := BuildTree([]*core.Department{dept(5, 99, 0)}, nil)
		require.Len(t, tree, 1)
		assert.Equal(t, int64(5), tree[0].ID)
	})

	t.Run("存在环时不会丢失部门", func(t *testing.T) {
		tree := BuildTree([]*core.Department{dept(1, 2, 0), dept(2, 1, 0), dept(3, 1, 0)}, nil)
		count := 0
		Walk(tree, func(*core.DepartmentTree, int) { count++ })
		assert.Equal(t, 3, count)
		assert.NotNil(t, Find(tree, 3))
	})

	t.Run("负责人名称", func(t *testing.T) {
		d := dept(1, 0, 0)
		leader := int64(7)
		d.LeaderID = &leader
		tree := BuildTree([]*core.Department{d}, map[int64]string{7: "Alice"})
		assert.Equal(t, "Alice", tree[0].LeaderName)
	})
}

// TestParentOptions 测试上级部门选项
func TestParentOptions(t *testing.T) {
	tree := BuildTree([]*core.Department{dept(1, 0, 0), dept(2, 1, 0), dept(3, 2, 0), dept(4, 0, 1)}, nil)

	t.Run("排除自己", func(t *testing.T) {
		ids := optionIDs(ParentOptions(BuildTree([]*core.Department{dept(1, 0, 0), dept(2, 1, 0)}, nil), 1))
		assert.Equal(t, []int64{RootOption}, ids)
	})

	t.Run("排除所有下级", func(t *testing.T) {
		ids := optionIDs(ParentOptions(tree, 2))
		assert.Equal(t, []int64{RootOption, 1, 4}, ids)
		assert.False(t, ValidParent(tree, 2, 3))
		assert.True(t, ValidParent(tree, 2, 4))
	})

	t.Run("新建时可以选择全部", func(t *testing.T) {
		options := ParentOptions(tree, RootOption)
		assert.Equal(t, []int64{RootOption, 1, 2, 3, 4}, optionIDs(options))
		assert.Equal(t, 2, options[3].Depth)
	})
}

// TestExpansion 测试展开状态
func TestExpansion(t *testing.T) {
	tree := BuildTree([]*core.Department{dept(1, 0, 0), dept(2, 1, 0), dept(3, 2, 0)}, nil)
	e := NewExpansion()
	assert.True(t, e.Expanded(1))

	visible := func() []int64 {
		var ids []int64
		e.Visible(tree, func(node *core.DepartmentTree, _ int) { ids = append(ids, node.ID) })
		return ids
	}
	assert.Equal(t, []int64{1, 2, 3}, visible())

	e.Toggle(2)
	assert.False(t, e.Expanded(2))
	assert.Equal(t, []int64{1, 2}, visible())

	e.Collapse(1)
	assert.Equal(t, []int64{1}, visible())

	e.Expand(1)
	e.Toggle(2)
	assert.Equal(t, []int64{1, 2, 3}, visible())
}
