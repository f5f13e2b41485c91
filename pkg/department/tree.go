// Package department 部门树
package department

import (
	"sort"

	"github.com/codelieche/approval/pkg/core"
)

// RootOption 顶级部门选项的ID
const RootOption int64 = 0

// BuildTree 把扁平的部门列表组装成树
//
// parentId 为0或上级不存在的部门作为根节点；同级按 sortOrder、id 排序。
// 存在环时，环上的部门会被提升为根节点，不会挂到自己的下级下面。
func BuildTree(flat []*core.Department, leaderNames map[int64]string) []*core.DepartmentTree {
	nodes := make(map[int64]*core.DepartmentTree, len(flat))
	parents := make(map[int64]int64, len(flat))
	for _, d := range flat {
		node := &core.DepartmentTree{Department: *d, Children: []*core.DepartmentTree{}}
		if d.LeaderID != nil {
			node.LeaderName = leaderNames[*d.LeaderID]
		}
		nodes[d.ID] = node
		parents[d.ID] = d.ParentID
	}

	roots := make([]*core.DepartmentTree, 0)
	for _, d := range flat {
		node := nodes[d.ID]
		parent, exists := nodes[d.ParentID]
		if d.ParentID == RootOption || !exists || inCycle(parents, d.ID) {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortTree(roots)
	return roots
}

// inCycle 沿着上级往上走是否会回到自己
func inCycle(parents map[int64]int64, id int64) bool {
	visited := map[int64]bool{id: true}
	current := parents[id]
	for current != RootOption {
		if current == id {
			return true
		}
		if visited[current] {
			return false
		}
		visited[current] = true
		next, exists := parents[current]
		if !exists {
			return false
		}
		current = next
	}
	return false
}

// sortTree 同级按 sortOrder、id 排序
func sortTree(nodes []*core.DepartmentTree) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, node := range nodes {
		sortTree(node.Children)
	}
}

// Walk 深度优先遍历，depth 从0开始
func Walk(tree []*core.DepartmentTree, fn func(node *core.DepartmentTree, depth int)) {
	var walk func(nodes []*core.DepartmentTree, depth int)
	walk = func(nodes []*core.DepartmentTree, depth int) {
		for _, node := range nodes {
			fn(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(tree, 0)
}

// Find 在树中查找部门
func Find(tree []*core.DepartmentTree, id int64) *core.DepartmentTree {
	var found *core.DepartmentTree
	Walk(tree, func(node *core.DepartmentTree, _ int) {
		if found == nil && node.ID == id {
			found = node
		}
	})
	return found
}

// Descendants 部门所有下级的ID，不包含自己
func Descendants(tree []*core.DepartmentTree, id int64) map[int64]bool {
	result := make(map[int64]bool)
	node := Find(tree, id)
	if node == nil {
		return result
	}
	Walk(node.Children, func(child *core.DepartmentTree, _ int) {
		result[child.ID] = true
	})
	return result
}

// ParentOption 上级部门选项
type ParentOption struct {
	ID    int64
	Name  string
	Depth int
}

// ParentOptions 编辑部门时可以选择的上级部门
//
// 第一个选项是顶级部门；编辑时排除部门自己和它的所有下级。新建时 editingID 传0。
func ParentOptions(tree []*core.DepartmentTree, editingID int64) []ParentOption {
	excluded := Descendants(tree, editingID)
	if editingID != RootOption {
		excluded[editingID] = true
	}

	options := []ParentOption{{ID: RootOption, Name: "无(顶级部门)"}}
	Walk(tree, func(node *core.DepartmentTree, depth int) {
		if !excluded[node.ID] {
			options = append(options, ParentOption{ID: node.ID, Name: node.Name, Depth: depth})
		}
	})
	return options
}

// ValidParent 是否可以把 parentID 设为 editingID 的上级
func ValidParent(tree []*core.DepartmentTree, editingID, parentID int64) bool {
	for _, option := range ParentOptions(tree, editingID) {
		if option.ID == parentID {
			return true
		}
	}
	return false
}

// Expansion 部门树的展开状态，默认全部展开
type Expansion struct {
	collapsed map[int64]bool
}

// NewExpansion 创建展开状态
func NewExpansion() *Expansion {
	return &Expansion{collapsed: make(map[int64]bool)}
}

// Expanded 是否展开
func (e *Expansion) Expanded(id int64) bool {
	return !e.collapsed[id]
}

// Toggle 切换展开状态
func (e *Expansion) Toggle(id int64) {
	if e.collapsed[id] {
		delete(e.collapsed, id)
		return
	}
	e.collapsed[id] = true
}

// Collapse 收起
func (e *Expansion) Collapse(id int64) {
	e.collapsed[id] = true
}

// Expand 展开
func (e *Expansion) Expand(id int64) {
	delete(e.collapsed, id)
}

// Visible 按展开状态过滤后可见的节点，收起的节点不显示下级
func (e *Expansion) Visible(tree []*core.DepartmentTree, fn func(node *core.DepartmentTree, depth int)) {
	var walk func(nodes []*core.DepartmentTree, depth int)
	walk = func(nodes []*core.DepartmentTree, depth int) {
		for _, node := range nodes {
			fn(node, depth)
			if e.Expanded(node.ID) {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(tree, 0)
}
