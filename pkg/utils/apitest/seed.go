package apitest

import (
	"github.com/codelieche/approval/pkg/core"
)

func int64Ptr(v int64) *int64 { return &v }

// seed 预置数据
//
// 部门：总公司(1, 负责人admin) > 研发部(2, 负责人alice)
// 用户：admin(管理员)、alice、bob，密码都是 password
// 工作流：
//   - LEAVE: 部门负责人 -> admin
//   - EXPENSE: 财务职位(1 -> admin)
//   - GENERAL: 部门负责人
func (s *Server) seed() {
	s.roles = []*core.RoleInfo{
		{ID: 1, Code: core.RoleAdmin, Name: "管理员"},
		{ID: 2, Code: "user", Name: "普通用户"},
	}
	s.positions = []*core.Position{
		{ID: 1, Code: "FINANCE", Name: "财务", Status: 1},
		{ID: 2, Code: "HR", Name: "人事", Status: 1},
	}
	s.positionUsers[1] = AdminID
	s.positionUsers[2] = AliceID

	s.departments[1] = &core.Department{ID: 1, Name: "总公司", ParentID: 0, LeaderID: int64Ptr(AdminID), SortOrder: 1, Status: 1}
	s.departments[2] = &core.Department{ID: 2, Name: "研发部", ParentID: 1, LeaderID: int64Ptr(AliceID), SortOrder: 1, Status: 1}

	s.users[AdminID] = &core.User{ID: AdminID, Username: "admin", Nickname: "管理员", Email: "admin@example.com",
		DepartmentID: int64Ptr(1), Roles: []*core.RoleInfo{s.roles[0]}, Status: 1}
	s.users[AliceID] = &core.User{ID: AliceID, Username: "alice", Nickname: "Alice", Email: "alice@example.com",
		DepartmentID: int64Ptr(2), Roles: []*core.RoleInfo{s.roles[1]}, Status: 1}
	s.users[BobID] = &core.User{ID: BobID, Username: "bob", Nickname: "Bob", Email: "bob@example.com",
		DepartmentID: int64Ptr(2), Roles: []*core.RoleInfo{s.roles[1]}, Status: 1}
	for _, u := range s.users {
		s.passwords[u.Username] = "password"
	}

	s.approvalTypes = []*core.ApprovalType{
		{ID: 1, Code: "LEAVE", Name: "请假", Icon: "calendar", Color: "blue", Status: 1},
		{ID: 2, Code: "EXPENSE", Name: "报销", Icon: "wallet", Color: "green", Status: 1},
		{ID: 3, Code: "GENERAL", Name: "通用", Icon: "file", Color: "gray", Status: 1},
	}

	s.workflows[1] = &core.Workflow{ID: 1, Name: "请假流程", TypeCode: "LEAVE", TypeName: "请假", Status: 1, Nodes: []*core.WorkflowNode{
		{ID: 1, NodeName: "直属上级", NodeOrder: 1, ApproverType: core.ApproverTypeDepartmentHead},
		{ID: 2, NodeName: "总经理", NodeOrder: 2, ApproverType: core.ApproverTypeUser, ApproverID: int64Ptr(AdminID), ApproverName: "管理员"},
	}}
	s.workflows[2] = &core.Workflow{ID: 2, Name: "报销流程", TypeCode: "EXPENSE", TypeName: "报销", Status: 1, Nodes: []*core.WorkflowNode{
		{ID: 3, NodeName: "财务审核", NodeOrder: 1, ApproverType: core.ApproverTypePosition, ApproverID: int64Ptr(1), ApproverName: "财务"},
	}}
	s.workflows[3] = &core.Workflow{ID: 3, Name: "通用流程", TypeCode: "GENERAL", TypeName: "通用", Status: 1, Nodes: []*core.WorkflowNode{
		{ID: 4, NodeName: "直属上级", NodeOrder: 1, ApproverType: core.ApproverTypeDepartmentHead},
	}}
	for _, w := range s.workflows {
		w.NodeCount = len(w.Nodes)
	}
}
