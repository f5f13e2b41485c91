package apitest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/gin-gonic/gin"
)

func (s *Server) listApprovalTypes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.approvalTypes)
}

// findTypeByID 调用方持有锁
func (s *Server) findTypeByID(id int64) (int, *core.ApprovalType) {
	for i, t := range s.approvalTypes {
		if t.ID == id {
			return i, t
		}
	}
	return -1, nil
}

func (s *Server) getApprovalType(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, t := s.findTypeByID(id)
	if t == nil {
		notFound(c)
		return
	}
	ok(c, t)
}

func (s *Server) createApprovalType(c *gin.Context) {
	var req core.ApprovalTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findType(req.Code) != nil {
		fail(c, 1003, "类型编码已存在")
		return
	}
	t := &core.ApprovalType{ID: s.id(), Code: req.Code, Status: 1}
	applyType(t, &req)
	s.approvalTypes = append(s.approvalTypes, t)
	s.addLog(c.GetInt64("userID"), "SYSTEM", "CREATE", req.Code, "创建审批类型: "+req.Name)
	ok(c, t)
}

func applyType(t *core.ApprovalType, req *core.ApprovalTypeRequest) {
	t.Name = req.Name
	t.Description = req.Description
	t.Icon = req.Icon
	t.Color = req.Color
	if req.Status != nil {
		t.Status = *req.Status
	}
}

func (s *Server) updateApprovalType(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req core.ApprovalTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, t := s.findTypeByID(id)
	if t == nil {
		notFound(c)
		return
	}
	applyType(t, &req)
	ok(c, t)
}

func (s *Server) deleteApprovalType(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	index, t := s.findTypeByID(id)
	if t == nil {
		notFound(c)
		return
	}
	s.approvalTypes = append(s.approvalTypes[:index], s.approvalTypes[index+1:]...)
	ok(c, nil)
}

// sortedWorkflows 按ID排序，调用方持有锁
func (s *Server) sortedWorkflows() []*core.Workflow {
	list := make([]*core.Workflow, 0, len(s.workflows))
	for _, w := range s.workflows {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Server) listWorkflows(c *gin.Context) {
	typeCode := c.Query("typeCode")
	status := c.Query("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*core.Workflow, 0)
	for _, w := range s.sortedWorkflows() {
		if typeCode != "" && w.TypeCode != typeCode {
			continue
		}
		if status != "" && strconv.Itoa(w.Status) != status {
			continue
		}
		result = append(result, w)
	}
	ok(c, paginate(c, result))
}

func (s *Server) getWorkflowByType(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.sortedWorkflows() {
		if w.TypeCode == c.Query("typeCode") {
			ok(c, w)
			return
		}
	}
	ok(c, nil)
}

func (s *Server) getWorkflow(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, exists := s.workflows[id]
	if !exists {
		notFound(c)
		return
	}
	ok(c, w)
}

// applyNodes 写入节点并补全审批人名称，调用方持有锁
func (s *Server) applyNodes(w *core.Workflow, nodes []*core.WorkflowNode) {
	w.Nodes = nodes
	w.NodeCount = len(nodes)
	for _, n := range nodes {
		if n.ID == 0 {
			n.ID = s.id()
		}
		if n.ApproverID == nil {
			continue
		}
		switch n.ApproverType {
		case core.ApproverTypeUser:
			if u, exists := s.users[*n.ApproverID]; exists {
				n.ApproverName = u.Nickname
			}
		case core.ApproverTypePosition:
			for _, p := range s.positions {
				if p.ID == *n.ApproverID {
					n.ApproverName = p.Name
				}
			}
		}
	}
}

func (s *Server) createWorkflow(c *gin.Context) {
	var req core.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findType(req.TypeCode)
	if t == nil {
		fail(c, http.StatusBadRequest, "审批类型不存在")
		return
	}
	userID := c.GetInt64("userID")
	w := &core.Workflow{
		ID:          s.id(),
		Name:        req.Name,
		TypeCode:    req.TypeCode,
		TypeName:    t.Name,
		Description: req.Description,
		Status:      req.Status,
		CreatedBy:   userID,
		CreatedAt:   s.timestamp(),
		UpdatedAt:   s.timestamp(),
	}
	s.applyNodes(w, req.Nodes)
	s.workflows[w.ID] = w
	s.addLog(userID, "WORKFLOW", "CREATE", strconv.FormatInt(w.ID, 10), "创建工作流: "+w.Name)
	ok(c, w)
}

func (s *Server) updateWorkflow(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req core.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, exists := s.workflows[id]
	if !exists {
		notFound(c)
		return
	}
	w.Name = req.Name
	w.Description = req.Description
	w.Status = req.Status
	w.UpdatedAt = s.timestamp()
	s.applyNodes(w, req.Nodes)
	s.addLog(c.GetInt64("userID"), "WORKFLOW", "UPDATE", strconv.FormatInt(w.ID, 10), "更新工作流: "+w.Name)
	ok(c, w)
}

func (s *Server) deleteWorkflow(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workflows[id]; !exists {
		notFound(c)
		return
	}
	delete(s.workflows, id)
	ok(c, nil)
}

func (s *Server) updateWorkflowStatus(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var body struct {
		Status int `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, exists := s.workflows[id]
	if !exists {
		notFound(c)
		return
	}
	w.Status = body.Status
	ok(c, nil)
}

// sortedDepartments 按排序号和ID排序，调用方持有锁
func (s *Server) sortedDepartments() []*core.Department {
	list := make([]*core.Department, 0, len(s.departments))
	for _, d := range s.departments {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Server) departmentTree(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := make(map[int64]*core.DepartmentTree)
	list := s.sortedDepartments()
	for _, d := range list {
		node := &core.DepartmentTree{Department: *d, Children: []*core.DepartmentTree{}}
		if d.LeaderID != nil {
			if u, exists := s.users[*d.LeaderID]; exists {
				node.LeaderName = u.Nickname
			}
		}
		nodes[d.ID] = node
	}
	roots := make([]*core.DepartmentTree, 0)
	for _, d := range list {
		if parent, exists := nodes[d.ParentID]; exists {
			parent.Children = append(parent.Children, nodes[d.ID])
		} else {
			roots = append(roots, nodes[d.ID])
		}
	}
	ok(c, roots)
}

func (s *Server) listDepartments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.sortedDepartments())
}

func (s *Server) getDepartment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, exists := s.departments[id]
	if !exists {
		notFound(c)
		return
	}
	ok(c, d)
}

func applyDepartment(d *core.Department, req *core.DepartmentRequest) {
	d.Name = req.Name
	d.ParentID = req.ParentID
	d.LeaderID = req.LeaderID
	d.SortOrder = req.SortOrder
	d.Status = req.Status
}

func (s *Server) createDepartment(c *gin.Context) {
	var req core.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.departments[req.ParentID]; req.ParentID != 0 && !exists {
		fail(c, http.StatusBadRequest, "上级部门不存在")
		return
	}
	d := &core.Department{ID: s.id(), CreatedAt: s.timestamp(), UpdatedAt: s.timestamp()}
	applyDepartment(d, &req)
	s.departments[d.ID] = d
	s.addLog(c.GetInt64("userID"), "DEPARTMENT", "CREATE", strconv.FormatInt(d.ID, 10), "创建部门: "+d.Name)
	ok(c, d)
}

func (s *Server) updateDepartment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req core.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, exists := s.departments[id]
	if !exists {
		notFound(c)
		return
	}
	// 上级部门不能是自己或自己的下级
	for parent := req.ParentID; parent != 0; {
		if parent == id {
			fail(c, http.StatusBadRequest, "上级部门不能是自己或下级部门")
			return
		}
		p, found := s.departments[parent]
		if !found {
			break
		}
		parent = p.ParentID
	}
	applyDepartment(d, &req)
	d.UpdatedAt = s.timestamp()
	ok(c, d)
}

func (s *Server) deleteDepartment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.departments[id]; !exists {
		notFound(c)
		return
	}
	for _, d := range s.departments {
		if d.ParentID == id {
			fail(c, 1004, "存在下级部门，不能删除")
			return
		}
	}
	delete(s.departments, id)
	ok(c, nil)
}
