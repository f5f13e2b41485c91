package apitest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/codelieche/approval/pkg/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) listEnabledTypes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*core.ApprovalType, 0)
	for _, t := range s.approvalTypes {
		if t.Status == 1 {
			result = append(result, t)
		}
	}
	ok(c, result)
}

// findType 根据编码查找审批类型，调用方持有锁
func (s *Server) findType(code string) *core.ApprovalType {
	for _, t := range s.approvalTypes {
		if t.Code == code {
			return t
		}
	}
	return nil
}

// findWorkflow 根据审批类型查找启用的工作流，调用方持有锁
func (s *Server) findWorkflow(typeCode string) *core.Workflow {
	ids := make([]int64, 0, len(s.workflows))
	for id := range s.workflows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w := s.workflows[id]
		if w.TypeCode == typeCode && w.Status == 1 {
			return w
		}
	}
	return nil
}

// resolveApprover 解析节点的审批人，调用方持有锁
func (s *Server) resolveApprover(node *core.WorkflowNode, initiatorID int64) int64 {
	switch node.ApproverType {
	case core.ApproverTypeUser:
		if node.ApproverID != nil {
			return *node.ApproverID
		}
	case core.ApproverTypePosition:
		if node.ApproverID != nil {
			if userID, ok := s.positionUsers[*node.ApproverID]; ok {
				return userID
			}
		}
	case core.ApproverTypeDepartmentHead:
		initiator := s.users[initiatorID]
		if initiator != nil && initiator.DepartmentID != nil {
			dept := s.departments[*initiator.DepartmentID]
			for dept != nil {
				if dept.LeaderID != nil && *dept.LeaderID != initiatorID {
					return *dept.LeaderID
				}
				dept = s.departments[dept.ParentID]
			}
		}
	}
	return AdminID
}

// startNode 生成第order个节点，调用方持有锁
func (s *Server) startNode(record *core.ApprovalRecord, workflow *core.Workflow, order int) {
	template := workflow.Nodes[order-1]
	approverID := s.resolveApprover(template, record.InitiatorID)
	record.Nodes = append(record.Nodes, &core.ApprovalNode{
		ID:         s.id(),
		NodeName:   template.NodeName,
		ApproverID: approverID,
		NodeOrder:  order,
		Status:     core.NodeStatusPending,
		CreatedAt:  s.timestamp(),
	})
	record.CurrentNodeOrder = order
	s.notify(approverID, "待审批: "+record.Title, record.InitiatorName+" 提交了审批", record.ID)
}

func (s *Server) createApproval(c *gin.Context) {
	var req core.CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	if req.Title == "" || req.TypeCode == "" {
		fail(c, http.StatusBadRequest, "标题和审批类型不能为空")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	approvalType := s.findType(req.TypeCode)
	if approvalType == nil {
		fail(c, http.StatusBadRequest, "审批类型不存在")
		return
	}
	workflow := s.findWorkflow(req.TypeCode)
	if workflow == nil || len(workflow.Nodes) == 0 {
		fail(c, 1001, "该审批类型未配置工作流")
		return
	}

	initiator := s.users[c.GetInt64("userID")]
	record := &core.ApprovalRecord{
		ID:            uuid.New().String(),
		Title:         req.Title,
		TypeCode:      approvalType.Code,
		TypeName:      approvalType.Name,
		TypeIcon:      approvalType.Icon,
		TypeColor:     approvalType.Color,
		Content:       req.Content,
		InitiatorID:   initiator.ID,
		InitiatorName: initiator.Nickname,
		Priority:      req.Priority,
		Status:        core.ApprovalStatusPending,
		CreatedAt:     s.timestamp(),
		UpdatedAt:     s.timestamp(),
	}
	for _, id := range req.AttachmentIDs {
		if file, ok := s.files[id]; ok {
			record.Attachments = append(record.Attachments, file)
		}
	}
	record.StatusName = record.Status.String()
	s.startNode(record, workflow, 1)

	s.approvals[record.ID] = record
	s.approvalOrder = append(s.approvalOrder, record.ID)
	s.addLog(initiator.ID, "APPROVAL", "SUBMIT", record.ID, "提交审批: "+record.Title)
	ok(c, record)
}

// listRecords 按创建时间倒序过滤审批记录，调用方持有锁
func (s *Server) listRecords(keep func(*core.ApprovalRecord) bool) []*core.ApprovalRecord {
	result := make([]*core.ApprovalRecord, 0)
	for i := len(s.approvalOrder) - 1; i >= 0; i-- {
		record := s.approvals[s.approvalOrder[i]]
		if keep(record) {
			result = append(result, record)
		}
	}
	return result
}

func (s *Server) listMyApprovals(c *gin.Context) {
	userID := c.GetInt64("userID")
	statusStr := c.Query("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.listRecords(func(r *core.ApprovalRecord) bool {
		if r.InitiatorID != userID {
			return false
		}
		if statusStr != "" {
			status, err := strconv.Atoi(statusStr)
			return err == nil && int(r.Status) == status
		}
		return true
	})
	ok(c, paginate(c, records))
}

func (s *Server) listTodoApprovals(c *gin.Context) {
	userID := c.GetInt64("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.listRecords(func(r *core.ApprovalRecord) bool {
		node := r.CurrentNode()
		return node != nil && node.ApproverID == userID
	})
	ok(c, paginate(c, records))
}

func (s *Server) getApproval(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.approvals[c.Param("id")]
	if !exists {
		notFound(c)
		return
	}
	ok(c, record)
}

func (s *Server) approve(c *gin.Context) {
	var req core.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}
	userID := c.GetInt64("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.approvals[c.Param("id")]
	if !exists {
		notFound(c)
		return
	}
	node := record.CurrentNode()
	if node == nil {
		fail(c, 1002, "审批已结束")
		return
	}
	if node.ApproverID != userID {
		c.JSON(http.StatusForbidden, envelope(http.StatusForbidden, "您不是当前节点的审批人", nil))
		return
	}

	node.Comment = req.Comment
	node.ApprovedAt = s.timestamp()
	record.UpdatedAt = s.timestamp()

	operation := "APPROVE"
	if !req.Approved {
		operation = "REJECT"
		node.Status = core.NodeStatusRejected
		record.Status = core.ApprovalStatusRejected
		record.CompletedAt = s.timestamp()
		s.notify(record.InitiatorID, "审批被拒绝: "+record.Title, req.Comment, record.ID)
	} else {
		node.Status = core.NodeStatusApproved
		workflow := s.findWorkflow(record.TypeCode)
		if workflow != nil && node.NodeOrder < len(workflow.Nodes) {
			record.Status = core.ApprovalStatusInProgress
			s.startNode(record, workflow, node.NodeOrder+1)
		} else {
			record.Status = core.ApprovalStatusApproved
			record.CompletedAt = s.timestamp()
			s.notify(record.InitiatorID, "审批已通过: "+record.Title, req.Comment, record.ID)
		}
	}
	record.StatusName = record.Status.String()
	s.addLog(userID, "APPROVAL", operation, record.ID, req.Comment)
	ok(c, nil)
}

func (s *Server) withdraw(c *gin.Context) {
	userID := c.GetInt64("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.approvals[c.Param("id")]
	if !exists {
		notFound(c)
		return
	}
	if record.InitiatorID != userID {
		c.JSON(http.StatusForbidden, envelope(http.StatusForbidden, "只有发起人可以撤回", nil))
		return
	}
	if !record.Status.IsActive() {
		fail(c, 1002, "当前状态不能撤回")
		return
	}

	// 撤回后不再保留待审批节点
	nodes := make([]*core.ApprovalNode, 0, len(record.Nodes))
	for _, n := range record.Nodes {
		if n.Status != core.NodeStatusPending {
			nodes = append(nodes, n)
		}
	}
	record.Nodes = nodes
	record.Status = core.ApprovalStatusWithdrawn
	record.StatusName = record.Status.String()
	record.CompletedAt = s.timestamp()
	record.UpdatedAt = s.timestamp()
	s.addLog(userID, "APPROVAL", "WITHDRAW", record.ID, "撤回审批")
	ok(c, nil)
}

func (s *Server) dashboardStatistics(c *gin.Context) {
	userID := c.GetInt64("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &core.DashboardStatistics{}
	for _, r := range s.approvals {
		if r.InitiatorID != userID {
			continue
		}
		stats.Total++
		switch {
		case r.Status.IsActive():
			stats.Pending++
		case r.Status == core.ApprovalStatusApproved:
			stats.Approved++
		case r.Status == core.ApprovalStatusRejected:
			stats.Rejected++
		}
	}
	ok(c, stats)
}

func (s *Server) recentActivities(c *gin.Context) {
	userID := c.GetInt64("userID")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	activities := make([]*core.RecentActivity, 0)
	records := s.listRecords(func(r *core.ApprovalRecord) bool { return r.InitiatorID == userID })
	for _, r := range records {
		if len(activities) >= limit {
			break
		}
		activityType := "created"
		switch r.Status {
		case core.ApprovalStatusApproved:
			activityType = "approved"
		case core.ApprovalStatusRejected:
			activityType = "rejected"
		case core.ApprovalStatusWithdrawn:
			activityType = "withdrawn"
		}
		activities = append(activities, &core.RecentActivity{
			ApprovalID:   r.ID,
			ActivityType: activityType,
			Title:        r.Title,
			TypeName:     r.TypeName,
			TypeIcon:     r.TypeIcon,
			TypeColor:    r.TypeColor,
			ActivityTime: r.UpdatedAt,
			Status:       r.Status,
		})
	}
	ok(c, activities)
}
