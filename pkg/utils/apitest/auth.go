package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/codelieche/approval/pkg/core"
	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// authUser 用户的会话快照
func authUser(u *core.User) *core.AuthUser {
	return &core.AuthUser{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Email:        u.Email,
		Avatar:       u.Avatar,
		DepartmentID: u.DepartmentID,
		Roles:        u.RoleCodes(),
	}
}

// findUserByName 调用方持有锁
func (s *Server) findUserByName(username string) *core.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Server) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUserByName(body.Username)
	if user == nil || s.passwords[body.Username] != body.Password {
		fail(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}
	if user.Status != 1 {
		fail(c, http.StatusForbidden, "用户已被禁用")
		return
	}
	user.LastLoginAt = s.timestamp()
	s.addLog(user.ID, "AUTH", "LOGIN", strconv.FormatInt(user.ID, 10), "用户登录")
	ok(c, &core.LoginResponse{
		Token:     s.issueToken(user.ID),
		TokenType: "Bearer",
		User:      authUser(user),
	})
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUserByName(body.Username) != nil {
		fail(c, 1003, "用户名已存在")
		return
	}
	user := &core.User{
		ID:        s.id(),
		Username:  body.Username,
		Nickname:  body.Nickname,
		Email:     body.Email,
		Roles:     []*core.RoleInfo{s.roles[1]},
		Status:    1,
		CreatedAt: s.timestamp(),
	}
	s.users[user.ID] = user
	s.passwords[user.Username] = body.Password
	ok(c, nil)
}

// sortedUsers 按ID排序的用户，调用方持有锁
func (s *Server) sortedUsers() []*core.User {
	users := make([]*core.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *Server) listUsers(c *gin.Context) {
	keyword := c.Query("keyword")
	status := c.Query("status")
	department := c.Query("departmentId")

	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*core.User, 0)
	for _, u := range s.sortedUsers() {
		if keyword != "" && !strings.Contains(u.Username, keyword) && !strings.Contains(u.Nickname, keyword) {
			continue
		}
		if status != "" && strconv.Itoa(u.Status) != status {
			continue
		}
		if department != "" && (u.DepartmentID == nil || strconv.FormatInt(*u.DepartmentID, 10) != department) {
			continue
		}
		result = append(result, u)
	}
	ok(c, paginate(c, result))
}

func (s *Server) allUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.sortedUsers())
}

// paramID 解析路径里的数字ID
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的ID")
		return 0, false
	}
	return id, true
}

func (s *Server) getUser(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[id]
	if !exists {
		notFound(c)
		return
	}
	ok(c, user)
}

// applyUser 把请求写入用户，调用方持有锁
func (s *Server) applyUser(user *core.User, req *core.UserRequest) {
	if req.Username != "" && req.Username != user.Username {
		if password, exists := s.passwords[user.Username]; exists {
			delete(s.passwords, user.Username)
			s.passwords[req.Username] = password
		}
		user.Username = req.Username
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	user.Email = req.Email
	user.Phone = req.Phone
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	user.DepartmentID = req.DepartmentID
	user.DepartmentName = ""
	if req.DepartmentID != nil {
		if dept, exists := s.departments[*req.DepartmentID]; exists {
			user.DepartmentName = dept.Name
		}
	}
	if req.RoleIDs != nil {
		user.Roles = user.Roles[:0:0]
		for _, r := range s.roles {
			for _, id := range req.RoleIDs {
				if r.ID == id {
					user.Roles = append(user.Roles, r)
				}
			}
		}
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Password != "" {
		s.passwords[user.Username] = req.Password
	}
}

func (s *Server) createUser(c *gin.Context) {
	var req core.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUserByName(req.Username) != nil {
		fail(c, 1003, "用户名已存在")
		return
	}
	user := &core.User{ID: s.id(), Username: req.Username, Status: 1, CreatedAt: s.timestamp(), Roles: []*core.RoleInfo{}}
	s.applyUser(user, &req)
	s.users[user.ID] = user
	s.addLog(c.GetInt64("userID"), "USER", "CREATE", strconv.FormatInt(user.ID, 10), "创建用户: "+user.Username)
	ok(c, user)
}

func (s *Server) updateUser(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req core.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.users[c.GetInt64("userID")]
	if id != current.ID && !hasAdminRole(current) {
		c.JSON(http.StatusForbidden, envelope(http.StatusForbidden, "权限不足", nil))
		return
	}
	user, exists := s.users[id]
	if !exists {
		notFound(c)
		return
	}
	if other := s.findUserByName(req.Username); other != nil && other.ID != id {
		fail(c, 1003, "用户名已存在")
		return
	}
	// 非管理员不能修改自己的角色和状态
	if !hasAdminRole(current) {
		req.RoleIDs = nil
		req.Status = nil
	}
	s.applyUser(user, &req)
	s.addLog(current.ID, "USER", "UPDATE", strconv.FormatInt(user.ID, 10), "更新用户: "+user.Username)
	ok(c, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[id]
	if !exists {
		notFound(c)
		return
	}
	delete(s.users, id)
	delete(s.passwords, user.Username)
	s.addLog(c.GetInt64("userID"), "USER", "DELETE", strconv.FormatInt(id, 10), "删除用户: "+user.Username)
	ok(c, nil)
}

func (s *Server) updateUserStatus(c *gin.Context) {
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
	user, exists := s.users[id]
	if !exists {
		notFound(c)
		return
	}
	user.Status = body.Status
	ok(c, nil)
}

func (s *Server) changePassword(c *gin.Context) {
	var req core.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, core.ErrBadRequest.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[c.GetInt64("userID")]
	if s.passwords[user.Username] != req.OldPassword {
		fail(c, http.StatusBadRequest, "原密码错误")
		return
	}
	s.passwords[user.Username] = req.NewPassword
	s.addLog(user.ID, "AUTH", "PASSWORD_CHANGE", strconv.FormatInt(user.ID, 10), "修改密码")
	ok(c, nil)
}

func (s *Server) listRoles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.roles)
}

func (s *Server) listPositions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.positions)
}
