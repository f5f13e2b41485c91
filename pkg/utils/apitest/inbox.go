package apitest

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Notify 给用户发送一条通知，用于测试未读数
func (s *Server) Notify(userID int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(userID, title, title, "")
}

// myNotifications 当前用户的通知，按时间倒序，调用方持有锁
func (s *Server) myNotifications(userID int64) []*core.Notification {
	result := make([]*core.Notification, 0)
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].userID == userID {
			result = append(result, s.notifications[i].Notification)
		}
	}
	return result
}

func (s *Server) listNotifications(c *gin.Context) {
	isRead := c.Query("isRead")

	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*core.Notification, 0)
	for _, n := range s.myNotifications(c.GetInt64("userID")) {
		if isRead != "" && fmt.Sprint(n.IsRead) != isRead {
			continue
		}
		result = append(result, n)
	}
	ok(c, paginate(c, result))
}

func (s *Server) unreadCount(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.myNotifications(c.GetInt64("userID")) {
		if !n.IsRead {
			count++
		}
	}
	ok(c, gin.H{"count": count})
}

func (s *Server) markAllRead(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.myNotifications(c.GetInt64("userID")) {
		if !n.IsRead {
			n.IsRead = true
			n.ReadAt = s.timestamp()
		}
	}
	ok(c, nil)
}

func (s *Server) markRead(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.myNotifications(c.GetInt64("userID")) {
		if n.ID == c.Param("id") {
			n.IsRead = true
			n.ReadAt = s.timestamp()
			ok(c, nil)
			return
		}
	}
	notFound(c)
}

// filterLogs 调用方持有锁
func (s *Server) filterLogs(keep func(*core.OperationLog) bool) []*core.OperationLog {
	result := make([]*core.OperationLog, 0)
	for i := len(s.logs) - 1; i >= 0; i-- {
		if keep(s.logs[i]) {
			result = append(result, s.logs[i])
		}
	}
	return result
}

func (s *Server) listLogs(c *gin.Context) {
	module := c.Query("module")
	operation := c.Query("operation")
	targetID := c.Query("targetId")
	keyword := c.Query("keyword")
	userKeyword := c.Query("usernameKeyword")
	userID := c.Query("userId")

	s.mu.Lock()
	defer s.mu.Unlock()
	logs := s.filterLogs(func(l *core.OperationLog) bool {
		switch {
		case module != "" && l.Module != module:
			return false
		case operation != "" && l.Operation != operation:
			return false
		case targetID != "" && l.TargetID != targetID:
			return false
		case keyword != "" && !strings.Contains(l.Detail, keyword):
			return false
		case userKeyword != "" && !strings.Contains(l.Username, userKeyword) && !strings.Contains(l.Nickname, userKeyword):
			return false
		case userID != "" && fmt.Sprint(l.UserID) != userID:
			return false
		}
		return true
	})
	ok(c, paginate(c, logs))
}

func (s *Server) logStatistics(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modules := make(map[string]int64)
	operations := make(map[string]int64)
	daily := make(map[string]int64)
	for _, l := range s.logs {
		modules[l.Module]++
		operations[l.Operation]++
		daily[l.CreatedAt.Format(time.DateOnly)]++
	}

	stats := &core.LogStatistics{
		TotalCount:     int64(len(s.logs)),
		ModuleStats:    []*core.ModuleStatItem{},
		OperationStats: []*core.OperationStatItem{},
		DailyStats:     []*core.DailyStatItem{},
	}
	for code, count := range modules {
		stats.ModuleStats = append(stats.ModuleStats, &core.ModuleStatItem{
			Module: code, ModuleName: core.LookupLogOption(core.LogModules, code), Count: count,
		})
	}
	for code, count := range operations {
		stats.OperationStats = append(stats.OperationStats, &core.OperationStatItem{
			Operation: code, OperationName: core.LookupLogOption(core.LogOperations, code), Count: count,
		})
	}
	for date, count := range daily {
		stats.DailyStats = append(stats.DailyStats, &core.DailyStatItem{Date: date, Count: count})
	}
	sort.Slice(stats.ModuleStats, func(i, j int) bool { return stats.ModuleStats[i].Module < stats.ModuleStats[j].Module })
	sort.Slice(stats.OperationStats, func(i, j int) bool {
		return stats.OperationStats[i].Operation < stats.OperationStats[j].Operation
	})
	sort.Slice(stats.DailyStats, func(i, j int) bool { return stats.DailyStats[i].Date < stats.DailyStats[j].Date })
	ok(c, stats)
}

func (s *Server) logModules(c *gin.Context) {
	ok(c, core.LogModules)
}

func (s *Server) logOperations(c *gin.Context) {
	ok(c, core.LogOperations)
}

func (s *Server) logsByTarget(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.filterLogs(func(l *core.OperationLog) bool { return l.TargetID == c.Param("id") }))
}

// previewTypes 支持在线预览的扩展名
var previewTypes = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".pdf": true}

func (s *Server) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "缺少上传文件")
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	attachment := &core.Attachment{
		ID:             id,
		FileName:       header.Filename,
		FileSize:       size,
		FileType:       strings.TrimPrefix(ext, "."),
		FileURL:        "/files/" + id + "/download",
		UploadedAt:     s.timestamp(),
		PreviewSupport: previewTypes[ext],
	}
	s.files[id] = attachment
	s.addLog(c.GetInt64("userID"), "FILE", "UPLOAD", id, "上传文件: "+header.Filename)
	ok(c, attachment)
}

func (s *Server) getFile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attachment, exists := s.files[c.Param("id")]
	if !exists {
		notFound(c)
		return
	}
	ok(c, attachment)
}

func (s *Server) deleteFile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[c.Param("id")]; !exists {
		notFound(c)
		return
	}
	delete(s.files, c.Param("id"))
	ok(c, nil)
}
