// Package main 审批系统命令行客户端 approvalctl
//
// 通过审批服务的 REST 接口完成：
// 1. 登录注册，会话保存在本地文件或Redis
// 2. 发起审批，处理待我审批，撤回自己发起的审批
// 3. 查看通知和工作台
// 4. 管理员维护用户、部门、审批类型、工作流，查看操作日志
package main

import "github.com/codelieche/approval/cmd"

func main() {
	cmd.Execute()
}
