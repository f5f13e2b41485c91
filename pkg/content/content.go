// Package content 审批内容
//
// 审批记录的 content 字段是按 typeCode 约定结构的JSON字符串：
// LEAVE 对应请假，EXPENSE 对应报销，其它类型都按通用内容处理。
package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 内置的审批类型编码
const (
	TypeLeave   = "LEAVE"
	TypeExpense = "EXPENSE"
)

// Content 审批内容
type Content interface {
	// TypeCode 内容对应的审批类型，通用内容返回空字符串
	TypeCode() string
	// Validate 提交前校验
	Validate() error
}

// Option 下拉选项
type Option struct {
	Value string
	Label string
}

// lookup 根据值查找选项的名称，找不到时原样返回
func lookup(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// New 创建某个审批类型的空白内容
func New(typeCode string) Content {
	switch strings.ToUpper(typeCode) {
	case TypeLeave:
		return &LeaveContent{}
	case TypeExpense:
		return NewExpenseContent()
	default:
		return &GeneralContent{}
	}
}

// Encode 序列化成提交时的JSON字符串
func Encode(c Content) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("序列化审批内容失败: %w", err)
	}
	return string(data), nil
}

// Decode 按审批类型解析内容
//
// 解析失败时退回通用内容，并把原始文本放在 Content 字段里。
func Decode(typeCode, raw string) Content {
	var target Content
	switch strings.ToUpper(typeCode) {
	case TypeLeave:
		target = &LeaveContent{}
	case TypeExpense:
		target = &ExpenseContent{}
	default:
		return decodeGeneral(raw)
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return &GeneralContent{Content: raw}
	}
	// 天数不信任传入的值
	if leave, ok := target.(*LeaveContent); ok {
		leave.Days = LeaveDays(leave.StartDate, leave.EndDate)
	}
	return target
}

// decodeGeneral 通用内容可能是 {"content": "..."}，也可能是纯文本
func decodeGeneral(raw string) *GeneralContent {
	var general GeneralContent
	if err := json.Unmarshal([]byte(raw), &general); err == nil && general.Content != "" {
		return &general
	}
	return &GeneralContent{Content: raw}
}
