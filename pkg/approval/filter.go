package approval

import (
	"fmt"
	"sync"

	"github.com/codelieche/approval/pkg/core"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter 审批列表的表达式过滤
//
// 表达式中可以使用的变量：id, title, typeCode, status, priority, initiatorName, currentNodeOrder。
// 例如：status == 1 && priority >= 1
type Filter struct {
	cache map[string]*vm.Program
	mutex sync.RWMutex
}

// NewFilter 创建过滤器
func NewFilter() *Filter {
	return &Filter{cache: make(map[string]*vm.Program)}
}

// env 表达式的变量
func env(record *core.ApprovalRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":               record.ID,
		"title":            record.Title,
		"typeCode":         record.TypeCode,
		"status":           int(record.Status),
		"priority":         int(record.Priority),
		"initiatorName":    record.InitiatorName,
		"currentNodeOrder": record.CurrentNodeOrder,
	}
}

// Match 记录是否满足表达式，空表达式匹配全部
func (f *Filter) Match(expression string, record *core.ApprovalRecord) (bool, error) {
	if expression == "" {
		return true, nil
	}
	program, err := f.compile(expression)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env(record))
	if err != nil {
		return false, fmt.Errorf("执行过滤表达式失败: %w", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("过滤表达式结果不是 bool 类型: %T", output)
	}
	return result, nil
}

// Apply 过滤记录列表
func (f *Filter) Apply(expression string, records []*core.ApprovalRecord) ([]*core.ApprovalRecord, error) {
	result := make([]*core.ApprovalRecord, 0, len(records))
	for _, record := range records {
		ok, err := f.Match(expression, record)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, record)
		}
	}
	return result, nil
}

// compile 编译表达式，结果缓存
func (f *Filter) compile(expression string) (*vm.Program, error) {
	f.mutex.RLock()
	if program, ok := f.cache[expression]; ok {
		f.mutex.RUnlock()
		return program, nil
	}
	f.mutex.RUnlock()

	program, err := expr.Compile(expression,
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, core.NewValidationError("where", fmt.Sprintf("过滤表达式错误: %v", err))
	}

	f.mutex.Lock()
	f.cache[expression] = program
	f.mutex.Unlock()
	return program, nil
}
