package content

import (
	"fmt"
	"math"

	"github.com/codelieche/approval/pkg/core"
)

// ExpenseTypes 报销类型
var ExpenseTypes = []Option{
	{Value: "travel", Label: "差旅费"},
	{Value: "office", Label: "办公费"},
	{Value: "entertainment", Label: "招待费"},
	{Value: "training", Label: "培训费"},
	{Value: "equipment", Label: "设备费"},
	{Value: "other", Label: "其他"},
}

// ExpenseTypeLabel 报销类型的中文名称
func ExpenseTypeLabel(value string) string {
	return lookup(ExpenseTypes, value)
}

// ExpenseItem 费用明细
type ExpenseItem struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount" label:"金额" validate:"gte=0"`
	Description string  `json:"description"`
}

// ExpenseContent 报销内容，TotalAmount 始终等于明细金额之和
type ExpenseContent struct {
	ExpenseType string        `json:"expenseType" label:"报销类型" validate:"required"`
	TotalAmount float64       `json:"totalAmount"`
	Items       []ExpenseItem `json:"items" label:"费用明细" validate:"min=1,dive"`
	Remark      string        `json:"remark"`
}

// NewExpenseContent 新的报销内容，默认带一行空明细
func NewExpenseContent() *ExpenseContent {
	return &ExpenseContent{Items: []ExpenseItem{{}}}
}

// TypeCode 实现Content
func (c *ExpenseContent) TypeCode() string {
	return TypeExpense
}

// AddItem 追加一行明细
func (c *ExpenseContent) AddItem(item ExpenseItem) {
	c.Items = append(c.Items, item)
	c.recalculate()
}

// UpdateItem 修改第index行明细
func (c *ExpenseContent) UpdateItem(index int, item ExpenseItem) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("费用明细不存在: %d", index+1)
	}
	c.Items[index] = item
	c.recalculate()
	return nil
}

// RemoveItem 删除第index行明细，至少保留一行
func (c *ExpenseContent) RemoveItem(index int) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("费用明细不存在: %d", index+1)
	}
	if len(c.Items) <= 1 {
		return core.NewValidationError("items", "至少保留一条费用明细")
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.recalculate()
	return nil
}

// recalculate 重新计算总金额，保留两位小数
func (c *ExpenseContent) recalculate() {
	var total float64
	for _, item := range c.Items {
		total += item.Amount
	}
	c.TotalAmount = math.Round(total*100) / 100
}

// Validate 实现Content
func (c *ExpenseContent) Validate() error {
	c.recalculate()
	return core.ValidateStruct(c)
}
