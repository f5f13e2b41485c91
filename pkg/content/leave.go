package content

import (
	"math"
	"time"

	"github.com/codelieche/approval/pkg/core"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// LeaveTypes 请假类型
var LeaveTypes = []Option{
	{Value: "annual", Label: "年假"},
	{Value: "sick", Label: "病假"},
	{Value: "personal", Label: "事假"},
	{Value: "marriage", Label: "婚假"},
	{Value: "maternity", Label: "产假"},
	{Value: "bereavement", Label: "丧假"},
}

// LeaveTypeLabel 请假类型的中文名称
func LeaveTypeLabel(value string) string {
	return lookup(LeaveTypes, value)
}

// LeaveContent 请假内容
type LeaveContent struct {
	LeaveType string `json:"leaveType" label:"请假类型" validate:"required,oneof=annual sick personal marriage maternity bereavement"`
	StartDate string `json:"startDate" label:"开始日期" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" label:"结束日期" validate:"required,datetime=2006-01-02"`
	Days      int    `json:"days"`
	Reason    string `json:"reason" label:"请假事由" validate:"notblank,max=500"`
}

// TypeCode 实现Content
func (c *LeaveContent) TypeCode() string {
	return TypeLeave
}

// SetStartDate 修改开始日期并重新计算天数
func (c *LeaveContent) SetStartDate(date string) {
	c.StartDate = date
	c.Days = LeaveDays(c.StartDate, c.EndDate)
}

// SetEndDate 修改结束日期并重新计算天数
func (c *LeaveContent) SetEndDate(date string) {
	c.EndDate = date
	c.Days = LeaveDays(c.StartDate, c.EndDate)
}

// SetDates 同时修改开始和结束日期
func (c *LeaveContent) SetDates(start, end string) {
	c.StartDate = start
	c.EndDate = end
	c.Days = LeaveDays(start, end)
}

// Validate 实现Content，天数总是按日期重新计算
func (c *LeaveContent) Validate() error {
	c.Days = LeaveDays(c.StartDate, c.EndDate)
	return core.ValidateStruct(c)
}

// LeaveDays 请假天数，首尾都算
//
// 任意一个日期为空或无法解析时返回0，结束早于开始时也返回0。
func LeaveDays(start, end string) int {
	if start == "" || end == "" {
		return 0
	}
	startTime, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}
	endTime, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0
	}
	days := int(math.Ceil(endTime.Sub(startTime).Hours()/24)) + 1
	if days < 0 {
		return 0
	}
	return days
}
