package render

import (
	"math"
	"strings"
	"time"

	"github.com/codelieche/approval/pkg/core"
	"github.com/codelieche/approval/pkg/utils/types"
	"github.com/dustin/go-humanize"
)

// 相对时间的中文格式
var relTimeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "刚刚", DivBy: time.Second},
	{D: time.Hour, Format: "%d分钟%s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%d小时%s", DivBy: time.Hour},
	{D: humanize.Month, Format: "%d天%s", DivBy: humanize.Day},
	{D: humanize.Year, Format: "%d个月%s", DivBy: humanize.Month},
	{D: math.MaxInt64, Format: "%d年%s", DivBy: humanize.Year},
}

// Now 当前时间，测试时替换
var Now = time.Now

// Ago 相对时间，例如 3分钟前
func Ago(t *types.DateTime) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.CustomRelTime(t.Time, Now(), "前", "后", relTimeMagnitudes)
}

// Time 完整时间
func Time(t *types.DateTime) string {
	return t.String()
}

// Size 文件大小
func Size(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(bytes))
}

// Money 金额，保留两位小数并加千分位
func Money(amount float64) string {
	return "¥" + humanize.FormatFloat("#,###.##", amount)
}

// Count 带千分位的数量
func Count(n int64) string {
	return humanize.Comma(n)
}

// Status 审批状态
func Status(s core.ApprovalStatus) string {
	return s.String()
}

// EnabledLabel 启用/禁用
func EnabledLabel(status int) string {
	if status == 1 {
		return "启用"
	}
	return "禁用"
}

// Bool 是/否
func Bool(v bool) string {
	if v {
		return "是"
	}
	return "否"
}

// Text 空字符串显示为 -
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Truncate 按字符截断，超出部分用 ... 表示
func Truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
