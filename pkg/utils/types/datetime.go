package types

import (
	"strings"
	"time"
)

// 服务端返回的时间格式不完全统一，按顺序尝试
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime 兼容多种格式的时间
//
// 序列化时保持 2006-01-02T15:04:05 的格式，和服务端 LocalDateTime 一致。
type DateTime struct {
	time.Time
}

// NewDateTime 创建DateTime
func NewDateTime(t time.Time) *DateTime {
	return &DateTime{Time: t}
}

// ParseDateTime 解析时间字符串
func ParseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// UnmarshalJSON 解析JSON
func (d *DateTime) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDateTime(value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON 序列化JSON
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02T15:04:05") + `"`), nil
}

// String 格式化输出
func (d *DateTime) String() string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.Format("2006-01-02 15:04:05")
}
