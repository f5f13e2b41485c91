package content

import "github.com/codelieche/approval/pkg/core"

// GeneralContent 通用审批内容
type GeneralContent struct {
	Content string `json:"content" label:"审批内容" validate:"notblank"`
}

// TypeCode 实现Content
func (c *GeneralContent) TypeCode() string {
	return ""
}

// Validate 实现Content
func (c *GeneralContent) Validate() error {
	return core.ValidateStruct(c)
}
