package types

import (
	"net/url"
	"strconv"
)

// PaginationConfig 分页参数的约束
type PaginationConfig struct {
	MaxPage            int    // 列表中我们可以获取的最大页数, 默认: 1000
	PageQueryParam     string // 默认是: page
	MaxPageSize        int    // 最大的页数：默认：100
	PageSizeQueryParam string // 默认是: pageSize
	DefaultPageSize    int    // 默认每页大小：10
}

// DefaultPaginationConfig 默认的分页配置
var DefaultPaginationConfig = PaginationConfig{
	MaxPage:            1000,
	PageQueryParam:     "page",
	MaxPageSize:        100,
	PageSizeQueryParam: "pageSize",
	DefaultPageSize:    10,
}

// Pagination 分页请求参数
type Pagination struct {
	Page     int `json:"page" form:"page"`         // 页码
	PageSize int `json:"pageSize" form:"pageSize"` // 每页数据大小
}

// NewPagination 创建分页参数，并按默认配置修正
func NewPagination(page, pageSize int) Pagination {
	p := Pagination{Page: page, PageSize: pageSize}
	p.Normalize(DefaultPaginationConfig)
	return p
}

// Normalize 修正越界的页码和每页大小
func (p *Pagination) Normalize(cfg PaginationConfig) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if cfg.MaxPage > 0 && p.Page > cfg.MaxPage {
		p.Page = cfg.MaxPage
	}
	if p.PageSize <= 0 {
		p.PageSize = cfg.DefaultPageSize
		if p.PageSize <= 0 {
			p.PageSize = 10
		}
	}
	if cfg.MaxPageSize > 0 && p.PageSize > cfg.MaxPageSize {
		p.PageSize = cfg.MaxPageSize
	}
}

// Encode 写入查询参数
func (p Pagination) Encode(values url.Values) {
	cfg := DefaultPaginationConfig
	values.Set(cfg.PageQueryParam, strconv.Itoa(p.Page))
	values.Set(cfg.PageSizeQueryParam, strconv.Itoa(p.PageSize))
}
