package types

import "encoding/json"

/**
Http相关的结构体
*/

// Response 服务端统一返回的信封
//
// code 为 0 表示成功，其它值表示业务错误，message 为错误描述。
// data 先保留为原始JSON，由调用方解析成具体类型。
type Response struct {
	Code      int             `json:"code"`                // 返回的code，如果是0就表示正常
	Message   string          `json:"message,omitempty"`   // 返回的消息
	Data      json.RawMessage `json:"data,omitempty"`      // 返回的数据
	Timestamp int64           `json:"timestamp,omitempty"` // 服务端时间戳(毫秒)
}

// OK 信封是否表示成功
func (r *Response) OK() bool {
	return r.Code == 0
}

// PageResult 分页返回的列表数据
type PageResult[T any] struct {
	List       []T   `json:"list"`       // 当前页数据
	Total      int64 `json:"total"`      // 总条数
	Page       int   `json:"page"`       // 当前页码
	PageSize   int   `json:"pageSize"`   // 每页大小
	TotalPages int   `json:"totalPages"` // 总页数
}

// Empty 当前页是否为空
func (p *PageResult[T]) Empty() bool {
	return p == nil || len(p.List) == 0
}

// HasNext 是否还有下一页
func (p *PageResult[T]) HasNext() bool {
	if p == nil {
		return false
	}
	return p.Page < p.TotalPages
}

// Filter 在当前页上做客户端过滤，返回新的分页对象
//
// total/totalPages 按过滤后的当前页重新计算，只代表本页的结果。
func (p *PageResult[T]) Filter(keep func(T) bool) *PageResult[T] {
	result := &PageResult[T]{List: make([]T, 0), Page: 1}
	if p == nil {
		return result
	}
	result.Page = p.Page
	result.PageSize = p.PageSize
	for _, item := range p.List {
		if keep(item) {
			result.List = append(result.List, item)
		}
	}
	result.Total = int64(len(result.List))
	if result.Total > 0 {
		result.TotalPages = 1
	}
	return result
}
