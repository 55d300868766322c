package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// Page 规范化后的分页参数
type Page struct {
	Page  int
	Limit int
}

// Normalize 非正数的 page/limit 回落到默认值，不报错
func Normalize(page, limit, defaultLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset 当前页第一条记录的偏移量；超出 int 范围时取 math.MaxInt，查询结果为空页
func (p Page) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages ceil(total/limit)
func (p Page) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	l := int64(p.Limit)
	n := total / l
	if total%l != 0 {
		n++
	}
	return int(n)
}

// Slice 在内存里截取一页，越界返回空切片
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit < end-start {
		end = start + p.Limit
	}
	return items[start:end]
}
