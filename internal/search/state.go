package search

import (
	"net/url"
	"strconv"
	"strings"
)

// URL 查询参数名
const (
	ParamQuery = "q"
	ParamPage  = "page"
	ParamSort  = "sort"
	ParamOrder = "order"
)

// 排序方向
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// State 搜索页的瞬时状态，URL 查询串是它唯一的持久形式
type State struct {
	Query string
	Page  int
	Sort  string
	Order string
}

// NewState 返回默认状态：第1页，降序，无排序字段
func NewState() State {
	return State{Page: 1, Order: OrderDesc}
}

// CoercePage 将任意页码字符串转换为正整数，无效值返回1
func CoercePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseState 按固定顺序解析 URL 参数：先 page，再 q、sort、order
func ParseState(values url.Values) State {
	state := NewState()

	if values.Has(ParamPage) {
		state.Page = CoercePage(values.Get(ParamPage))
	}
	if values.Has(ParamQuery) {
		state.Query = values.Get(ParamQuery)
	}
	if values.Has(ParamSort) {
		state.Sort = values.Get(ParamSort)
	}
	if values.Has(ParamOrder) {
		state.Order = values.Get(ParamOrder)
	}

	return state
}

// ParseRawQuery 解析原始查询串，解析失败的部分按缺省处理
func ParseRawQuery(rawQuery string) State {
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	return ParseState(values)
}

// normalized 返回页码合法的副本
func (s State) normalized() State {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Order == "" {
		s.Order = OrderDesc
	}
	return s
}

// Encode 生成可分享的查询串，参数顺序固定为 q、page、sort、order
func (s State) Encode() string {
	s = s.normalized()

	var b strings.Builder
	if s.Query != "" {
		b.WriteString(ParamQuery + "=" + url.QueryEscape(s.Query) + "&")
	}
	b.WriteString(ParamPage + "=" + strconv.Itoa(s.Page))
	if s.Sort != "" {
		b.WriteString("&" + ParamSort + "=" + url.QueryEscape(s.Sort))
		b.WriteString("&" + ParamOrder + "=" + url.QueryEscape(s.Order))
	}
	return b.String()
}

// WithPage 返回指定页码的副本
func (s State) WithPage(page int) State {
	s.Page = page
	return s.normalized()
}

// WithSort 返回指定排序的副本，页码与关键词保持不变
func (s State) WithSort(field, order string) State {
	s.Sort = field
	s.Order = order
	return s.normalized()
}

// RequestPath 构建搜索接口路径 /api/search?page=..[&q=..][&sort=..&order=..]
func (s State) RequestPath() string {
	s = s.normalized()

	path := "/api/search?" + ParamPage + "=" + strconv.Itoa(s.Page)
	if s.Query != "" {
		path += "&" + ParamQuery + "=" + url.QueryEscape(s.Query)
	}
	if s.Sort != "" {
		path += "&" + ParamSort + "=" + url.QueryEscape(s.Sort) + "&" + ParamOrder + "=" + url.QueryEscape(s.Order)
	}
	return path
}
