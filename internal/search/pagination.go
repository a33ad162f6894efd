package search

// ItemKind 分页项类型
type ItemKind int

const (
	// ItemPage 可点击的页码
	ItemPage ItemKind = iota
	// ItemCurrent 当前页，不可点击
	ItemCurrent
	// ItemEllipsis 省略号
	ItemEllipsis
)

// windowRadius 当前页两侧显示的页数
const windowRadius = 2

// PageItem 分页项
type PageItem struct {
	Kind   ItemKind
	Number int
}

// Pagination 分页控件数据，零值表示不显示分页
type Pagination struct {
	Current int
	Total   int
	// Prev 与 Next 为0时表示按钮禁用
	Prev  int
	Next  int
	Items []PageItem
}

// Empty 是否没有分页控件
func (p Pagination) Empty() bool {
	return len(p.Items) == 0
}

// Paginate 生成分页数据
// 窗口为 当前页-2 .. 当前页+2，并裁剪到 [1, totalPages]
func Paginate(currentPage, totalPages int) Pagination {
	if totalPages <= 1 {
		return Pagination{}
	}

	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	p := Pagination{Current: currentPage, Total: totalPages}
	if currentPage > 1 {
		p.Prev = currentPage - 1
	}
	if currentPage < totalPages {
		p.Next = currentPage + 1
	}

	start := max(1, currentPage-windowRadius)
	end := min(totalPages, currentPage+windowRadius)

	// 第一页
	if start > 1 {
		p.Items = append(p.Items, PageItem{Kind: ItemPage, Number: 1})
		if start > 2 {
			p.Items = append(p.Items, PageItem{Kind: ItemEllipsis})
		}
	}

	for i := start; i <= end; i++ {
		kind := ItemPage
		if i == currentPage {
			kind = ItemCurrent
		}
		p.Items = append(p.Items, PageItem{Kind: kind, Number: i})
	}

	// 最后一页
	if end < totalPages {
		if end < totalPages-1 {
			p.Items = append(p.Items, PageItem{Kind: ItemEllipsis})
		}
		p.Items = append(p.Items, PageItem{Kind: ItemPage, Number: totalPages})
	}

	return p
}

// IsCurrent 是否为当前页
func (i PageItem) IsCurrent() bool {
	return i.Kind == ItemCurrent
}

// IsEllipsis 是否为省略号
func (i PageItem) IsEllipsis() bool {
	return i.Kind == ItemEllipsis
}
