package server

import (
	"html/template"
	"net/http"

	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/search"
)

// sortChoice 页面上的一个排序选项
type sortChoice struct {
	Field string
	Order string
	Label string
}

var sortChoices = []sortChoice{
	{"date", search.OrderDesc, locale.MsgSortNewest},
	{"date", search.OrderAsc, locale.MsgSortOldest},
	{"size", search.OrderDesc, locale.MsgSortLargest},
	{"size", search.OrderAsc, locale.MsgSortSmallest},
	{"files", search.OrderDesc, locale.MsgSortFiles},
}

// SortLink 已生成地址的排序选项
type SortLink struct {
	Field  string
	Order  string
	Label  string
	URL    string
	Active bool
}

// searchPage 搜索页模板数据，同时作为控制器的视图
type searchPage struct {
	L            *locale.Locale
	State        search.State
	CanonicalURL string
	Loading      bool
	ErrorMessage string
	Empty        bool
	Cards        []search.Card
	Pagination   search.Pagination
	StatsText    string
	ShowControls bool
	ActivationMS int64
	status       int
}

func newSearchPage(loc *locale.Locale) *searchPage {
	return &searchPage{
		L:            loc,
		State:        search.NewState(),
		ActivationMS: search.ActivationDelay.Milliseconds(),
		status:       http.StatusOK,
	}
}

// Title 页面标题
func (p *searchPage) Title() string {
	if p.State.Query == "" {
		return p.L.T(locale.MsgTitle)
	}
	return p.State.Query + " - " + p.L.T(locale.MsgTitle)
}

// PageURL 第 n 页的地址，保留关键词与排序
func (p *searchPage) PageURL(n int) string {
	return "/search?" + p.State.WithPage(n).Encode()
}

// SortLinks 排序选项，切换排序时保留页码与关键词
func (p *searchPage) SortLinks() []SortLink {
	links := make([]SortLink, 0, len(sortChoices))
	for _, c := range sortChoices {
		links = append(links, SortLink{
			Field:  c.Field,
			Order:  c.Order,
			Label:  p.L.T(c.Label),
			URL:    "/search?" + p.State.WithSort(c.Field, c.Order).Encode(),
			Active: p.State.Sort == c.Field && p.State.Order == c.Order,
		})
	}
	return links
}

// ReplaceURL 记录规范地址，页面通过 history.replaceState 更新地址栏
func (p *searchPage) ReplaceURL(rawQuery string) {
	p.CanonicalURL = "/search?" + rawQuery
	p.State = search.ParseRawQuery(rawQuery)
}

func (p *searchPage) ShowLoading() {
	p.Loading = true
}

func (p *searchPage) ShowError(err error) {
	p.Loading = false
	p.Empty = false
	p.Cards = nil
	p.ErrorMessage = p.L.Sprintf(locale.MsgSearchFailed, err)
	p.status = http.StatusBadGateway
}

func (p *searchPage) ShowEmpty() {
	p.Loading = false
	p.Empty = true
	p.Cards = nil
}

func (p *searchPage) ShowResults(cards []search.Card) {
	p.Loading = false
	p.Empty = false
	p.Cards = cards
}

func (p *searchPage) ShowPagination(pagination search.Pagination) {
	p.Pagination = pagination
}

func (p *searchPage) ShowStats(total int64, page int) {
	p.State.Page = page
	p.StatsText = p.L.Sprintf(locale.MsgResultStats, total, page)
}

func (p *searchPage) RevealControls() {
	p.ShowControls = true
}

// 以下交互由浏览器端 cards.js 完成
func (p *searchPage) ScrollTop()       {}
func (p *searchPage) ActivateCard(int) {}
func (p *searchPage) Navigate(string)  {}

// magnetURL 磁力链接不在 html/template 默认允许的协议之内，info_hash 已做查询转义
func magnetURL(c search.Card) template.URL {
	return template.URL(c.MagnetURL())
}
