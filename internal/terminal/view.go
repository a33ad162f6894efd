// Package terminal 在终端中展示搜索结果
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/search"
)

// View 把控制器的渲染指令输出为文本
type View struct {
	out     io.Writer
	loc     *locale.Locale
	baseURL string

	title   *color.Color
	muted   *color.Color
	alert   *color.Color
	current *color.Color
	link    *color.Color

	cards      []search.Card
	pagination search.Pagination
}

// Option 视图选项
type Option func(*View)

// WithLocale 设置界面语言
func WithLocale(loc *locale.Locale) Option {
	return func(v *View) {
		v.loc = loc
	}
}

// WithBaseURL 详情链接前缀，如 http://127.0.0.1:27777
func WithBaseURL(baseURL string) Option {
	return func(v *View) {
		v.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithoutColor 关闭颜色输出
func WithoutColor() Option {
	return func(v *View) {
		for _, c := range []*color.Color{v.title, v.muted, v.alert, v.current, v.link} {
			c.DisableColor()
		}
	}
}

// NewView 创建终端视图
func NewView(out io.Writer, opts ...Option) *View {
	v := &View{
		out:     out,
		loc:     locale.Default(),
		title:   color.New(color.Bold),
		muted:   color.New(color.Faint),
		alert:   color.New(color.FgRed),
		current: color.New(color.FgCyan, color.Bold),
		link:    color.New(color.FgBlue, color.Underline),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ReplaceURL 输出可分享的搜索地址
func (v *View) ReplaceURL(rawQuery string) {
	v.muted.Fprintf(v.out, "%s/search?%s\n", v.baseURL, rawQuery)
}

func (v *View) ShowLoading() {
	v.muted.Fprintln(v.out, v.loc.T(locale.MsgLoading))
}

func (v *View) ShowError(err error) {
	v.cards = nil
	v.alert.Fprintln(v.out, v.loc.Sprintf(locale.MsgSearchFailed, err))
}

func (v *View) ShowEmpty() {
	v.cards = nil
	fmt.Fprintln(v.out, v.loc.T(locale.MsgNoResults))
}

// ShowResults 每张卡片占两行：序号与名称，文件数/大小/日期与磁力链接
func (v *View) ShowResults(cards []search.Card) {
	v.cards = cards
	for i, c := range cards {
		v.title.Fprintf(v.out, "%2d. %s\n", i+1, sanitize(c.Name))
		fmt.Fprintf(v.out, "    %s | %s GB | %s\n",
			v.loc.Sprintf(locale.MsgFileCount, c.FileCount), c.Size, c.Date)
		fmt.Fprintf(v.out, "    %s\n", v.link.Sprint(c.MagnetURL()))
	}
}

func (v *View) ShowPagination(p search.Pagination) {
	v.pagination = p
	if p.Empty() {
		return
	}
	fmt.Fprintln(v.out, v.paginationBar(p))
}

func (v *View) paginationBar(p search.Pagination) string {
	parts := make([]string, 0, len(p.Items)+2)

	if p.Prev > 0 {
		parts = append(parts, "« "+v.loc.T(locale.MsgPrevious))
	} else {
		parts = append(parts, v.muted.Sprint("« "+v.loc.T(locale.MsgPrevious)))
	}
	for _, item := range p.Items {
		switch item.Kind {
		case search.ItemEllipsis:
			parts = append(parts, "…")
		case search.ItemCurrent:
			parts = append(parts, v.current.Sprint("["+strconv.Itoa(item.Number)+"]"))
		default:
			parts = append(parts, strconv.Itoa(item.Number))
		}
	}
	if p.Next > 0 {
		parts = append(parts, v.loc.T(locale.MsgNext)+" »")
	} else {
		parts = append(parts, v.muted.Sprint(v.loc.T(locale.MsgNext)+" »"))
	}
	return strings.Join(parts, " ")
}

func (v *View) ShowStats(total int64, page int) {
	v.muted.Fprintln(v.out, v.loc.Sprintf(locale.MsgResultStats, total, page))
}

func (v *View) RevealControls() {
	v.muted.Fprintln(v.out, v.loc.T(locale.MsgTip))
}

func (v *View) ScrollTop() {
	fmt.Fprintln(v.out, strings.Repeat("─", 40))
}

func (v *View) ActivateCard(index int) {
	if index < 0 || index >= len(v.cards) {
		return
	}
	v.current.Fprintf(v.out, "» %s\n", sanitize(v.cards[index].Name))
}

// Navigate 终端无法跳转，输出详情页地址
func (v *View) Navigate(target string) {
	fmt.Fprintf(v.out, "%s %s\n", v.loc.T(locale.MsgDetails), v.link.Sprint(v.baseURL+target))
}

// sanitize 去掉名称中的控制字符，避免污染终端
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// Pagination 最近一次显示的分页
func (v *View) Pagination() search.Pagination {
	return v.pagination
}
