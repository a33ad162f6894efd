package search

import (
	"context"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"magnet-search-web/internal/locale"
)

var log = logging.Logger("search")

var (
	// ErrSuperseded 搜索结果被更新的搜索取代，未渲染
	ErrSuperseded = errors.New("search superseded by a newer request")
	// ErrNoSuchCard 卡片序号越界
	ErrNoSuchCard = errors.New("no such result card")
	// ErrMissingInfoHash 卡片没有 info_hash，无法跳转
	ErrMissingInfoHash = errors.New("result has no info_hash")
)

// View 搜索页的展示层
type View interface {
	// ReplaceURL 以替换方式更新地址栏查询串，不产生新的历史记录
	ReplaceURL(rawQuery string)
	ShowLoading()
	ShowError(err error)
	// ShowEmpty 显示无结果提示
	ShowEmpty()
	ShowResults(cards []Card)
	// ShowPagination 渲染分页，空分页表示清除
	ShowPagination(p Pagination)
	ShowStats(total int64, page int)
	// RevealControls 显示排序选项与点击提示
	RevealControls()
	ScrollTop()
	ActivateCard(index int)
	Navigate(target string)
}

// Controller 搜索页控制器：状态 -> 请求 -> 渲染，并保持 URL 与状态一致
// 新的搜索会取消尚未完成的旧请求，旧请求的结果被丢弃
type Controller struct {
	searcher Searcher
	view     View
	locale   *locale.Locale
	delay    time.Duration

	mu     sync.Mutex
	state  State
	cards  []Card
	seq    uint64
	cancel context.CancelFunc
}

// Option 控制器选项
type Option func(*Controller)

// WithLocale 设置日期格式所用语言
func WithLocale(loc *locale.Locale) Option {
	return func(c *Controller) {
		c.locale = loc
	}
}

// WithActivationDelay 设置卡片点击反馈延迟
func WithActivationDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = d
	}
}

// NewController 创建控制器
func NewController(searcher Searcher, view View, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		view:     view,
		locale:   locale.Default(),
		delay:    ActivationDelay,
		state:    NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State 返回当前状态
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Init 从 URL 查询串恢复状态，并无条件执行一次搜索
func (c *Controller) Init(ctx context.Context, rawQuery string) error {
	parsed := ParseRawQuery(rawQuery)
	return c.search(ctx, func(s *State) bool {
		*s = parsed
		return true
	})
}

// SubmitSearch 提交搜索表单：关键词去空白，页码回到1
func (c *Controller) SubmitSearch(ctx context.Context, rawQuery string) error {
	query := strings.TrimSpace(rawQuery)
	return c.search(ctx, func(s *State) bool {
		s.Query = query
		s.Page = 1
		return true
	})
}

// SelectSort 选择排序，保留当前页码与关键词
func (c *Controller) SelectSort(ctx context.Context, field, order string) error {
	return c.search(ctx, func(s *State) bool {
		*s = s.WithSort(field, order)
		return true
	})
}

// GoToPage 跳转到第 n 页，点击当前页不会重新搜索
// 返回是否发起了搜索
func (c *Controller) GoToPage(ctx context.Context, n int) (bool, error) {
	if n < 1 {
		n = 1
	}

	changed := false
	err := c.search(ctx, func(s *State) bool {
		if s.Page == n {
			return false
		}
		s.Page = n
		changed = true
		return true
	})
	if !changed || errors.Is(err, ErrSuperseded) {
		return changed, err
	}

	c.mu.Lock()
	c.view.ScrollTop()
	c.mu.Unlock()
	return true, err
}

// Search 以当前状态重新搜索
func (c *Controller) Search(ctx context.Context) error {
	return c.search(ctx, func(*State) bool { return true })
}

// search 修改状态后发起请求；mutate 返回 false 时不做任何事
func (c *Controller) search(ctx context.Context, mutate func(*State) bool) error {
	c.mu.Lock()
	if !mutate(&c.state) {
		c.mu.Unlock()
		return nil
	}
	c.state = c.state.normalized()
	state := c.state

	// 取消仍在进行的旧请求
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.view.ReplaceURL(state.Encode())
	c.view.ShowLoading()
	c.mu.Unlock()

	defer cancel()
	resp, err := c.searcher.Search(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		log.Debugf("丢弃过期的搜索结果: %s", state.Encode())
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		log.Warnf("搜索失败: %v", err)
		// 错误提示取代了结果区，旧卡片不能再被打开
		c.cards = nil
		c.view.ShowError(err)
		return err
	}

	// 以服务端返回的页码为准
	if resp.Page >= 1 {
		c.state.Page = resp.Page
	}

	c.renderResults(resp.Results, resp.TotalPages())
	c.view.RevealControls()
	c.view.ShowStats(resp.Total, c.state.Page)
	return nil
}
