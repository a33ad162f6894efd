package search

import (
	"context"
	"time"

	"magnet-search-web/internal/models"
)

// renderResults 渲染结果卡片与分页，调用方持有锁
func (c *Controller) renderResults(results []models.TorrentSummary, totalPages int) {
	if len(results) == 0 {
		c.cards = nil
		c.view.ShowEmpty()
		c.view.ShowPagination(Pagination{})
		return
	}

	cards := make([]Card, 0, len(results))
	for _, torrent := range results {
		if torrent.InfoHash == "" {
			log.Warnw("遇到没有info_hash的种子", "name", torrent.Name)
		}
		cards = append(cards, NewCard(torrent, c.locale))
	}
	c.cards = cards

	c.view.ShowResults(cards)
	c.view.ShowPagination(Paginate(c.state.Page, totalPages))
}

// Cards 返回当前展示的卡片
func (c *Controller) Cards() []Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	cards := make([]Card, len(c.cards))
	copy(cards, c.cards)
	return cards
}

// ActivateCard 点击第 index 张卡片：先显示点击反馈，短暂延迟后跳转详情页
func (c *Controller) ActivateCard(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.cards) {
		c.mu.Unlock()
		return ErrNoSuchCard
	}
	card := c.cards[index]
	if card.InfoHash == "" {
		c.mu.Unlock()
		log.Errorf("卡片 %d 未找到info_hash", index)
		return ErrMissingInfoHash
	}
	c.view.ActivateCard(index)
	c.mu.Unlock()

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Navigate(card.DetailURL())
	return nil
}
