package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/models"
)

// recordView 记录控制器对视图的调用
type recordView struct {
	mu         sync.Mutex
	calls      []string
	urls       []string
	cards      []Card
	pagination Pagination
	err        error
	total      int64
	page       int
	revealed   bool
	activated  []int
	navigated  []string
}

func (v *recordView) record(call string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, call)
}

func (v *recordView) ReplaceURL(rawQuery string) {
	v.record("url")
	v.urls = append(v.urls, rawQuery)
}
func (v *recordView) ShowLoading() { v.record("loading") }
func (v *recordView) ShowError(err error) {
	v.record("error")
	v.err = err
}
func (v *recordView) ShowEmpty() {
	v.record("empty")
	v.cards = nil
}
func (v *recordView) ShowResults(cards []Card) {
	v.record("results")
	v.cards = cards
}
func (v *recordView) ShowPagination(p Pagination) {
	v.record("pagination")
	v.pagination = p
}
func (v *recordView) ShowStats(total int64, page int) {
	v.record("stats")
	v.total, v.page = total, page
}
func (v *recordView) RevealControls() {
	v.record("reveal")
	v.revealed = true
}
func (v *recordView) ScrollTop() { v.record("scroll") }
func (v *recordView) ActivateCard(index int) {
	v.record("activate")
	v.activated = append(v.activated, index)
}
func (v *recordView) Navigate(target string) {
	v.record("navigate")
	v.navigated = append(v.navigated, target)
}

// stubSearcher 返回预设的响应并记录请求
type stubSearcher struct {
	mu       sync.Mutex
	requests []State
	respond  func(ctx context.Context, s State) (*models.SearchResponse, error)
}

func (s *stubSearcher) Search(ctx context.Context, state State) (*models.SearchResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, state)
	s.mu.Unlock()
	return s.respond(ctx, state)
}

func (s *stubSearcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func pageOf(total int64, perPage int) func(context.Context, State) (*models.SearchResponse, error) {
	return func(_ context.Context, s State) (*models.SearchResponse, error) {
		resp := &models.SearchResponse{Total: total, Page: s.Page, PerPage: perPage}
		for i := 0; i < perPage && int64((s.Page-1)*perPage+i) < total; i++ {
			resp.Results = append(resp.Results, models.TorrentSummary{
				Name:       fmt.Sprintf("torrent-%d-%d", s.Page, i),
				InfoHash:   fmt.Sprintf("%040d", s.Page*100+i),
				FileCount:  i + 1,
				TotalSize:  int64(i+1) * bytesPerGB,
				CreateDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			})
		}
		return resp, nil
	}
}

func newTestController(respond func(context.Context, State) (*models.SearchResponse, error)) (*Controller, *recordView, *stubSearcher) {
	view := &recordView{}
	searcher := &stubSearcher{respond: respond}
	ctrl := NewController(searcher, view, WithLocale(locale.Match("en-US")), WithActivationDelay(time.Millisecond))
	return ctrl, view, searcher
}

func TestControllerInit(t *testing.T) {
	t.Parallel()

	t.Run("searches even without parameters", func(tt *testing.T) {
		ctrl, view, searcher := newTestController(pageOf(0, 15))
		require.NoError(tt, ctrl.Init(context.Background(), ""))

		assert.Equal(tt, 1, searcher.count())
		assert.Equal(tt, []string{"page=1"}, view.urls)
		assert.Equal(tt, []string{"url", "loading", "empty", "pagination", "reveal", "stats"}, view.calls)
	})

	t.Run("restores state from the url", func(tt *testing.T) {
		ctrl, view, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(context.Background(), "q=ubuntu&page=3&sort=size&order=asc"))

		assert.Equal(tt, State{Query: "ubuntu", Page: 3, Sort: "size", Order: OrderAsc}, searcher.requests[0])
		assert.Equal(tt, "q=ubuntu&page=3&sort=size&order=asc", view.urls[0])
		assert.Len(tt, view.cards, 10)
		assert.Equal(tt, 3, view.pagination.Current)
		assert.Equal(tt, 10, view.pagination.Total)
	})

	t.Run("malformed page becomes 1", func(tt *testing.T) {
		for _, raw := range []string{"page=abc", "page=0", "page=-2", "page="} {
			ctrl, view, searcher := newTestController(pageOf(50, 10))
			require.NoError(tt, ctrl.Init(context.Background(), raw))
			assert.Equal(tt, 1, searcher.requests[0].Page, raw)
			assert.Equal(tt, "page=1", view.urls[0], raw)
			assert.Equal(tt, 1, view.page, raw)
		}
	})
}

func TestControllerOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("submit trims and resets page", func(tt *testing.T) {
		ctrl, _, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(ctx, "page=4&sort=date&order=asc"))
		require.NoError(tt, ctrl.SubmitSearch(ctx, "  debian  "))

		last := searcher.requests[len(searcher.requests)-1]
		assert.Equal(tt, State{Query: "debian", Page: 1, Sort: "date", Order: OrderAsc}, last)
	})

	t.Run("sort keeps page and query", func(tt *testing.T) {
		ctrl, view, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(ctx, "q=x&page=4"))
		require.NoError(tt, ctrl.SelectSort(ctx, "files", OrderAsc))

		last := searcher.requests[len(searcher.requests)-1]
		assert.Equal(tt, State{Query: "x", Page: 4, Sort: "files", Order: OrderAsc}, last)
		assert.Equal(tt, "q=x&page=4&sort=files&order=asc", view.urls[len(view.urls)-1])
	})

	t.Run("clicking the active page is a no-op", func(tt *testing.T) {
		ctrl, view, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(ctx, "page=2"))
		calls := len(view.calls)

		searched, err := ctrl.GoToPage(ctx, 2)
		require.NoError(tt, err)
		assert.False(tt, searched)
		assert.Equal(tt, 1, searcher.count())
		assert.Len(tt, view.calls, calls)
	})

	t.Run("page change searches then scrolls", func(tt *testing.T) {
		ctrl, view, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(ctx, ""))

		searched, err := ctrl.GoToPage(ctx, 5)
		require.NoError(tt, err)
		assert.True(tt, searched)
		assert.Equal(tt, 2, searcher.count())
		assert.Equal(tt, "scroll", view.calls[len(view.calls)-1])
		assert.Equal(tt, 5, ctrl.State().Page)
	})

	t.Run("invalid page link goes to page 1", func(tt *testing.T) {
		ctrl, _, searcher := newTestController(pageOf(100, 10))
		require.NoError(tt, ctrl.Init(ctx, "page=3"))

		searched, err := ctrl.GoToPage(ctx, -7)
		require.NoError(tt, err)
		assert.True(tt, searched)
		assert.Equal(tt, 1, searcher.requests[1].Page)
	})
}

func TestControllerRendering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("server echoed page wins", func(tt *testing.T) {
		ctrl, view, _ := newTestController(func(_ context.Context, s State) (*models.SearchResponse, error) {
			return &models.SearchResponse{
				Results: []models.TorrentSummary{{Name: "a", InfoHash: "h"}},
				Total:   30, Page: 3, PerPage: 10,
			}, nil
		})
		require.NoError(tt, ctrl.Init(ctx, "page=99"))

		assert.Equal(tt, 3, ctrl.State().Page)
		assert.Equal(tt, 3, view.page)
		assert.Equal(tt, 3, view.pagination.Current)
	})

	t.Run("invalid echoed page keeps the local one", func(tt *testing.T) {
		ctrl, _, _ := newTestController(func(_ context.Context, s State) (*models.SearchResponse, error) {
			return &models.SearchResponse{Results: []models.TorrentSummary{{Name: "a"}}, Total: 30, Page: 0, PerPage: 10}, nil
		})
		require.NoError(tt, ctrl.Init(ctx, "page=2"))
		assert.Equal(tt, 2, ctrl.State().Page)
	})

	t.Run("cards are formatted", func(tt *testing.T) {
		ctrl, view, _ := newTestController(pageOf(3, 15))
		require.NoError(tt, ctrl.Init(ctx, ""))

		require.Len(tt, view.cards, 3)
		card := view.cards[1]
		assert.Equal(tt, "torrent-1-1", card.Name)
		assert.Equal(tt, 2, card.FileCount)
		assert.Equal(tt, "2.00", card.Size)
		assert.Equal(tt, "3/5/2024", card.Date)
		assert.Equal(tt, "/torrent/"+card.InfoHash, card.DetailURL())
		assert.Equal(tt, "magnet:?xt=urn:btih:"+card.InfoHash, card.MagnetURL())
		assert.True(tt, view.revealed)
		assert.Equal(tt, int64(3), view.total)
	})

	t.Run("missing info hash still renders", func(tt *testing.T) {
		ctrl, view, _ := newTestController(func(_ context.Context, s State) (*models.SearchResponse, error) {
			return &models.SearchResponse{Results: []models.TorrentSummary{{Name: "orphan"}}, Total: 1, Page: 1, PerPage: 15}, nil
		})
		require.NoError(tt, ctrl.Init(ctx, ""))

		require.Len(tt, view.cards, 1)
		assert.Equal(tt, "", view.cards[0].InfoHash)
		assert.Equal(tt, "/torrent/", view.cards[0].DetailURL())
		assert.Equal(tt, "magnet:?xt=urn:btih:", view.cards[0].MagnetURL())
	})

	t.Run("empty results clear pagination", func(tt *testing.T) {
		total := int64(100)
		ctrl, view, _ := newTestController(func(ctx context.Context, s State) (*models.SearchResponse, error) {
			return pageOf(total, 10)(ctx, s)
		})
		require.NoError(tt, ctrl.Init(ctx, ""))
		require.False(tt, view.pagination.Empty())

		total = 0
		require.NoError(tt, ctrl.SubmitSearch(ctx, "nothing"))
		assert.True(tt, view.pagination.Empty())
		assert.Nil(tt, view.cards)
		assert.Contains(tt, view.calls, "empty")
	})

	t.Run("failure hides cards", func(tt *testing.T) {
		fail := false
		ctrl, view, _ := newTestController(func(ctx context.Context, s State) (*models.SearchResponse, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return pageOf(100, 15)(ctx, s)
		})
		require.NoError(tt, ctrl.Init(ctx, ""))
		require.Len(tt, ctrl.Cards(), 15)

		fail = true
		require.Error(tt, ctrl.SubmitSearch(ctx, "ubuntu"))
		assert.Empty(tt, ctrl.Cards())
		assert.ErrorIs(tt, ctrl.ActivateCard(ctx, 0), ErrNoSuchCard)
		assert.Empty(tt, view.activated)
		assert.Empty(tt, view.navigated)
	})

	t.Run("zero total never paginates", func(tt *testing.T) {
		ctrl, view, _ := newTestController(func(_ context.Context, s State) (*models.SearchResponse, error) {
			return &models.SearchResponse{Results: []models.TorrentSummary{{Name: "a", InfoHash: "h"}}, Total: 0, Page: 1, PerPage: 1}, nil
		})
		require.NoError(tt, ctrl.Init(ctx, ""))
		assert.True(tt, view.pagination.Empty())
	})

	t.Run("failure shows the error and keeps stale pagination and stats", func(tt *testing.T) {
		fail := false
		ctrl, view, _ := newTestController(func(ctx context.Context, s State) (*models.SearchResponse, error) {
			if fail {
				return nil, &StatusError{Code: 500, Status: "500 Internal Server Error"}
			}
			return pageOf(100, 10)(ctx, s)
		})
		require.NoError(tt, ctrl.Init(ctx, ""))
		before := view.pagination

		fail = true
		err := ctrl.SelectSort(ctx, "size", OrderDesc)
		require.Error(tt, err)
		assert.Equal(tt, err, view.err)
		assert.Equal(tt, before, view.pagination)
		assert.Equal(tt, 1, view.page)
		assert.Equal(tt, "error", view.calls[len(view.calls)-1])
	})
}

func TestControllerSupersededSearch(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	ctrl, view, _ := newTestController(func(ctx context.Context, s State) (*models.SearchResponse, error) {
		if s.Query == "slow" {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
			}
		}
		return pageOf(20, 10)(ctx, s)
	})

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- ctrl.SubmitSearch(context.Background(), "slow")
	}()

	// 等待慢请求发出
	require.Eventually(t, func() bool { return ctrl.State().Query == "slow" }, time.Second, time.Millisecond)
	require.NoError(t, ctrl.SubmitSearch(context.Background(), "fast"))

	err := <-slowDone
	assert.True(t, errors.Is(err, ErrSuperseded))
	close(release)

	assert.Equal(t, "fast", ctrl.State().Query)
	assert.Nil(t, view.err)
	require.NotEmpty(t, view.cards)
}

func TestControllerActivateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl, view, _ := newTestController(pageOf(2, 15))

	assert.ErrorIs(t, ctrl.ActivateCard(ctx, 0), ErrNoSuchCard)

	require.NoError(t, ctrl.Init(ctx, ""))
	require.NoError(t, ctrl.ActivateCard(ctx, 1))
	assert.Equal(t, []int{1}, view.activated)
	assert.Equal(t, []string{ctrl.Cards()[1].DetailURL()}, view.navigated)

	assert.ErrorIs(t, ctrl.ActivateCard(ctx, 5), ErrNoSuchCard)
}

func TestControllerActivateWithoutHash(t *testing.T) {
	t.Parallel()

	ctrl, view, _ := newTestController(func(_ context.Context, s State) (*models.SearchResponse, error) {
		return &models.SearchResponse{Results: []models.TorrentSummary{{Name: "x"}}, Total: 1, Page: 1, PerPage: 15}, nil
	})
	require.NoError(t, ctrl.Init(context.Background(), ""))
	assert.ErrorIs(t, ctrl.ActivateCard(context.Background(), 0), ErrMissingInfoHash)
	assert.Empty(t, view.navigated)
}
