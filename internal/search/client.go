package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"

	"magnet-search-web/internal/models"
)

// ErrNotFound 详情接口返回404
var ErrNotFound = errors.New("torrent not found")

// StatusError 搜索接口返回了非2xx状态码
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}

// Searcher 执行一次搜索
type Searcher interface {
	Search(ctx context.Context, state State) (*models.SearchResponse, error)
}

// Client 搜索接口的 HTTP 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit 限制向搜索接口发出请求的速率，每秒 perSecond 次
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient 创建客户端，baseURL 为搜索服务的根地址，如 http://127.0.0.1:27777
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 搜索服务根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search 调用 /api/search
func (c *Client) Search(ctx context.Context, state State) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.getJSON(ctx, state.RequestPath(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Torrent 调用 /api/torrent/<info_hash> 获取单个种子
func (c *Client) Torrent(ctx context.Context, infoHash string) (*models.TorrentSummary, error) {
	var torrent models.TorrentSummary
	err := c.getJSON(ctx, "/api"+DetailURL(infoHash), &torrent)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &torrent, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request search endpoint")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读掉响应体以便复用连接
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode search response")
	}
	return nil
}
