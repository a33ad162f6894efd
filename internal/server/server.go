package server

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"magnet-search-web/internal/database"
	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/logger"
	"magnet-search-web/internal/models"
	"magnet-search-web/internal/search"
)

var log = logging.Logger("server")

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options 服务器选项
type Options struct {
	// Client 搜索接口客户端，页面数据均通过它获取
	Client *search.Client
	// DB 不为空时同时提供 /api/search 与 /api/torrent 参考接口
	DB *database.DB
	// PageSize 参考接口每页条数
	PageSize int
	// DefaultLocale 请求未带 Accept-Language 时使用的语言
	DefaultLocale string
	// AccessLog 访问日志，可为空
	AccessLog *logger.AccessLog
}

// Server 表示HTTP服务器
type Server struct {
	client        *search.Client
	db            *database.DB
	pageSize      int
	defaultLocale string
	accessLog     *logger.AccessLog
	templates     *template.Template
	binder        *binder
}

// New 创建服务器并加载模板
func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, errors.New("缺少搜索接口客户端")
	}
	if opts.PageSize < 1 {
		opts.PageSize = 15
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"magnet":   magnetURL,
		"formatGB": search.FormatGB,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "加载模板")
	}

	return &Server{
		client:        opts.Client,
		db:            opts.DB,
		pageSize:      opts.PageSize,
		defaultLocale: opts.DefaultLocale,
		accessLog:     opts.AccessLog,
		templates:     templates,
		binder:        newBinder(),
	}, nil
}

// Handler 返回挂载了全部路由的 http.Handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.searchHandler)
	mux.HandleFunc("GET /search", s.searchHandler)
	mux.HandleFunc("GET /torrent/{infoHash}", s.detailHandler)

	// 静态文件服务
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// 参考搜索接口
	if s.db != nil {
		mux.HandleFunc("GET /api/search", s.apiSearchHandler)
		mux.HandleFunc("GET /api/torrent/{infoHash}", s.apiTorrentHandler)
	}

	if s.accessLog != nil {
		return s.accessLog.Middleware(mux)
	}
	return mux
}

// Run 运行服务器，ctx 结束后优雅关闭
func Run(ctx context.Context, addr string, handler http.Handler, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("服务器启动在 http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "关闭服务器")
	}
	return nil
}

// localeFor 按 Accept-Language 选择语言，缺失时使用默认语言
func (s *Server) localeFor(r *http.Request) *locale.Locale {
	return locale.Match(r.Header.Get("Accept-Language"), s.defaultLocale)
}

// searchHandler 处理首页与搜索页请求
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	loc := s.localeFor(r)
	page := newSearchPage(loc)
	ctrl := search.NewController(s.client, page, search.WithLocale(loc))

	rawQuery := r.URL.RawQuery
	values := r.URL.Query()
	// 搜索表单提交：关键词去空白，页码回到1
	if values.Get("action") == "submit" {
		state := search.ParseState(values)
		state.Query = strings.TrimSpace(state.Query)
		state.Page = 1
		rawQuery = state.Encode()
	}

	if err := ctrl.Init(r.Context(), rawQuery); err != nil {
		log.Warnw("搜索失败", "query", rawQuery, "error", err)
	}

	s.render(w, "search.html", page.status, page)
}

type detailPage struct {
	L        *locale.Locale
	Torrent  *models.TorrentSummary
	Card     search.Card
	NotFound bool
	Error    string
}

// Title 页面标题
func (p *detailPage) Title() string {
	if p.Torrent == nil {
		return p.L.T(locale.MsgTitle)
	}
	return p.Torrent.Name + " - " + p.L.T(locale.MsgTitle)
}

// detailHandler 处理种子详情页请求
func (s *Server) detailHandler(w http.ResponseWriter, r *http.Request) {
	loc := s.localeFor(r)
	page := &detailPage{L: loc}
	status := http.StatusOK

	torrent, err := s.client.Torrent(r.Context(), r.PathValue("infoHash"))
	switch {
	case errors.Is(err, search.ErrNotFound):
		page.NotFound = true
		status = http.StatusNotFound
	case err != nil:
		log.Warnf("获取种子详情失败: %v", err)
		page.Error = loc.Sprintf(locale.MsgSearchFailed, err)
		status = http.StatusBadGateway
	default:
		page.Torrent = torrent
		page.Card = search.NewCard(*torrent, loc)
	}

	s.render(w, "detail.html", status, page)
}

func (s *Server) render(w http.ResponseWriter, name string, status int, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("模板渲染错误: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
