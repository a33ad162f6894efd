package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"magnet-search-web/internal/config"
	"magnet-search-web/internal/locale"
	"magnet-search-web/internal/logger"
	"magnet-search-web/internal/search"
	"magnet-search-web/internal/terminal"
)

var log = logging.Logger("main")

func main() {
	app := &cli.App{
		Name:  "search",
		Usage: "在终端中搜索磁力链接",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "配置文件路径(yaml)"},
			&cli.StringFlag{Name: "endpoint", Usage: "搜索接口根地址，默认取 search.endpoint"},
			&cli.StringFlag{Name: "lang", Usage: "界面语言，如 zh-CN、en-US", EnvVars: []string{"MAGNET_LANG", "LANG"}},
			&cli.BoolFlag{Name: "no-color", Usage: "关闭颜色输出"},
		},
		Commands: []*cli.Command{
			{
				Name:  "query",
				Usage: "执行一次搜索并输出结果",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "关键词"},
					&cli.StringFlag{Name: "page", Value: "1", Usage: "页码"},
					&cli.StringFlag{Name: "sort", Usage: "排序字段 date|size|files"},
					&cli.StringFlag{Name: "order", Value: search.OrderDesc, Usage: "排序顺序 asc|desc"},
					&cli.StringFlag{Name: "url", Usage: "分享的搜索地址或查询串，如 \"q=ubuntu&page=2\"，设置后忽略其他参数"},
				},
				Action: func(c *cli.Context) error {
					ctrl, _, err := setup(c)
					if err != nil {
						return err
					}
					state := search.State{
						Query: c.String("q"),
						Page:  search.CoercePage(c.String("page")),
						Sort:  c.String("sort"),
						Order: c.String("order"),
					}
					rawQuery := state.Encode()
					if c.IsSet("url") {
						rawQuery = queryOf(c.String("url"))
					}
					if err := ctrl.Init(c.Context, rawQuery); err != nil {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "交互式搜索，输入 h 查看命令",
				Action: func(c *cli.Context) error {
					ctrl, view, err := setup(c)
					if err != nil {
						return err
					}
					// 首次进入时搜索全部
					_ = ctrl.Init(c.Context, "")
					return terminal.NewREPL(ctrl, view, c.App.Writer).Run(c.Context, os.Stdin)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (*search.Controller, *terminal.View, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, nil, err
	}

	endpoint := cfg.Search.Endpoint
	if c.IsSet("endpoint") {
		endpoint = c.String("endpoint")
	}
	loc := locale.Match(c.String("lang"), cfg.Locale.Default)

	opts := []terminal.Option{terminal.WithLocale(loc), terminal.WithBaseURL(endpoint)}
	if c.Bool("no-color") {
		opts = append(opts, terminal.WithoutColor())
	}
	view := terminal.NewView(c.App.Writer, opts...)

	client := search.NewClient(endpoint,
		search.WithTimeout(cfg.Search.Timeout),
		search.WithRateLimit(cfg.Search.RateLimit, cfg.Search.RateBurst),
	)
	return search.NewController(client, view, search.WithLocale(loc)), view, nil
}

// queryOf 取出地址中的查询串，也接受不带 ? 的查询串
func queryOf(link string) string {
	if _, query, found := strings.Cut(link, "?"); found {
		return query
	}
	return link
}
