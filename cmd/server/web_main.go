package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"

	"magnet-search-web/internal/config"
	"magnet-search-web/internal/database"
	"magnet-search-web/internal/logger"
	"magnet-search-web/internal/search"
	"magnet-search-web/internal/server"
)

var log = logging.Logger("main")

func main() {
	// 命令行参数，显式指定时覆盖配置文件与环境变量
	configPath := flag.String("config", "", "配置文件路径(yaml)")
	port := flag.String("port", "", "HTTP服务端口")
	endpoint := flag.String("endpoint", "", "搜索接口根地址")
	dbURL := flag.String("db", "", "MongoDB地址，设置后提供 /api/search 参考接口")
	seed := flag.Bool("seed", false, "数据库为空时写入示例数据")
	logLevel := flag.String("log-level", "", "日志级别")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "endpoint":
			cfg.Search.Endpoint = *endpoint
		case "db":
			cfg.Mongo.URL = *dbURL
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	// 处理系统信号
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Client: search.NewClient(cfg.Search.Endpoint,
			search.WithTimeout(cfg.Search.Timeout),
			search.WithRateLimit(cfg.Search.RateLimit, cfg.Search.RateBurst),
		),
		PageSize:      cfg.Pagination.PageSize,
		DefaultLocale: cfg.Locale.Default,
	}

	// 初始化数据库
	if cfg.Mongo.URL != "" {
		log.Infof("正在连接数据库: %s", cfg.Mongo.Database)
		db, err := database.InitDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
		if err != nil {
			log.Fatalf("数据库初始化失败: %v", err)
		}
		defer db.Close()

		if *seed {
			if _, err := database.SeedSamples(ctx, db); err != nil {
				log.Warnf("添加示例数据失败: %v", err)
			}
		}
		opts.DB = db
	}

	if cfg.Log.Dir != "" {
		accessLog, err := logger.NewAccessLog(cfg.Log.Dir, "access")
		if err != nil {
			log.Fatalf("创建访问日志失败: %v", err)
		}
		defer accessLog.Close()
		opts.AccessLog = accessLog
	}

	srv, err := server.New(opts)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	log.Infof("搜索接口: %s", cfg.Search.Endpoint)
	if err := server.Run(ctx, ":"+cfg.Server.Port, srv.Handler(), cfg.Server.ReadTimeout); err != nil {
		log.Fatalf("Web服务器运行错误: %v", err)
	}
	log.Info("Web服务已关闭")
}
