package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix 环境变量前缀，MAGNET_SEARCH_ENDPOINT 对应 search.endpoint
const EnvPrefix = "MAGNET_"

// Config 应用配置
type Config struct {
	Server struct {
		Port        string        `koanf:"port"`
		ReadTimeout time.Duration `koanf:"read_timeout"`
	} `koanf:"server"`
	Search struct {
		Endpoint  string        `koanf:"endpoint"`
		Timeout   time.Duration `koanf:"timeout"`
		RateLimit float64       `koanf:"rate_limit"`
		RateBurst int           `koanf:"rate_burst"`
	} `koanf:"search"`
	Mongo struct {
		URL      string `koanf:"url"`
		Database string `koanf:"database"`
	} `koanf:"mongo"`
	Pagination struct {
		PageSize int `koanf:"page_size"`
	} `koanf:"pagination"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
		Dir    string `koanf:"dir"`
	} `koanf:"log"`
	Locale struct {
		Default string `koanf:"default"`
	} `koanf:"locale"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "27777"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Search.Endpoint = "http://127.0.0.1:27777"
	cfg.Search.Timeout = 10 * time.Second
	cfg.Search.RateBurst = 1
	cfg.Mongo.Database = "magnet_search"
	cfg.Pagination.PageSize = 15
	cfg.Log.Level = "info"
	cfg.Log.Format = "color"
	cfg.Log.Dir = "logs"
	cfg.Locale.Default = "zh-CN"
	return cfg
}

// Load 依次加载默认值、配置文件、.env 与环境变量，path 为空时跳过配置文件
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "读取配置文件 %s", path)
		}
	}

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "读取 .env")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "读取环境变量")
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "解析配置")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey 将 MAGNET_SEARCH_RATE_LIMIT 转为 search.rate_limit
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port 不能为空")
	}
	if c.Search.Endpoint == "" {
		return errors.New("search.endpoint 不能为空")
	}
	if c.Pagination.PageSize < 1 {
		return errors.Errorf("pagination.page_size 必须大于0，当前为 %d", c.Pagination.PageSize)
	}
	if c.Search.RateLimit < 0 {
		return errors.New("search.rate_limit 不能为负数")
	}
	return nil
}
