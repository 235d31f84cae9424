package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Platform             string   `mapstructure:"PLATFORM"`
	VideoList            []string `mapstructure:"VIDEO_LIST"`
	SortType             string   `mapstructure:"SORT_TYPE"`
	CrawlerMaxComments   int      `mapstructure:"CRAWLER_MAX_COMMENTS_COUNT"`
	CrawlerSleepMs       int      `mapstructure:"CRAWLER_SLEEP_MS"`
	MaxConcurrencyNum    int      `mapstructure:"MAX_CONCURRENCY_NUM"`
	UserAgent            string   `mapstructure:"USER_AGENT"`
	Cookies              string   `mapstructure:"COOKIES"`
	DataDir              string   `mapstructure:"DATA_DIR"`
	OutputFile           string   `mapstructure:"OUTPUT_FILE"`
	SaveDataOption       string   `mapstructure:"SAVE_DATA_OPTION"`
	StoreBackend         string   `mapstructure:"STORE_BACKEND"`
	SQLitePath           string   `mapstructure:"SQLITE_PATH"`
	MySQLDSN             string   `mapstructure:"MYSQL_DSN"`
	PostgresDSN          string   `mapstructure:"POSTGRES_DSN"`
	MongoURI             string   `mapstructure:"MONGO_URI"`
	MongoDB              string   `mapstructure:"MONGO_DB"`
	CacheBackend         string   `mapstructure:"CACHE_BACKEND"`
	CacheDefaultTTLSec   int      `mapstructure:"CACHE_DEFAULT_TTL_SEC"`
	SkipCrawled          bool     `mapstructure:"SKIP_CRAWLED"`
	RedisAddr            string   `mapstructure:"REDIS_ADDR"`
	RedisPassword        string   `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int      `mapstructure:"REDIS_DB"`
	RedisKeyPrefix       string   `mapstructure:"REDIS_KEY_PREFIX"`
	LogLevel             string   `mapstructure:"LOG_LEVEL"`
	LogFormat            string   `mapstructure:"LOG_FORMAT"`
	HttpTimeoutSec       int      `mapstructure:"HTTP_TIMEOUT_SEC"`
	HttpRetryCount       int      `mapstructure:"HTTP_RETRY_COUNT"`
	HttpRetryDelaySec    int      `mapstructure:"HTTP_RETRY_DELAY_SEC"`
	HttpMaxRPS           float64  `mapstructure:"HTTP_MAX_RPS"`
	EnableIPProxy        bool     `mapstructure:"ENABLE_IP_PROXY"`
	IPProxyPoolCount     int      `mapstructure:"IP_PROXY_POOL_COUNT"`
	IPProxyProviderName  string   `mapstructure:"IP_PROXY_PROVIDER_NAME"`
	IPProxyList          string   `mapstructure:"IP_PROXY_LIST"`
	IPProxyFile          string   `mapstructure:"IP_PROXY_FILE"`
	EnableBrowserBoot    bool     `mapstructure:"ENABLE_BROWSER_BOOTSTRAP"`
	Headless             bool     `mapstructure:"HEADLESS"`
	BrowserLaunchTimeout int      `mapstructure:"BROWSER_LAUNCH_TIMEOUT"`
	EnableGetAvatars     bool     `mapstructure:"ENABLE_GET_AVATARS"`
}

var AppConfig Config

func LoadConfig(path string) error {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("PLATFORM", "youtube")
	viper.SetDefault("VIDEO_LIST", []string{})
	viper.SetDefault("SORT_TYPE", "recent")
	viper.SetDefault("CRAWLER_MAX_COMMENTS_COUNT", 0)
	viper.SetDefault("CRAWLER_SLEEP_MS", 100)
	viper.SetDefault("MAX_CONCURRENCY_NUM", 1)
	viper.SetDefault("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	viper.SetDefault("COOKIES", "")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("OUTPUT_FILE", "")
	viper.SetDefault("SAVE_DATA_OPTION", "jsonl")
	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("SQLITE_PATH", "data/yt_comments.db")
	viper.SetDefault("MYSQL_DSN", "")
	viper.SetDefault("POSTGRES_DSN", "")
	viper.SetDefault("MONGO_URI", "")
	viper.SetDefault("MONGO_DB", "yt_comments")
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("CACHE_DEFAULT_TTL_SEC", 86400)
	viper.SetDefault("SKIP_CRAWLED", false)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_KEY_PREFIX", "yt_comments:")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("HTTP_TIMEOUT_SEC", 60)
	viper.SetDefault("HTTP_RETRY_COUNT", 5)
	viper.SetDefault("HTTP_RETRY_DELAY_SEC", 20)
	viper.SetDefault("HTTP_MAX_RPS", 0)
	viper.SetDefault("ENABLE_IP_PROXY", false)
	viper.SetDefault("IP_PROXY_POOL_COUNT", 2)
	viper.SetDefault("IP_PROXY_PROVIDER_NAME", "static")
	viper.SetDefault("IP_PROXY_LIST", "")
	viper.SetDefault("IP_PROXY_FILE", "")
	viper.SetDefault("ENABLE_BROWSER_BOOTSTRAP", false)
	viper.SetDefault("HEADLESS", true)
	viper.SetDefault("BROWSER_LAUNCH_TIMEOUT", 60)
	viper.SetDefault("ENABLE_GET_AVATARS", false)

	viper.SetEnvPrefix("YT_CRAWLER")
	viper.AutomaticEnv()
	viper.RegisterAlias("SORT_BY", "SORT_TYPE")

	// If no config file found, just use defaults/env
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return err
	}
	Normalize(&AppConfig)
	return nil
}

// KnownSortType reports whether a normalized SortType names a sort order.
func KnownSortType(v string) bool {
	return v == "popular" || v == "recent"
}

func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	cfg.SaveDataOption = strings.ToLower(strings.TrimSpace(cfg.SaveDataOption))
	switch cfg.SaveDataOption {
	case "excel":
		cfg.SaveDataOption = "xlsx"
	case "ndjson", "":
		cfg.SaveDataOption = "jsonl"
	case "txt", "pretty":
		cfg.SaveDataOption = "text"
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.IPProxyProviderName = strings.ToLower(strings.TrimSpace(cfg.IPProxyProviderName))

	// numeric sort flag: 0 = popular, 1 = recent. Unknown values are kept
	// so the crawler can reject them.
	switch sort := strings.ToLower(strings.TrimSpace(cfg.SortType)); sort {
	case "0", "popular", "top":
		cfg.SortType = "popular"
	case "", "1", "recent", "new", "newest":
		cfg.SortType = "recent"
	default:
		cfg.SortType = sort
	}

	videos := make([]string, 0, len(cfg.VideoList))
	for _, v := range cfg.VideoList {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				videos = append(videos, p)
			}
		}
	}
	cfg.VideoList = videos
}
