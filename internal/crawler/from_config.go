package crawler

import (
	"strings"
	"time"

	"yt-comment-crawler-go/internal/config"
)

func RequestFromConfig(cfg config.Config) Request {
	sleep := time.Duration(cfg.CrawlerSleepMs) * time.Millisecond
	if cfg.CrawlerSleepMs < 0 {
		sleep = 0
	}
	inputs := make([]string, 0, len(cfg.VideoList))
	for _, v := range cfg.VideoList {
		if v = strings.TrimSpace(v); v != "" {
			inputs = append(inputs, v)
		}
	}
	return Request{
		Platform:    strings.TrimSpace(cfg.Platform),
		Inputs:      inputs,
		SortBy:      cfg.SortType,
		MaxComments: cfg.CrawlerMaxComments,
		Sleep:       sleep,
		Concurrency: cfg.MaxConcurrencyNum,
	}
}
