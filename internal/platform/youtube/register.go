package youtube

import (
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/platform"
)

func init() {
	platform.Register("youtube", []string{"yt"}, func() crawler.Runner { return NewCrawler() })
}
