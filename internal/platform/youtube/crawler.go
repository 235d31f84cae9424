package youtube

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"yt-comment-crawler-go/internal/browser"
	"yt-comment-crawler-go/internal/cache"
	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/downloader"
	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/metrics"
	"yt-comment-crawler-go/internal/proxy"
	"yt-comment-crawler-go/internal/store"

	"github.com/playwright-community/playwright-go"
)

const platformName = "youtube"

var (
	cacheOnce sync.Once
	cacheInst cache.Cache
)

func sharedCache() cache.Cache {
	cacheOnce.Do(func() {
		cacheInst = cache.NewFromConfig(config.AppConfig)
	})
	return cacheInst
}

// Crawler runs one traversal per input video.
type Crawler struct {
	client *Client
	// transport carries continuation posts and, unless pages is set, the
	// watch page request.
	transport Transport
	pages     PageGetter
	cache     cache.Cache
	// sleep replaces the wait between fetch retries; nil uses the real clock.
	sleep func(context.Context, time.Duration) bool
}

func NewCrawler() *Crawler {
	cli := NewClient()
	pool, err := proxy.PoolFromConfig(config.AppConfig)
	if err != nil {
		logger.Warn("proxy provider init failed", "err", err)
	} else if pool != nil {
		cli.InitProxyPool(pool)
	}
	return NewCrawlerWithClient(cli)
}

func NewCrawlerWithClient(client *Client) *Crawler {
	if client == nil {
		client = NewClient()
	}
	return &Crawler{client: client, transport: client, cache: sharedCache()}
}

func (c *Crawler) Run(ctx context.Context, req crawler.Request) (crawler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req.Platform = platformName
	out := crawler.NewResult(req)

	inputs := req.Inputs
	if len(inputs) == 0 {
		return out, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platformName, Msg: "empty inputs (VIDEO_LIST or -youtubeid)"}
	}
	sort, err := ParseSortOrder(req.SortBy)
	if err != nil {
		return out, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platformName, Msg: "invalid sort order", Err: err}
	}

	if err := store.Init(ctx); err != nil {
		return out, fmt.Errorf("init store: %w", err)
	}

	pages := c.pages
	if pages == nil {
		pages = c.transport
		if config.AppConfig.EnableBrowserBoot {
			bf := newBrowserPages(c.client)
			defer func() { _ = bf.Close() }()
			pages = bf
		}
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = 1
	}
	logger.Info("youtube crawl start", "inputs", len(inputs), "sort", sort.String(), "limit", req.MaxComments, "concurrency", limit)

	var total atomic.Int64
	itemRes := crawler.ForEachLimit(ctx, inputs, limit, func(ctx context.Context, input string) error {
		metrics.ActiveCrawls.Inc()
		start := time.Now()
		n, err := c.crawlVideo(ctx, pages, input, sort, req)
		metrics.ActiveCrawls.Dec()
		metrics.VideoDuration.Observe(time.Since(start).Seconds())
		metrics.VideosCrawled.WithLabelValues(outcome(err)).Inc()
		metrics.CommentsSaved.Add(float64(n))
		total.Add(int64(n))
		return err
	})

	out.Processed = itemRes.Processed
	out.Succeeded = itemRes.Succeeded
	out.Failed = itemRes.Failed
	out.Skipped = itemRes.Skipped
	out.FailureKinds = crawler.MergeFailureKinds(out.FailureKinds, itemRes.FailureKinds)
	out.SkipKinds = crawler.MergeFailureKinds(out.SkipKinds, itemRes.SkipKinds)
	out.Comments = int(total.Load())
	out.FinishedAt = time.Now().Unix()
	logger.Info("youtube crawl done", "processed", out.Processed, "succeeded", out.Succeeded, "failed", out.Failed, "skipped", out.Skipped, "comments", out.Comments)
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// crawlVideo traverses one video and saves its comments. It returns how
// many comments were saved.
func (c *Crawler) crawlVideo(ctx context.Context, pages PageGetter, input string, sort SortOrder, req crawler.Request) (int, error) {
	videoID, err := ParseVideoID(input)
	if err != nil {
		logger.Warn("skip invalid youtube input", "value", input, "err", err)
		return 0, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platformName, Msg: "invalid youtube input", Err: err}
	}
	log := logger.With("video_id", videoID)

	if config.AppConfig.SkipCrawled {
		var prev store.VideoSummary
		if ok, err := cache.Crawled(ctx, c.cache, platformName, videoID, &prev); err != nil {
			log.Warn("read crawled marker failed", "err", err)
		} else if ok {
			log.Info("video already crawled, skipping", "comments", prev.Comments)
			return 0, nil
		}
	}

	pageURL, html, err := FetchWatchPage(ctx, pages, videoID)
	if err != nil {
		log.Error("fetch watch page failed", "err", err, "proxy", c.client.ProxyAddr())
		return 0, err
	}
	boot, err := ParseBootstrap(html, pageURL)
	if err != nil {
		if hint := crawler.DetectRiskHint(html); hint != "" && crawler.KindOf(err) == crawler.ErrorKindUnavailable {
			log.Warn("risk hint on watch page", "hint", hint)
			return 0, crawler.NewRiskHintError(platformName, pageURL, hint)
		}
		log.Warn("comments unavailable", "err", err)
		return 0, err
	}
	root, err := boot.RootContinuation(pageURL)
	if err != nil {
		log.Info("comments disabled")
		return 0, err
	}

	attempts := config.AppConfig.HttpRetryCount
	delay := time.Duration(config.AppConfig.HttpRetryDelaySec) * time.Second
	fetcher := NewFetcher(c.transport, boot.Config, WithRetry(attempts, delay), WithSleep(c.sleep))
	sess := NewSession(fetcher, root, Options{Sort: sort, Limit: req.MaxComments, Sleep: req.Sleep, VideoID: videoID})

	var comments []Comment
	runErr := sess.Run(ctx, SinkFunc(func(cm Comment) error {
		comments = append(comments, cm)
		return nil
	}))
	stats := sess.Stats()
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		log.Warn("crawl interrupted, saving partial comments", "comments", len(comments))
	default:
		log.Error("crawl aborted", "err", runErr, "requests", stats.Requests)
		return 0, runErr
	}

	if req.MaxComments > 0 && len(comments) > req.MaxComments {
		comments = comments[:req.MaxComments]
	}
	summary := store.VideoSummary{
		VideoID:    videoID,
		URL:        pageURL,
		Sort:       sort.String(),
		Comments:   len(comments),
		TopLevel:   stats.TopLevel,
		Replies:    stats.Replies,
		Orphaned:   stats.Orphaned,
		Requests:   stats.Requests,
		StopReason: stats.StopReason,
		CrawledAt:  time.Now().Unix(),
	}
	if err := c.save(videoID, comments, summary); err != nil {
		log.Error("save comments failed", "err", err)
		return 0, err
	}
	if config.AppConfig.EnableGetAvatars {
		c.downloadAvatars(ctx, videoID, comments)
	}
	if runErr != nil {
		return len(comments), runErr
	}

	ttl := time.Duration(config.AppConfig.CacheDefaultTTLSec) * time.Second
	if err := cache.MarkCrawled(ctx, c.cache, platformName, videoID, summary, ttl); err != nil {
		log.Warn("write crawled marker failed", "err", err)
	}
	log.Info("video comments saved", "comments", len(comments), "requests", stats.Requests, "stop", stats.StopReason, "orphaned", stats.Orphaned)
	return len(comments), nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(crawler.KindOf(err))
}

func (c *Crawler) save(videoID string, comments []Comment, summary store.VideoSummary) error {
	records := make([]store.Record, len(comments))
	for i := range comments {
		records[i] = comments[i]
	}
	if _, err := store.SaveComments(videoID, records); err != nil {
		return err
	}
	return store.SaveVideo(summary)
}

func (c *Crawler) downloadAvatars(ctx context.Context, videoID string, comments []Comment) {
	seen := map[string]struct{}{}
	var jobs []downloader.Job
	for _, cm := range comments {
		if cm.AuthorPhotoURL == "" || cm.AuthorChannelID == "" {
			continue
		}
		if _, ok := seen[cm.AuthorChannelID]; ok {
			continue
		}
		seen[cm.AuthorChannelID] = struct{}{}
		jobs = append(jobs, downloader.Job{URL: cm.AuthorPhotoURL, Filename: cm.AuthorChannelID + ".jpg"})
	}
	if len(jobs) == 0 {
		return
	}
	d := downloader.NewDownloader(store.VideoMediaDir(videoID))
	if failed := d.BatchDownload(ctx, jobs, 4); failed > 0 {
		logger.Warn("some avatars failed to download", "video_id", videoID, "failed", failed, "total", len(jobs))
	}
}

// newBrowserPages loads watch pages through a browser, routed through the
// client's current proxy and with the consent cookie already set.
func newBrowserPages(cli *Client) *browser.PageFetcher {
	opts := browser.Options{
		Headless:      config.AppConfig.Headless,
		UserAgent:     config.AppConfig.UserAgent,
		LaunchTimeout: time.Duration(config.AppConfig.BrowserLaunchTimeout) * time.Second,
		Cookies: []playwright.OptionalCookie{{
			Name:   "CONSENT",
			Value:  "YES+cb",
			Domain: playwright.String(".youtube.com"),
			Path:   playwright.String("/"),
		}},
	}
	if cli != nil && cli.proxyPool != nil {
		if p, err := cli.proxyPool.Acquire(context.Background()); err == nil {
			opts.ProxyServer = p.ServerURL()
		} else {
			logger.Warn("no proxy for browser", "err", err)
		}
	}
	return browser.NewPageFetcher(opts)
}

func (c *Crawler) String() string {
	return fmt.Sprintf("youtube crawler (browser=%v)", config.AppConfig.EnableBrowserBoot)
}
