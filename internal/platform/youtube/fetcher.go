package youtube

import (
	"context"
	"time"

	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/metrics"
)

const (
	baseURL = "https://www.youtube.com"

	DefaultFetchAttempts   = 5
	DefaultFetchRetryDelay = 20 * time.Second
)

// Transport sends requests for the traversal. Post returns the status and,
// for a 2xx reply, the decoded JSON object. Get returns the final url after
// redirects and the body.
type Transport interface {
	Post(ctx context.Context, url string, query map[string]string, body any) (int, map[string]any, error)
	Get(ctx context.Context, url string) (string, string, error)
}

// Fetcher requests one continuation page at a time.
type Fetcher struct {
	transport  Transport
	config     APIConfig
	attempts   int
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) bool
}

type FetcherOption func(*Fetcher)

func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
		if delay >= 0 {
			f.retryDelay = delay
		}
	}
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep func(context.Context, time.Duration) bool) FetcherOption {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

func NewFetcher(t Transport, cfg APIConfig, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		transport:  t,
		config:     cfg,
		attempts:   DefaultFetchAttempts,
		retryDelay: DefaultFetchRetryDelay,
		sleep:      crawler.Sleep,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the decoded response for tok, or nil when the walk should
// stop: a 403/413 reply, or no success within the attempt budget. The only
// error is the context ending.
func (f *Fetcher) Fetch(ctx context.Context, tok Token) (map[string]any, error) {
	url := baseURL + tok.APIURL()
	query := map[string]string{"key": f.config.APIKey}
	body := map[string]any{
		"context":      f.config.Context,
		"continuation": tok.Continuation(),
	}

	target := string(tok.Target)
	if target == "" {
		target = "unknown"
	}

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, resp, err := f.transport.Post(ctx, url, query, body)
		switch {
		case err != nil:
			if !crawler.ShouldRetryError(err) {
				return nil, err
			}
			metrics.ContinuationRequests.WithLabelValues(target, "retry").Inc()
			logger.Warn("continuation request failed", "target", target, "attempt", attempt, "err", err)
		case status >= 200 && status <= 299:
			metrics.ContinuationRequests.WithLabelValues(target, "ok").Inc()
			if resp == nil {
				resp = map[string]any{}
			}
			return resp, nil
		case crawler.IsDefinitiveStatus(status):
			metrics.ContinuationRequests.WithLabelValues(target, "refused").Inc()
			logger.Info("continuation refused", "status", status)
			return nil, nil
		default:
			metrics.ContinuationRequests.WithLabelValues(target, "retry").Inc()
			logger.Warn("continuation request failed", "target", target, "attempt", attempt, "status", status)
		}
		if attempt < f.attempts && !f.sleep(ctx, f.retryDelay) {
			return nil, ctx.Err()
		}
	}
	metrics.ContinuationRequests.WithLabelValues(target, "exhausted").Inc()
	logger.Warn("continuation retries exhausted", "attempts", f.attempts)
	return nil, nil
}
