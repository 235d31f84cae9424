// Package metrics holds the Prometheus collectors of the crawler. They are
// registered on the default registry and served by the API at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContinuationRequests counts continuation POST attempts by token target
	// (comments-root, reply-thread, sort-select) and outcome: ok, retry,
	// refused (403/413) or exhausted.
	ContinuationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytcc_continuation_requests_total",
			Help: "Continuation requests sent to the comment endpoint",
		},
		[]string{"target", "outcome"},
	)

	// VideosCrawled counts finished videos by outcome: ok or the error kind.
	VideosCrawled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytcc_videos_crawled_total",
			Help: "Videos whose crawl finished",
		},
		[]string{"outcome"},
	)

	VideoDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ytcc_video_crawl_seconds",
			Help:    "Time spent crawling one video",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	CommentsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ytcc_comments_saved_total",
			Help: "Comments written to the store",
		},
	)

	ActiveCrawls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytcc_active_crawls",
			Help: "Video traversals currently running",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytcc_api_requests_total",
			Help: "HTTP API requests by route pattern and status",
		},
		[]string{"route", "status"},
	)
)
