package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"
)

type SortOrder int

const (
	SortPopular SortOrder = 0
	SortRecent  SortOrder = 1
)

func (s SortOrder) String() string {
	if s == SortPopular {
		return "popular"
	}
	return "recent"
}

// ParseSortOrder accepts "popular"/"top"/"0" and "recent"/"new"/"1". An empty
// value means recent.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popular", "top", "0":
		return SortPopular, nil
	case "", "recent", "new", "newest", "1":
		return SortRecent, nil
	}
	return SortRecent, fmt.Errorf("unknown sort order %q", s)
}

type Options struct {
	Sort SortOrder
	// Limit stops the walk once this many comments were emitted; 0 means no
	// limit. The final flush may still emit more.
	Limit int
	// Sleep paces the walk between two fetches.
	Sleep time.Duration
	// VideoID only labels log lines.
	VideoID string
}

// Sink receives comments in output order.
type Sink interface {
	Emit(Comment) error
}

type SinkFunc func(Comment) error

func (f SinkFunc) Emit(c Comment) error { return f(c) }

type Stats struct {
	Requests      int    `json:"requests"`
	ReplyRequests int    `json:"reply_requests"`
	TopLevel      int    `json:"top_level"`
	Replies       int    `json:"replies"`
	Emitted       int    `json:"emitted"`
	Orphaned      int    `json:"orphaned,omitempty"`
	SortApplied   bool   `json:"sort_applied,omitempty"`
	StopReason    string `json:"stop_reason,omitempty"`
	TokensQueued  int    `json:"tokens_queued"`
}

const (
	StopQueueEmpty = "queue_empty"
	StopEmptyFetch = "empty_response"
	StopLimit      = "limit"
)

type fetcher interface {
	Fetch(ctx context.Context, tok Token) (map[string]any, error)
}

// Session is one traversal of a video's comment graph. It owns its queue and
// reorder cache and is not safe for concurrent use.
type Session struct {
	fetcher   fetcher
	opts      Options
	queue     *ContinuationQueue
	cache     *ReorderCache
	needsSort bool
	stats     Stats
}

func NewSession(f fetcher, root Token, opts Options) *Session {
	return &Session{
		fetcher:   f,
		opts:      opts,
		queue:     NewContinuationQueue(root),
		cache:     NewReorderCache(),
		needsSort: opts.Sort != SortPopular,
	}
}

func (s *Session) Stats() Stats { return s.stats }

// Run walks the graph and emits every comment to sink. A server-reported
// error or a failed sort selection aborts the walk and drops whatever is
// still buffered; every other stop flushes the buffer first.
func (s *Session) Run(ctx context.Context, sink Sink) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.With("video_id", s.opts.VideoID)

	for s.queue.Len() > 0 {
		if s.opts.Limit > 0 && s.stats.Emitted >= s.opts.Limit {
			s.stats.StopReason = StopLimit
			break
		}
		tok, _ := s.queue.Pop()
		drained := s.queue.Len() == 0

		resp, err := s.fetcher.Fetch(ctx, tok)
		s.stats.Requests++
		if tok.Target == TargetReplyThread {
			s.stats.ReplyRequests++
		}
		log.Debug("continuation fetched", "target", string(tok.Target), "queued", s.queue.Len())
		if err != nil {
			// canceled: keep what is buffered
			if ferr := s.flush(sink); ferr != nil {
				return ferr
			}
			return err
		}
		if len(resp) == 0 {
			s.stats.StopReason = StopEmptyFetch
			break
		}

		if msg, ok := serverErrorMessage(resp); ok {
			s.cache.Reset()
			return crawler.NewServerError(platformName, msg)
		}

		if s.needsSort {
			menu := sortMenu(resp)
			idx := int(s.opts.Sort)
			if idx >= len(menu) || menu[idx].Endpoint == nil {
				s.cache.Reset()
				return crawler.NewSortFailedError(platformName, idx, len(menu))
			}
			s.queue.Replace(menu[idx])
			s.needsSort = false
			s.stats.SortApplied = true
			log.Debug("sort order selected", "sort", s.opts.Sort.String())
			continue
		}

		up := extractContinuations(resp)
		up.apply(s.queue)
		s.stats.TokensQueued += up.count()

		if batch := commentsInResponse(resp); len(batch) > 0 {
			if err := s.buffer(sink, drained, batch, log); err != nil {
				return err
			}
		}

		if !crawler.Sleep(ctx, s.opts.Sleep) {
			if ferr := s.flush(sink); ferr != nil {
				return ferr
			}
			return ctx.Err()
		}
	}
	if s.stats.StopReason == "" {
		s.stats.StopReason = StopQueueEmpty
	}
	return s.flush(sink)
}

func (s *Session) buffer(sink Sink, drained bool, batch []Comment, log *slog.Logger) error {
	switch ClassifyBatch(drained, batch[0].IsReply()) {
	case BatchTopLevel:
		for _, c := range s.cache.StartBatch(batch) {
			if err := s.emit(sink, c); err != nil {
				return err
			}
		}
		s.stats.TopLevel += len(batch)
	default:
		err := s.cache.AddReplies(batch)
		var orphan *OrphanRepliesError
		if errors.As(err, &orphan) {
			s.stats.Orphaned += orphan.Count
			log.Warn("dropping replies without buffered parent", "parent_cid", orphan.ParentID, "count", orphan.Count)
			return nil
		}
		if err != nil {
			return err
		}
		s.stats.Replies += len(batch)
	}
	return nil
}

func (s *Session) flush(sink Sink) error {
	for _, c := range s.cache.Flush() {
		if err := s.emit(sink, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) emit(sink Sink, c Comment) error {
	if err := sink.Emit(c); err != nil {
		return err
	}
	s.stats.Emitted++
	return nil
}
