package youtube

import (
	"context"
	"sync"
	"time"
)

func endpoint(token string) map[string]any {
	return map[string]any{
		"commandMetadata":     map[string]any{"webCommandMetadata": map[string]any{"apiUrl": "/youtubei/v1/next"}},
		"continuationCommand": map[string]any{"token": token},
	}
}

func renderer(id, text string) map[string]any {
	return map[string]any{
		"commentId":         id,
		"contentText":       map[string]any{"runs": []any{map[string]any{"text": text}}},
		"authorText":        map[string]any{"simpleText": "@" + id},
		"publishedTimeText": map[string]any{"runs": []any{map[string]any{"text": "1 day ago"}}},
		"authorEndpoint":    map[string]any{"browseEndpoint": map[string]any{"browseId": "UC" + id}},
		"voteCount":         map[string]any{"simpleText": "3"},
		"authorThumbnail": map[string]any{"thumbnails": []any{
			map[string]any{"url": "https://yt3.example/small"},
			map[string]any{"url": "https://yt3.example/large"},
		}},
	}
}

// thread is a comments-section item: a top-level comment and, when
// replyToken is set, its reply continuation.
func thread(id, replyToken string) map[string]any {
	tr := map[string]any{"comment": map[string]any{"commentRenderer": renderer(id, "text of "+id)}}
	if replyToken != "" {
		tr["replies"] = map[string]any{"commentRepliesRenderer": map[string]any{"contents": []any{
			map[string]any{"continuationItemRenderer": map[string]any{"continuationEndpoint": endpoint(replyToken)}},
		}}}
	}
	return map[string]any{"commentThreadRenderer": tr}
}

func nextPage(token string) map[string]any {
	return map[string]any{"continuationItemRenderer": map[string]any{"continuationEndpoint": endpoint(token)}}
}

func sectionResponse(items ...any) map[string]any {
	return map[string]any{"onResponseReceivedEndpoints": []any{
		map[string]any{"appendContinuationItemsAction": map[string]any{
			"targetId":          "comments-section",
			"continuationItems": items,
		}},
	}}
}

func repliesResponse(parent string, items ...any) map[string]any {
	return map[string]any{"onResponseReceivedEndpoints": []any{
		map[string]any{"appendContinuationItemsAction": map[string]any{
			"targetId":          "comment-replies-item-" + parent,
			"continuationItems": items,
		}},
	}}
}

func reply(id string) map[string]any {
	return map[string]any{"commentRenderer": renderer(id, "reply "+id)}
}

func showMore(token string) map[string]any {
	return map[string]any{"continuationItemRenderer": map[string]any{
		"button": map[string]any{"buttonRenderer": map[string]any{"command": endpoint(token)}},
	}}
}

// scriptedFetcher answers by continuation token; unknown tokens get an
// empty response.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses map[string]map[string]any
	seen      []string
}

func (f *scriptedFetcher) Fetch(ctx context.Context, tok Token) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, tok.Continuation())
	return f.responses[tok.Continuation()], nil
}

func collectIDs(out *[]string) Sink {
	return SinkFunc(func(c Comment) error {
		*out = append(*out, c.ID)
		return nil
	})
}

func noSleep(context.Context, time.Duration) bool { return true }
