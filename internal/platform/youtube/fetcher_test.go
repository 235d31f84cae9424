package youtube

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTransport struct {
	statuses []int
	resp     map[string]any
	err      error
	posts    int
	lastURL  string
	lastQ    map[string]string
	lastBody any
}

func (f *fakeTransport) Post(ctx context.Context, url string, query map[string]string, body any) (int, map[string]any, error) {
	f.posts++
	f.lastURL, f.lastQ, f.lastBody = url, query, body
	if f.err != nil {
		return 0, nil, f.err
	}
	status := 200
	if i := f.posts - 1; i < len(f.statuses) {
		status = f.statuses[i]
	} else if len(f.statuses) > 0 {
		status = f.statuses[len(f.statuses)-1]
	}
	if status != 200 {
		return status, nil, nil
	}
	return status, f.resp, nil
}

func (f *fakeTransport) Get(ctx context.Context, url string) (string, string, error) {
	return url, "", nil
}

type sleepRecorder struct{ waits []time.Duration }

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) bool {
	s.waits = append(s.waits, d)
	return true
}

var testConfig = APIConfig{APIKey: "KEY", Context: map[string]any{"client": map[string]any{"hl": "en"}}}

func TestFetcherSendsContinuation(t *testing.T) {
	tr := &fakeTransport{resp: map[string]any{"ok": true}}
	f := NewFetcher(tr, testConfig, WithSleep(noSleep))
	resp, err := f.Fetch(context.Background(), Token{Endpoint: endpoint("tok-1")})
	if err != nil || resp["ok"] != true {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
	if tr.lastURL != "https://www.youtube.com/youtubei/v1/next" {
		t.Fatalf("url = %q", tr.lastURL)
	}
	if tr.lastQ["key"] != "KEY" {
		t.Fatalf("query = %v", tr.lastQ)
	}
	body := tr.lastBody.(map[string]any)
	if body["continuation"] != "tok-1" || body["context"] == nil {
		t.Fatalf("body = %v", body)
	}
}

func TestFetcherExhaustsAttempts(t *testing.T) {
	tr := &fakeTransport{statuses: []int{500}}
	rec := &sleepRecorder{}
	f := NewFetcher(tr, testConfig, WithSleep(rec.sleep))
	resp, err := f.Fetch(context.Background(), Token{Endpoint: endpoint("x")})
	if err != nil || resp != nil {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
	if tr.posts != DefaultFetchAttempts {
		t.Fatalf("posts = %d", tr.posts)
	}
	if len(rec.waits) != DefaultFetchAttempts-1 {
		t.Fatalf("waits = %v", rec.waits)
	}
	for _, w := range rec.waits {
		if w != DefaultFetchRetryDelay {
			t.Fatalf("wait = %v", w)
		}
	}
}

func TestFetcherDefinitiveStatusStopsImmediately(t *testing.T) {
	for _, code := range []int{403, 413} {
		tr := &fakeTransport{statuses: []int{code}}
		rec := &sleepRecorder{}
		resp, err := NewFetcher(tr, testConfig, WithSleep(rec.sleep)).Fetch(context.Background(), Token{Endpoint: endpoint("x")})
		if err != nil || resp != nil {
			t.Fatalf("%d: resp=%v err=%v", code, resp, err)
		}
		if tr.posts != 1 || len(rec.waits) != 0 {
			t.Fatalf("%d: posts=%d waits=%v", code, tr.posts, rec.waits)
		}
	}
}

func TestFetcherRecoversAfterFailures(t *testing.T) {
	tr := &fakeTransport{statuses: []int{502, 429, 200}, resp: map[string]any{"n": 1.0}}
	rec := &sleepRecorder{}
	f := NewFetcher(tr, testConfig, WithRetry(4, time.Second), WithSleep(rec.sleep))
	resp, err := f.Fetch(context.Background(), Token{Endpoint: endpoint("x")})
	if err != nil || resp["n"] != 1.0 {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
	if tr.posts != 3 || len(rec.waits) != 2 || rec.waits[0] != time.Second {
		t.Fatalf("posts=%d waits=%v", tr.posts, rec.waits)
	}
}

func TestFetcherEmptySuccessBody(t *testing.T) {
	tr := &fakeTransport{}
	resp, err := NewFetcher(tr, testConfig).Fetch(context.Background(), Token{Endpoint: endpoint("x")})
	if err != nil || resp == nil || len(resp) != 0 {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
}

func TestFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := &fakeTransport{}
	_, err := NewFetcher(tr, testConfig).Fetch(ctx, Token{Endpoint: endpoint("x")})
	if !errors.Is(err, context.Canceled) || tr.posts != 0 {
		t.Fatalf("err=%v posts=%d", err, tr.posts)
	}
}
