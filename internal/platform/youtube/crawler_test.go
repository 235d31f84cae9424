package youtube

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"yt-comment-crawler-go/internal/cache"
	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/store"
)

// siteTransport serves watch pages by video id and continuation replies by
// token.
type siteTransport struct {
	mu        sync.Mutex
	pages     map[string]string
	responses map[string]map[string]any
	posts     int
}

func (s *siteTransport) Get(ctx context.Context, u string) (string, string, error) {
	id := u[strings.LastIndex(u, "=")+1:]
	return u, s.pages[id], nil
}

func (s *siteTransport) Post(ctx context.Context, u string, query map[string]string, body any) (int, map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts++
	tok, _ := body.(map[string]any)["continuation"].(string)
	return 200, s.responses[tok], nil
}

func useTempConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	config.AppConfig = config.Config{
		Platform:       "youtube",
		DataDir:        t.TempDir(),
		SaveDataOption: "jsonl",
		StoreBackend:   "file",
		HttpRetryCount: 2,
	}
}

func testCrawler(tr *siteTransport) *Crawler {
	return &Crawler{transport: tr, cache: cache.NewMemoryCache(), sleep: noSleep}
}

func readJSONL(t *testing.T, path string) []Comment {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var out []Comment
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var c Comment
		if err := json.Unmarshal(sc.Bytes(), &c); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, c)
	}
	return out
}

const testCfg = `{"INNERTUBE_API_KEY":"k","INNERTUBE_CONTEXT":{"client":{"hl":"en"}}}`

func TestCrawlerRunSavesComments(t *testing.T) {
	useTempConfig(t)
	const id = "dQw4w9WgXcQ"
	tr := &siteTransport{
		pages: map[string]string{id: watchPage(t, testCfg, initialWithRoot("root"))},
		responses: map[string]map[string]any{
			"root": sectionResponse(thread("C1", "r1"), nextPage("p2")),
			"r1":   repliesResponse("C1", reply("C1.a")),
			"p2":   sectionResponse(thread("C2", "")),
		},
	}
	res, err := testCrawler(tr).Run(context.Background(), crawler.Request{Inputs: []string{"https://youtu.be/" + id}, SortBy: "popular"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Succeeded != 1 || res.Comments != 3 || res.Platform != "youtube" {
		t.Fatalf("result = %+v", res)
	}
	got := readJSONL(t, store.CommentsPath(id))
	if ids(got) != "C1,C1.a,C2" {
		t.Fatalf("saved %s", ids(got))
	}
	if _, err := os.Stat(filepath.Join(store.VideoDir(id), "video.json")); err != nil {
		t.Fatalf("video summary: %v", err)
	}
}

func TestCrawlerRunLimitTruncates(t *testing.T) {
	useTempConfig(t)
	const id = "dQw4w9WgXcQ"
	tr := &siteTransport{
		pages: map[string]string{id: watchPage(t, testCfg, initialWithRoot("root"))},
		responses: map[string]map[string]any{
			"root": sectionResponse(thread("C1", ""), thread("C2", ""), thread("C3", "")),
		},
	}
	res, err := testCrawler(tr).Run(context.Background(), crawler.Request{Inputs: []string{id}, SortBy: "popular", MaxComments: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Comments != 2 || ids(readJSONL(t, store.CommentsPath(id))) != "C1,C2" {
		t.Fatalf("result = %+v", res)
	}
}

func TestCrawlerRunClassifiesFailures(t *testing.T) {
	useTempConfig(t)
	disabled := map[string]any{"contents": map[string]any{"itemSectionRenderer": map[string]any{"contents": []any{}}}}
	tr := &siteTransport{
		pages: map[string]string{
			"aaaaaaaaaaa": "<html>video unavailable</html>",
			"bbbbbbbbbbb": watchPage(t, testCfg, disabled),
			"ccccccccccc": watchPage(t, testCfg, initialWithRoot("root")),
		},
		responses: map[string]map[string]any{
			"root": {"externalErrorMessage": "nope"},
		},
	}
	res, err := testCrawler(tr).Run(context.Background(), crawler.Request{
		Inputs: []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "not a video"},
		SortBy: "popular",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 4 || res.Skipped != 2 || res.Failed != 2 || res.Comments != 0 {
		t.Fatalf("result = %+v", res)
	}
	if res.SkipKinds[string(crawler.ErrorKindUnavailable)] != 1 || res.SkipKinds[string(crawler.ErrorKindDisabled)] != 1 {
		t.Fatalf("skip kinds = %v", res.SkipKinds)
	}
	if res.FailureKinds[string(crawler.ErrorKindServerError)] != 1 || res.FailureKinds[string(crawler.ErrorKindInvalidInput)] != 1 {
		t.Fatalf("failure kinds = %v", res.FailureKinds)
	}
	if _, err := os.Stat(store.CommentsPath("ccccccccccc")); !os.IsNotExist(err) {
		t.Fatalf("aborted crawl left a comments file: %v", err)
	}
}

func TestCrawlerSkipsCrawledVideos(t *testing.T) {
	useTempConfig(t)
	config.AppConfig.SkipCrawled = true
	const id = "dQw4w9WgXcQ"
	tr := &siteTransport{
		pages:     map[string]string{id: watchPage(t, testCfg, initialWithRoot("root"))},
		responses: map[string]map[string]any{"root": sectionResponse(thread("C1", ""))},
	}
	c := testCrawler(tr)
	if _, err := c.Run(context.Background(), crawler.Request{Inputs: []string{id}, SortBy: "popular"}); err != nil {
		t.Fatal(err)
	}
	posts := tr.posts
	res, err := c.Run(context.Background(), crawler.Request{Inputs: []string{id}, SortBy: "popular"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.posts != posts || res.Comments != 0 || res.Succeeded != 1 {
		t.Fatalf("second run posts=%d result=%+v", tr.posts-posts, res)
	}
}

func TestCrawlerRejectsEmptyInput(t *testing.T) {
	useTempConfig(t)
	_, err := testCrawler(&siteTransport{}).Run(context.Background(), crawler.Request{})
	if crawler.KindOf(err) != crawler.ErrorKindInvalidInput {
		t.Fatalf("err = %v", err)
	}
}

func TestCrawlerRejectsUnknownSort(t *testing.T) {
	useTempConfig(t)
	tr := &siteTransport{}
	_, err := testCrawler(tr).Run(context.Background(), crawler.Request{Inputs: []string{"abcdefghijk"}, SortBy: "oldest"})
	if crawler.KindOf(err) != crawler.ErrorKindInvalidInput {
		t.Fatalf("err = %v", err)
	}
	if tr.posts != 0 {
		t.Fatalf("posts = %d, want none", tr.posts)
	}
}

func TestCrawlerSummaryRecordsOrphanedReplies(t *testing.T) {
	useTempConfig(t)
	const id = "dQw4w9WgXcQ"
	tr := &siteTransport{
		pages: map[string]string{id: watchPage(t, testCfg, initialWithRoot("root"))},
		responses: map[string]map[string]any{
			"root": sectionResponse(thread("C1", "rx"), nextPage("p2")),
			"rx":   repliesResponse("CX", reply("CX.a"), reply("CX.b")),
			"p2":   sectionResponse(thread("C2", "")),
		},
	}
	if _, err := testCrawler(tr).Run(context.Background(), crawler.Request{Inputs: []string{id}, SortBy: "popular"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(store.VideoDir(id), "video.json"))
	if err != nil {
		t.Fatal(err)
	}
	var summary store.VideoSummary
	if err := json.Unmarshal(b, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Orphaned != 2 || summary.Comments != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}
