package youtube

import (
	"encoding/json"
	"testing"

	"yt-comment-crawler-go/internal/crawler"
)

func watchPage(t *testing.T, cfg string, initial any) string {
	t.Helper()
	page := "<html><head><script>ytcfg.set(" + cfg + ");</script></head><body>"
	if initial != nil {
		b, err := json.Marshal(initial)
		if err != nil {
			t.Fatal(err)
		}
		page += "<script>var ytInitialData = " + string(b) + ";</script>"
	}
	return page + "</body></html>"
}

func initialWithRoot(token string) map[string]any {
	return map[string]any{"contents": map[string]any{"twoColumnWatchNextResults": map[string]any{"results": map[string]any{
		"itemSectionRenderer": map[string]any{"contents": []any{nextPage(token)}},
	}}}}
}

const pageURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestParseBootstrapJSON(t *testing.T) {
	html := watchPage(t, `{"INNERTUBE_API_KEY":"AIza","INNERTUBE_CONTEXT":{"client":{"hl":"en","clientVersion":"2.2024"}}}`, initialWithRoot("root-tok"))
	b, err := ParseBootstrap(html, pageURL)
	if err != nil {
		t.Fatalf("ParseBootstrap: %v", err)
	}
	if b.Config.APIKey != "AIza" || digString(b.Config.Context, "client", "hl") != "en" {
		t.Fatalf("config = %+v", b.Config)
	}
	root, err := b.RootContinuation(pageURL)
	if err != nil {
		t.Fatalf("RootContinuation: %v", err)
	}
	if root.Continuation() != "root-tok" || root.Target != TargetCommentsRoot {
		t.Fatalf("root = %+v", root)
	}
}

func TestParseBootstrapObjectLiteral(t *testing.T) {
	html := watchPage(t, `{INNERTUBE_API_KEY: 'AIza', INNERTUBE_CONTEXT: {client: {hl: 'en', n: 2}}, trailing: [1, 2,],}`, initialWithRoot("r"))
	b, err := ParseBootstrap(html, pageURL)
	if err != nil {
		t.Fatalf("ParseBootstrap: %v", err)
	}
	if b.Config.APIKey != "AIza" {
		t.Fatalf("config = %+v", b.Config)
	}
	if n, ok := dig(b.Config.Context, "client", "n").(float64); !ok || n != 2 {
		t.Fatalf("numbers must decode as float64, got %#v", dig(b.Config.Context, "client", "n"))
	}
}

func TestParseBootstrapMissingConfig(t *testing.T) {
	_, err := ParseBootstrap("<html>nothing here</html>", pageURL)
	if crawler.KindOf(err) != crawler.ErrorKindUnavailable {
		t.Fatalf("err = %v", err)
	}
	_, err = ParseBootstrap(watchPage(t, `{"INNERTUBE_CONTEXT":{}}`, nil), pageURL)
	if crawler.KindOf(err) != crawler.ErrorKindUnavailable {
		t.Fatalf("err without key = %v", err)
	}
}

func TestRootContinuationDisabled(t *testing.T) {
	cfg := `{"INNERTUBE_API_KEY":"k","INNERTUBE_CONTEXT":{}}`
	noSection := map[string]any{"contents": map[string]any{"videoPrimaryInfoRenderer": map[string]any{}}}
	b, err := ParseBootstrap(watchPage(t, cfg, noSection), pageURL)
	if err != nil {
		t.Fatalf("ParseBootstrap: %v", err)
	}
	if _, err := b.RootContinuation(pageURL); crawler.KindOf(err) != crawler.ErrorKindDisabled {
		t.Fatalf("err = %v", err)
	}

	messageOnly := map[string]any{"itemSectionRenderer": map[string]any{"contents": []any{
		map[string]any{"messageRenderer": map[string]any{"text": "Comments are turned off."}},
	}}}
	b, _ = ParseBootstrap(watchPage(t, cfg, messageOnly), pageURL)
	if _, err := b.RootContinuation(pageURL); crawler.KindOf(err) != crawler.ErrorKindDisabled {
		t.Fatalf("err = %v", err)
	}
}
