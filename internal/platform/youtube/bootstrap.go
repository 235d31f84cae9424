package youtube

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"yt-comment-crawler-go/internal/crawler"
)

var (
	ytCfgRe       = regexp.MustCompile(`ytcfg\.set\s*\(\s*(\{.+?\})\s*\)\s*;`)
	ytInitialData = regexp.MustCompile(`(?:window\s*\[\s*["']ytInitialData["']\s*\]|ytInitialData)\s*=\s*(\{.+?\})\s*;\s*(?:var\s+meta|</script|\n)`)
)

// APIConfig is the session configuration read once from the watch page.
type APIConfig struct {
	APIKey  string
	Context map[string]any
}

// Bootstrap holds what the watch page provides to start a traversal.
type Bootstrap struct {
	Config      APIConfig
	InitialData map[string]any
}

// ParseBootstrap extracts the api configuration and the initial render tree
// from raw watch page markup. A page without api configuration yields an
// unavailable error.
func ParseBootstrap(html, pageURL string) (Bootstrap, error) {
	cfgBlob := firstGroup(ytCfgRe, html)
	if cfgBlob == "" {
		return Bootstrap{}, crawler.NewUnavailableError(platformName, pageURL)
	}
	cfg, err := decodeBlob(cfgBlob)
	if err != nil {
		return Bootstrap{}, crawler.Error{Kind: crawler.ErrorKindUnavailable, Platform: platformName, URL: pageURL, Msg: "comments unavailable: undecodable api configuration", Err: err}
	}
	key := digString(cfg, "INNERTUBE_API_KEY")
	ctx := digMap(cfg, "INNERTUBE_CONTEXT")
	if key == "" || ctx == nil {
		return Bootstrap{}, crawler.NewUnavailableError(platformName, pageURL)
	}

	out := Bootstrap{Config: APIConfig{APIKey: key, Context: ctx}}
	if blob := firstGroup(ytInitialData, html); blob != "" {
		data, err := decodeBlob(blob)
		if err != nil {
			return Bootstrap{}, fmt.Errorf("decode initial data: %w", err)
		}
		out.InitialData = data
	}
	return out, nil
}

// RootContinuation finds the comment section's first continuation. A page
// without one has comments disabled.
func (b Bootstrap) RootContinuation(pageURL string) (Token, error) {
	section, ok := FirstKey(b.InitialData, "itemSectionRenderer")
	if !ok || section == nil {
		return Token{}, crawler.NewDisabledError(platformName, pageURL)
	}
	renderer, ok := FirstKey(section, "continuationItemRenderer")
	if !ok {
		return Token{}, crawler.NewDisabledError(platformName, pageURL)
	}
	ep := digMap(renderer, "continuationEndpoint")
	if ep == nil {
		return Token{}, crawler.NewDisabledError(platformName, pageURL)
	}
	return Token{Target: TargetCommentsRoot, Endpoint: ep}, nil
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// decodeBlob parses a JSON object; blobs that are JavaScript object literals
// rather than strict JSON go through the script engine.
func decodeBlob(blob string) (map[string]any, error) {
	var out map[string]any
	jerr := json.Unmarshal([]byte(blob), &out)
	if jerr == nil {
		return out, nil
	}
	out, err := evalObjectLiteral(blob)
	if err != nil {
		return nil, fmt.Errorf("json: %v; script: %w", jerr, err)
	}
	return out, nil
}
