package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/proxy"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	watchURLFormat = "https://www.youtube.com/watch?v=%s"
	consentMarker  = "uxe="
)

// Client is the resty transport used by the traversal. Continuation posts are
// sent once; the Fetcher owns their retry policy. Page GETs retry in resty.
type Client struct {
	httpClient *resty.Client
	jar        http.CookieJar
	switcher   *proxy.Switcher
	proxyPool  *proxy.Pool
}

func NewClient() *Client {
	switcher := &proxy.Switcher{}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = switcher.Proxy

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	timeoutSec := config.AppConfig.HttpTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	hc := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   time.Duration(timeoutSec) * time.Second,
	}
	rc := resty.NewWithClient(hc)
	ua := strings.TrimSpace(config.AppConfig.UserAgent)
	if ua == "" {
		ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	}
	rc.SetHeaders(map[string]string{
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      ua,
	})
	if ck := strings.TrimSpace(config.AppConfig.Cookies); ck != "" {
		setCookieHeader(jar, ck)
	}

	// HTTP_RETRY_COUNT is a total attempt budget, the same one the Fetcher
	// applies to continuation posts; resty counts only the retries.
	rc.SetRetryCount(pageAttempts() - 1)
	rc.SetRetryWaitTime(500 * time.Millisecond)
	rc.SetRetryMaxWaitTime(4 * time.Second)

	out := &Client{httpClient: rc, jar: jar, switcher: switcher}
	if rps := config.AppConfig.HttpMaxRPS; rps > 0 {
		// shared by every traversal of the run
		limiter := rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if r != nil && r.Request != nil && r.Request.Method != http.MethodGet {
			return false
		}
		if err != nil {
			return crawler.ShouldRetryError(err)
		}
		if r == nil {
			return true
		}
		code := r.StatusCode()
		if out.proxyPool != nil && crawler.ShouldInvalidateProxyStatus(code) {
			out.proxyPool.MarkBad(code)
		}
		return crawler.ShouldRetryStatus(code)
	})
	return out
}

func pageAttempts() int {
	if n := config.AppConfig.HttpRetryCount; n > 0 {
		return n
	}
	return DefaultFetchAttempts
}

func (c *Client) InitProxyPool(pool *proxy.Pool) {
	c.proxyPool = pool
}

func (c *Client) ensureProxy(ctx context.Context) error {
	if c.proxyPool == nil || c.switcher == nil {
		return nil
	}
	p, err := c.proxyPool.Acquire(ctx)
	if err != nil {
		return err
	}
	return c.switcher.Use(p)
}

// ProxyAddr names the proxy requests currently go through, or "" when they
// go direct.
func (c *Client) ProxyAddr() string {
	if c == nil || c.proxyPool == nil {
		return ""
	}
	if p, ok := c.proxyPool.Active(); ok {
		return p.Addr()
	}
	return ""
}

// Post sends a JSON body and decodes a 2xx JSON reply. Other statuses come
// back without a body and without an error.
func (c *Client) Post(ctx context.Context, rawURL string, query map[string]string, body any) (int, map[string]any, error) {
	if err := c.ensureProxy(ctx); err != nil {
		return 0, nil, err
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(rawURL)
	if err != nil {
		return 0, nil, err
	}
	code := resp.StatusCode()
	if c.proxyPool != nil && crawler.ShouldInvalidateProxyStatus(code) {
		c.proxyPool.MarkBad(code)
	}
	if code < 200 || code > 299 {
		return code, nil, nil
	}
	var out map[string]any
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return code, nil, fmt.Errorf("decode continuation response: %w", err)
		}
	}
	return code, out, nil
}

func (c *Client) Get(ctx context.Context, rawURL string) (string, string, error) {
	if err := c.ensureProxy(ctx); err != nil {
		return "", "", err
	}
	resp, err := c.httpClient.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", "", err
	}
	if resp.IsError() {
		return "", "", crawler.NewHTTPStatusError(platformName, rawURL, resp.StatusCode(), resp.String())
	}
	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return final, resp.String(), nil
}

// AcceptConsent stores the cookie that skips the consent interstitial.
func (c *Client) AcceptConsent() {
	setConsentCookie(c.jar)
}

func setConsentCookie(jar http.CookieJar) {
	if jar == nil {
		return
	}
	u, _ := url.Parse(baseURL)
	jar.SetCookies(u, []*http.Cookie{{Name: "CONSENT", Value: "YES+cb", Domain: ".youtube.com", Path: "/"}})
}

func setCookieHeader(jar http.CookieJar, header string) {
	cookies, err := http.ParseCookie(header)
	if err != nil {
		logger.Warn("ignoring malformed COOKIES value", "err", err)
		return
	}
	for _, ck := range cookies {
		ck.Domain = ".youtube.com"
		ck.Path = "/"
	}
	u, _ := url.Parse(baseURL)
	jar.SetCookies(u, cookies)
}

// PageGetter loads a page and reports the url it ended on.
type PageGetter interface {
	Get(ctx context.Context, url string) (string, string, error)
}

// consentSetter is implemented by getters holding a cookie jar.
type consentSetter interface {
	AcceptConsent()
}

// FetchWatchPage loads the watch page of videoID. When the service redirects
// to its consent page, the consent cookie is set and the page fetched again.
func FetchWatchPage(ctx context.Context, t PageGetter, videoID string) (string, string, error) {
	pageURL := fmt.Sprintf(watchURLFormat, videoID)
	final, html, err := t.Get(ctx, pageURL)
	if err != nil {
		return pageURL, "", err
	}
	if strings.Contains(final, consentMarker) {
		cs, ok := t.(consentSetter)
		if !ok {
			return pageURL, html, nil
		}
		logger.Info("consent redirect, retrying with consent cookie", "video_id", videoID)
		cs.AcceptConsent()
		if _, html, err = t.Get(ctx, pageURL); err != nil {
			return pageURL, "", err
		}
	}
	return pageURL, html, nil
}
