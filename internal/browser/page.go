package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"yt-comment-crawler-go/internal/logger"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless      bool
	UserAgent     string
	UserDataDir   string
	BrowserPath   string
	ProxyServer   string
	LaunchTimeout time.Duration
	// Cookies are set on the context before the first navigation.
	Cookies []playwright.OptionalCookie
}

// PageFetcher loads pages in a real browser and returns the rendered markup.
// It starts the browser lazily; concurrent Gets are served one at a time.
type PageFetcher struct {
	mu      sync.Mutex
	opts    Options
	pw      *playwright.Playwright
	ctx     playwright.BrowserContext
	profile profile
}

func NewPageFetcher(opts Options) *PageFetcher {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = 60 * time.Second
	}
	return &PageFetcher{opts: opts}
}

func (f *PageFetcher) start() error {
	if f.ctx != nil {
		return nil
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	prof, err := openProfile(f.opts.UserDataDir)
	if err != nil {
		_ = pw.Stop()
		return err
	}

	launch := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(f.opts.Headless),
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
		Timeout:  playwright.Float(float64(f.opts.LaunchTimeout.Milliseconds())),
	}
	if f.opts.UserAgent != "" {
		launch.UserAgent = playwright.String(f.opts.UserAgent)
	}
	if f.opts.ProxyServer != "" {
		launch.Proxy = &playwright.Proxy{Server: f.opts.ProxyServer}
	}
	if bin, err := findBrowser(f.opts.BrowserPath); err != nil {
		logger.Warn("browser binary detection failed, using bundled chromium", "err", err)
	} else if bin != "" {
		launch.ExecutablePath = playwright.String(bin)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(prof.dir, launch)
	if err != nil {
		prof.release()
		_ = pw.Stop()
		return fmt.Errorf("launch browser: %w", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(initScript)}); err != nil {
		logger.Warn("add browser init script failed", "err", err)
	}
	if len(f.opts.Cookies) > 0 {
		if err := bctx.AddCookies(f.opts.Cookies); err != nil {
			logger.Warn("add browser cookies failed", "err", err)
		}
	}
	f.pw, f.ctx, f.profile = pw, bctx, prof
	return nil
}

// Get navigates to url and returns the final url and the page markup.
func (f *PageFetcher) Get(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.start(); err != nil {
		return "", "", err
	}
	page, err := f.ctx.NewPage()
	if err != nil {
		return "", "", fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	timeout := f.opts.LaunchTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return "", "", fmt.Errorf("goto %s: %w", url, err)
	}
	html, err := page.Content()
	if err != nil {
		return "", "", err
	}
	return page.URL(), html, nil
}

func (f *PageFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ctx == nil {
		return nil
	}
	err := f.ctx.Close()
	if f.pw != nil {
		_ = f.pw.Stop()
	}
	f.profile.release()
	f.pw, f.ctx, f.profile = nil, nil, profile{}
	return err
}
