package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// initScript hides the automation markers the watch page checks before
// serving the comment section.
const initScript = `(() => {
  const define = (obj, key, value) => {
    try { Object.defineProperty(obj, key, { get: () => value }); } catch (e) {}
  };
  define(navigator, 'webdriver', undefined);
  define(navigator, 'languages', ['en-US', 'en']);
  if (!window.chrome) { window.chrome = { runtime: {} }; }
})();`

// profile is the user data directory of the persistent browser context.
type profile struct {
	dir  string
	temp bool
}

// openProfile uses base when set and a throwaway temp directory otherwise.
func openProfile(base string) (profile, error) {
	if base = strings.TrimSpace(base); base == "" {
		dir, err := os.MkdirTemp("", "yt-comment-crawler-")
		if err != nil {
			return profile{}, fmt.Errorf("browser profile: %w", err)
		}
		return profile{dir: dir, temp: true}, nil
	}
	dir, err := filepath.Abs(base)
	if err == nil {
		err = os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return profile{}, fmt.Errorf("browser profile: %w", err)
	}
	return profile{dir: dir}, nil
}

func (p profile) release() {
	if p.temp {
		_ = os.RemoveAll(p.dir)
	}
}

var macBrowsers = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// findBrowser returns a locally installed Chrome-family binary, or "" to
// use the chromium bundled with playwright. An explicit path must exist.
func findBrowser(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("browser path not found: %s", explicit)
		}
		return explicit, nil
	}
	if env := os.Getenv("CHROME_PATH"); env != "" && fileExists(env) {
		return env, nil
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	if runtime.GOOS == "darwin" {
		for _, p := range macBrowsers {
			if fileExists(p) {
				return p, nil
			}
		}
	}
	return "", nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
