package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var reVideoID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ParseVideoID accepts a bare video id or a watch, youtu.be, shorts, embed or
// live url.
func ParseVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("empty input")
	}
	if reVideoID.MatchString(s) {
		return s, nil
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("cannot parse youtube video id from: %s", input)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var candidate string
	switch {
	case host == "youtu.be":
		candidate = firstSegment(u.Path)
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) >= 2 {
			switch parts[0] {
			case "shorts", "embed", "live", "v":
				candidate = parts[1]
			}
		}
	}
	if reVideoID.MatchString(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("cannot parse youtube video id from: %s", input)
}

func firstSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}
