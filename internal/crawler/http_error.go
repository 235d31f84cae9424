package crawler

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxBodySnippet = 512

// StatusKind maps a non-2xx response status to an error kind. A missing or
// removed page means there is nothing to crawl, which is reported like a
// video whose comments are unavailable.
func StatusKind(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorKindForbidden
	case http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case http.StatusNotFound, http.StatusGone:
		return ErrorKindUnavailable
	}
	return ErrorKindHTTP
}

// NewHTTPStatusError keeps a whitespace-collapsed prefix of the body so
// error pages stay readable in logs.
func NewHTTPStatusError(platform, url string, status int, body string) error {
	msg := fmt.Sprintf("http status=%d", status)
	if snippet := strings.Join(strings.Fields(body), " "); snippet != "" {
		if len(snippet) > maxBodySnippet {
			cut := maxBodySnippet
			for cut > 0 && !utf8.RuneStart(snippet[cut]) {
				cut--
			}
			snippet = snippet[:cut] + "..."
		}
		msg += " body=" + snippet
	}
	return Error{Kind: StatusKind(status), Platform: platform, URL: url, Msg: msg}
}
