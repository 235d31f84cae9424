package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	ErrorKindUnknown      ErrorKind = "unknown"
	ErrorKindRiskHint     ErrorKind = "risk_hint"
	ErrorKindHTTP         ErrorKind = "http"
	ErrorKindForbidden    ErrorKind = "forbidden"
	ErrorKindRateLimited  ErrorKind = "rate_limited"
	ErrorKindInvalidInput ErrorKind = "invalid_input"
	ErrorKindCanceled     ErrorKind = "canceled"
	ErrorKindTimeout      ErrorKind = "timeout"

	// The page exposes no API configuration, so comments cannot be listed.
	ErrorKindUnavailable ErrorKind = "comments_unavailable"
	// The page has no comment section or no continuation for it.
	ErrorKindDisabled ErrorKind = "comments_disabled"
	// The requested sort order is not offered by the sort menu.
	ErrorKindSortFailed ErrorKind = "sort_selection_failed"
	// The remote service embedded its own error message in a response.
	ErrorKindServerError ErrorKind = "server_reported_error"
)

type Error struct {
	Kind     ErrorKind
	Platform string
	URL      string
	Msg      string
	Err      error
}

func (e Error) Error() string {
	base := e.Msg
	if base == "" && e.Err != nil {
		base = e.Err.Error()
	}
	if base == "" {
		base = string(e.Kind)
	}
	if e.Platform != "" && e.URL != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Platform, base, e.URL)
	}
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s", e.Platform, base)
	}
	return base
}

func (e Error) Unwrap() error { return e.Err }

func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce Error
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorKindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status=") {
		switch {
		case strings.Contains(msg, "http status=401"), strings.Contains(msg, "http status=403"):
			return ErrorKindForbidden
		case strings.Contains(msg, "http status=429"):
			return ErrorKindRateLimited
		}
		return ErrorKindHTTP
	}
	return ErrorKindUnknown
}

// IsEmptyResult reports whether err only says that the item has no comments
// to list. Such items end with an empty result rather than a failure.
func IsEmptyResult(err error) bool {
	switch KindOf(err) {
	case ErrorKindUnavailable, ErrorKindDisabled:
		return true
	}
	return false
}

// ExitCode maps an error kind to the process exit status, so callers can
// tell the boundary failures apart without parsing messages.
func ExitCode(kind ErrorKind) int {
	switch kind {
	case "":
		return 0
	case ErrorKindUnavailable:
		return 3
	case ErrorKindDisabled:
		return 4
	case ErrorKindSortFailed:
		return 5
	case ErrorKindServerError:
		return 6
	case ErrorKindCanceled:
		return 130
	default:
		return 1
	}
}

// Severity orders kinds for picking the one that decides a run's exit code.
func Severity(kind ErrorKind) int {
	switch kind {
	case "":
		return 0
	case ErrorKindUnavailable:
		return 1
	case ErrorKindDisabled:
		return 2
	case ErrorKindServerError:
		return 5
	case ErrorKindSortFailed:
		return 4
	default:
		return 3
	}
}

func MergeFailureKinds(dst map[string]int, src map[string]int) map[string]int {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]int, len(src))
	}
	for k, v := range src {
		dst[k] += v
	}
	return dst
}

func NewRiskHintError(platform, url, hint string) error {
	return Error{
		Kind:     ErrorKindRiskHint,
		Platform: platform,
		URL:      url,
		Msg:      fmt.Sprintf("risk hint detected: %s", hint),
	}
}

func NewUnavailableError(platform, url string) error {
	return Error{Kind: ErrorKindUnavailable, Platform: platform, URL: url, Msg: "comments unavailable: no api configuration in page"}
}

func NewDisabledError(platform, url string) error {
	return Error{Kind: ErrorKindDisabled, Platform: platform, URL: url, Msg: "comments disabled"}
}

func NewSortFailedError(platform string, index, options int) error {
	return Error{
		Kind:     ErrorKindSortFailed,
		Platform: platform,
		Msg:      fmt.Sprintf("sort selection failed: index %d, menu has %d option(s)", index, options),
	}
}

func NewServerError(platform, message string) error {
	return Error{
		Kind:     ErrorKindServerError,
		Platform: platform,
		Msg:      "server reported error: " + message,
	}
}
