package crawler

import (
	"context"
	"errors"
	"net/http"
)

// ShouldRetryError is false only for cancellation and deadlines; any other
// transport error is worth another attempt.
func ShouldRetryError(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsDefinitiveStatus reports statuses that end a continuation walk outright:
// the service refuses (403) or rejects the payload as too large (413).
func IsDefinitiveStatus(code int) bool {
	switch code {
	case http.StatusForbidden, http.StatusRequestEntityTooLarge:
		return true
	}
	return false
}

func ShouldRetryStatus(code int) bool {
	ok := code >= 200 && code < 300
	return !ok && !IsDefinitiveStatus(code)
}

// ShouldInvalidateProxyStatus marks statuses that suggest the exit address
// is throttled or banned.
func ShouldInvalidateProxyStatus(code int) bool {
	switch code {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return false
}
