package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrProvider         = errors.New("provider error")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNoResponseBody   = errors.New("no response body")
)

// QuotaError names the exhausted provider and the model the user should switch to.
type QuotaError struct {
	Provider   string
	Suggestion string
	Err        error
}

func (e *QuotaError) Error() string {
	msg := fmt.Sprintf("⚠️ %s Quota Exceeded: limit reached.", e.Provider)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" Please try again later or switch to %s.", e.Suggestion)
	}
	return msg
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

func IsQuota(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

const quotaStatus = "RESOURCE_EXHAUSTED"

func isQuotaStatus(code int, status string) bool {
	return code == http.StatusTooManyRequests || status == quotaStatus
}

// isQuotaMessage matches error text when no typed API error is available.
func isQuotaMessage(msg string) bool {
	return strings.Contains(msg, "Error 429,") ||
		strings.Contains(msg, quotaStatus) ||
		strings.Contains(strings.ToLower(msg), "quota exceeded")
}

// ErrorKind buckets an error for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrConnectionFailed):
		return "connection"
	default:
		return "provider"
	}
}
