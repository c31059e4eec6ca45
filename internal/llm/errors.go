package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// FailureKind classifies invoker failures for retry decisions and reporting.
type FailureKind int

const (
	// KindRateLimited covers HTTP 429 and 408; retried with backoff,
	// honoring Retry-After when present.
	KindRateLimited FailureKind = iota
	// KindInvalidRequest covers 4xx client mistakes; never retried.
	KindInvalidRequest
	// KindAuthFailure covers 401/403; never retried.
	KindAuthFailure
	// KindServerError covers 5xx responses; retried with backoff.
	KindServerError
	// KindMalformedResponse covers replies the client could not decode into
	// the expected JSON; retried up to the attempt cap, then surfaced.
	KindMalformedResponse
)

func (k FailureKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidRequest:
		return "invalid_request"
	case KindAuthFailure:
		return "auth_failure"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Failure is a typed invoker error.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (f *Failure) Error() string {
	msg := strings.TrimSpace(f.Message)
	if f.StatusCode > 0 {
		return fmt.Sprintf("llm %s: http %d: %s", f.Kind, f.StatusCode, msg)
	}
	return fmt.Sprintf("llm %s: %s", f.Kind, msg)
}

// Retryable reports whether the failure kind is worth another attempt.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case KindRateLimited, KindServerError, KindMalformedResponse:
		return true
	default:
		return false
	}
}

func failureFromStatus(status int, body string, retryAfter time.Duration) *Failure {
	kind := KindInvalidRequest
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuthFailure
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		kind = KindRateLimited
	case status >= http.StatusInternalServerError:
		kind = KindServerError
	}
	return &Failure{
		Kind:       kind,
		StatusCode: status,
		Message:    strings.TrimSpace(body),
		RetryAfter: retryAfter,
	}
}
