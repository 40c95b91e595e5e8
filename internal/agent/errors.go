package agent

import (
	"fmt"
	"strconv"
	"time"
)

// ErrorKind is the closed set of agent failure classes. Every error that
// crosses the agent boundary carries exactly one kind.
type ErrorKind string

const (
	KindAuthentication  ErrorKind = "authentication_error"
	KindRateLimit       ErrorKind = "rate_limit_error"
	KindServer          ErrorKind = "server_error"
	KindNetwork         ErrorKind = "network_error"
	KindTimeout         ErrorKind = "timeout"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindBudgetExceeded  ErrorKind = "budget_exceeded"
	KindUnknown         ErrorKind = "unknown"
)

// Error is a classified agent failure. RetryAfter is meaningful only for
// rate-limit-shaped kinds.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Err        error
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s agent error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind and provider.
func NewError(kind ErrorKind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// NewRateLimitError builds a rate-limit error. A zero retryAfterSecs
// defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *Error {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &Error{
		Kind:       KindRateLimit,
		Provider:   provider,
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// ClassifyStatus maps an HTTP status code from a provider API to an ErrorKind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuthentication
	case status == 429:
		return KindRateLimit
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
