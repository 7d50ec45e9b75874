// Package models holds the rate limiting value types shared by stores and
// middleware.
package models

import (
	"strings"
	"time"
)

// SubjectKind says what a limit key is scoped to.
type SubjectKind string

const (
	SubjectIP        SubjectKind = "ip"
	SubjectRequester SubjectKind = "uid"
)

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// ExceededResponse is the API response when a limit is exceeded.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// NewKey builds the bucket key for a subject on an endpoint.
func NewKey(endpoint string, kind SubjectKind, subject string) string {
	return "ratelimit:" + SanitizeKeySegment(endpoint) + ":" + string(kind) + ":" + SanitizeKeySegment(subject)
}

// SanitizeKeySegment escapes delimiter characters so a subject containing
// ':' (IPv6 addresses, for one) cannot spill into an adjacent key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
