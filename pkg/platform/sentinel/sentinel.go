// Package sentinel holds store-level facts that callers branch on with
// errors.Is. Services translate them; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound means a lookup key (slug, handle, uid) has no owner.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means a remote dependency refused or timed out.
	ErrUnavailable = errors.New("unavailable")
)
