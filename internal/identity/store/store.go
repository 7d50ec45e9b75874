// Package store reads identity records, block lists and slug lookups.
//
// Three backends share the same read contract: Redis hashes (the layout the
// search index lives next to), Postgres rows, and an in-memory map for tests
// and local runs. All batch reads are positional: result[i] belongs to
// uids[i] and is nil when no such identity exists.
package store

import (
	"strings"

	"usersearch/pkg/platform/sentinel"
)

// ErrNotFound is returned by slug lookups that match nothing.
var ErrNotFound = sentinel.ErrNotFound

// isHandle reports whether a slug names a remote actor (user@host).
func isHandle(slug string) bool {
	return strings.Contains(slug, "@")
}
