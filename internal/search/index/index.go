// Package index searches the sorted-set name indexes and the IP history keys.
//
// Every searchable field has one lexicographically ordered set named
// "<field>:sorted" whose members are "<lowercased value>:<owner id>". Local
// owners are positive integers; federated owners are actor URIs, so the
// separator before them is followed by "http:" or "https:".
package index

import (
	"context"
)

// Searchable local fields.
const (
	FieldUsername = "username"
	FieldFullname = "fullname"
	FieldNickname = "nickname"

	// Federated actor fields.
	FieldActorPreferredUsername = "ap.preferredUsername"
	FieldActorName              = "ap.name"
)

// LocalNameFields are the fields a local name search always covers.
var LocalNameFields = []string{FieldUsername, FieldFullname, FieldNickname}

// SortedKey names the lexicographic index for field.
func SortedKey(field string) string {
	return field + ":sorted"
}

// IPKey names the per-IP history set. Members are owner ids scored by the
// time they were last seen on that address.
func IPKey(ip string) string {
	return "ip:" + ip + ":uid"
}

// LexRange bounds a lexicographic range query. Min is inclusive, Max is
// exclusive. Unbounded means there is no upper limit.
type LexRange struct {
	Min       string
	Max       string
	Unbounded bool
}

// ScoredMember is a sorted-set member with its score.
type ScoredMember struct {
	Member string
	Score  float64
}

// Index is the read side of the sorted-set store.
type Index interface {
	Exists(ctx context.Context, key string) (bool, error)
	RangeByLex(ctx context.Context, key string, r LexRange, offset, count int64) ([]string, error)
	RevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// Writer adds members to sorted sets. Search never writes; seeding and
// tests do.
type Writer interface {
	Add(ctx context.Context, key string, score float64, member string) error
}
