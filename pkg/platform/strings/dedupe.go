// Package strings holds small list helpers shared by the index merge, the
// pipeline cap and query parsing.
package strings

import "strings"

// Dedupe keeps the first occurrence of each value. The input is not modified.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList flattens repeated and comma-joined query values into one list,
// trimming each element and dropping empty ones.
//
//	SplitList([]string{"online, verified", "flagged,"}) // [online verified flagged]
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
