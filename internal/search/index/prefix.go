package index

import (
	"unicode/utf8"
)

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// PrefixRange returns the lexicographic range holding every string that
// starts with prefix. ok is false for an empty prefix.
//
// The upper bound is the prefix with its last rune incremented. Trailing
// runes that cannot be incremented (U+10FFFF) are dropped and the carry
// moves left; when no rune can be incremented the range is unbounded.
// Increments skip the surrogate block so the bound stays valid UTF-8.
func PrefixRange(prefix string) (r LexRange, ok bool) {
	if prefix == "" {
		return LexRange{}, false
	}

	runes := []rune(prefix)
	for i := len(runes) - 1; i >= 0; i-- {
		next, ok := successor(runes[i])
		if !ok {
			continue
		}
		return LexRange{Min: prefix, Max: string(runes[:i]) + string(next)}, true
	}
	return LexRange{Min: prefix, Unbounded: true}, true
}

func successor(r rune) (rune, bool) {
	if r >= utf8.MaxRune {
		return 0, false
	}
	next := r + 1
	if next >= surrogateMin && next <= surrogateMax {
		next = surrogateMax + 1
	}
	return next, true
}
