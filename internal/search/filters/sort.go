package filters

import (
	"sort"
	"strings"

	"usersearch/internal/identity/models"
)

// Direction orders sorted results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection defaults to descending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Ascending)) {
		return Ascending
	}
	return Descending
}

// Sort orders records by field. The comparison is numeric when the first
// record's value is numeric, lexicographic otherwise; in numeric mode
// non-numeric values compare as zero.
func Sort(records []*models.Partial, field models.Field, dir Direction) {
	if len(records) == 0 || field == "" {
		return
	}

	less := lexLess(field)
	if _, numeric := records[0].Number(field); numeric {
		less = numLess(field)
	}
	if dir != Ascending {
		asc := less
		less = func(a, b *models.Partial) bool { return asc(b, a) }
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func numLess(field models.Field) func(a, b *models.Partial) bool {
	return func(a, b *models.Partial) bool {
		x, _ := a.Number(field)
		y, _ := b.Number(field)
		return x < y
	}
}

func lexLess(field models.Field) func(a, b *models.Partial) bool {
	return func(a, b *models.Partial) bool {
		return a.Value(field) < b.Value(field)
	}
}
