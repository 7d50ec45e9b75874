// Package filters narrows and orders candidate identity ids.
package filters

import (
	"strings"
	"time"

	"usersearch/internal/identity/models"
)

// OnlineWindow is how recently an identity must have been seen to count as
// online.
const OnlineWindow = 300000 * time.Millisecond

// Filter is a named predicate over identities.
type Filter string

const (
	Online     Filter = "online"
	Flagged    Filter = "flagged"
	Verified   Filter = "verified"
	Unverified Filter = "unverified"
	Banned     Filter = "banned"
	NotBanned  Filter = "notbanned"
)

// ParseFilters normalizes raw filter names. Unknown names are dropped.
func ParseFilters(raw []string) []Filter {
	out := make([]Filter, 0, len(raw))
	seen := make(map[Filter]struct{}, len(raw))
	for _, r := range raw {
		f := Filter(strings.ToLower(strings.TrimSpace(r)))
		if !f.Known() {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func (f Filter) Known() bool {
	switch f {
	case Online, Flagged, Verified, Unverified, Banned, NotBanned:
		return true
	default:
		return false
	}
}

// ByMembership reports whether the filter is decided by the banned group
// rather than by record fields.
func (f Filter) ByMembership() bool {
	return f == Banned || f == NotBanned
}

// RequiredFields lists the record fields Match reads.
func (f Filter) RequiredFields() []models.Field {
	switch f {
	case Online:
		return []models.Field{models.FieldStatus, models.FieldLastOnline}
	case Flagged:
		return []models.Field{models.FieldFlags}
	case Verified, Unverified:
		return []models.Field{models.FieldEmailConfirmed}
	default:
		return nil
	}
}

// Match evaluates the filter against a partial record. Membership filters
// always match here; the pipeline applies them separately.
func (f Filter) Match(p *models.Partial, now time.Time) bool {
	switch f {
	case Online:
		if p.Value(models.FieldStatus) == "offline" {
			return false
		}
		lastOnline, _ := p.Number(models.FieldLastOnline)
		return float64(now.UnixMilli())-lastOnline < float64(OnlineWindow.Milliseconds())
	case Flagged:
		flags, _ := p.Number(models.FieldFlags)
		return flags > 0
	case Verified:
		return models.Truthy(p.Value(models.FieldEmailConfirmed))
	case Unverified:
		return !models.Truthy(p.Value(models.FieldEmailConfirmed))
	default:
		return true
	}
}
