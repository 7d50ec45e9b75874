package service

import (
	"fmt"
	"strings"
	"time"

	"usersearch/internal/identity/models"
	"usersearch/internal/search/filters"
	id "usersearch/pkg/domain"
)

// Search modes other than field names.
const (
	SearchByIP  = "ip"
	SearchByUID = "uid"

	DefaultSearchBy = "username"
)

// Query is one search request.
type Query struct {
	Text      string
	SearchBy  string
	Page      int
	Requester id.UID
	// Paginate defaults to true when nil.
	Paginate       *bool
	Filters        []filters.Filter
	GroupName      string
	SortBy         models.Field
	SortDirection  filters.Direction
	HardCap        int
	ResultsPerPage int
	// Strategy replaces the index search for the fallback stage. Supplying
	// one also disables remote resolution.
	Strategy Strategy
}

// Result is a page of hydrated identities.
type Result struct {
	MatchCount int                `json:"matchCount"`
	PageCount  *int               `json:"pageCount,omitempty"`
	Timing     string             `json:"timing"`
	Users      []*models.Identity `json:"users"`
}

type normalizedQuery struct {
	Query
	paginate bool
	pageSize int
}

func (s *Service) normalize(q Query) normalizedQuery {
	q.Text = strings.TrimSpace(q.Text)
	if q.SearchBy == "" {
		q.SearchBy = DefaultSearchBy
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if !q.Requester.IsLocal() {
		q.Requester = ""
	}
	n := normalizedQuery{Query: q, paginate: true, pageSize: s.cfg.ResultsPerPage}
	if q.Paginate != nil {
		n.paginate = *q.Paginate
	}
	if q.ResultsPerPage > 0 {
		n.pageSize = q.ResultsPerPage
	}
	return n
}

// paginate returns uids[(page-1)*size : (page-1)*size+size], clamped to the
// slice bounds.
func paginate(uids []id.UID, page, size int) []id.UID {
	if size <= 0 {
		return uids
	}
	skip := max(page, 1) - 1
	if skip >= pageCount(len(uids), size) {
		return []id.UID{}
	}
	start := skip * size
	stop := min(start+size, len(uids))
	return uids[start:stop]
}

func pageCount(matches, size int) int {
	if size <= 0 {
		return 0
	}
	return (matches + size - 1) / size
}

func formatTiming(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
