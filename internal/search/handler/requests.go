package handler

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"usersearch/internal/identity/models"
	"usersearch/internal/search/filters"
	"usersearch/internal/search/index"
	"usersearch/internal/search/service"
	dErrors "usersearch/pkg/domain-errors"
	platformstrings "usersearch/pkg/platform/strings"
)

const (
	maxQueryLength    = 256
	maxResultsPerPage = 500
	maxHardCap        = 5000
	maxPage           = 100000
)

var searchModes = map[string]struct{}{
	index.FieldUsername:               {},
	index.FieldFullname:               {},
	index.FieldNickname:               {},
	index.FieldActorPreferredUsername: {},
	index.FieldActorName:              {},
	service.SearchByIP:                {},
	service.SearchByUID:               {},
}

// ParseSearchRequest validates query parameters into a service query. The
// requester is not read from the parameters. maxPerPage <= 0 applies the
// package default.
func ParseSearchRequest(v url.Values, maxPerPage int) (service.Query, error) {
	if maxPerPage <= 0 {
		maxPerPage = maxResultsPerPage
	}
	q := service.Query{
		Text:      v.Get("query"),
		SearchBy:  strings.TrimSpace(v.Get("searchBy")),
		GroupName: strings.TrimSpace(v.Get("groupName")),
	}

	// Size validation (fail fast)
	if len(q.Text) > maxQueryLength {
		return service.Query{}, dErrors.New(dErrors.CodeValidation, "query must be at most 256 characters")
	}

	if q.SearchBy != "" {
		if _, ok := searchModes[q.SearchBy]; !ok {
			return service.Query{}, dErrors.New(dErrors.CodeValidation, "searchBy is not supported")
		}
	}

	var err error
	if q.Page, err = intParam(v, "page", maxPage); err != nil {
		return service.Query{}, err
	}
	if q.HardCap, err = intParam(v, "hardCap", maxHardCap); err != nil {
		return service.Query{}, err
	}
	if q.ResultsPerPage, err = intParam(v, "resultsPerPage", maxPerPage); err != nil {
		return service.Query{}, err
	}

	if raw := strings.TrimSpace(v.Get("paginate")); raw != "" {
		paginate, err := strconv.ParseBool(raw)
		if err != nil {
			return service.Query{}, dErrors.New(dErrors.CodeValidation, "paginate must be a boolean")
		}
		q.Paginate = &paginate
	}

	raw := slices.Concat(v["filters"], v["filters[]"])
	if parsed := filters.ParseFilters(platformstrings.SplitList(raw)); len(parsed) > 0 {
		q.Filters = parsed
	}

	if sortBy := strings.TrimSpace(v.Get("sortBy")); sortBy != "" {
		field := models.Field(sortBy)
		if !field.Sortable() {
			return service.Query{}, dErrors.New(dErrors.CodeValidation, "sortBy is not a sortable field")
		}
		q.SortBy = field
	}

	switch dir := strings.ToLower(strings.TrimSpace(v.Get("sortDirection"))); dir {
	case "":
	case string(filters.Ascending), string(filters.Descending):
		q.SortDirection = filters.Direction(dir)
	default:
		return service.Query{}, dErrors.New(dErrors.CodeValidation, "sortDirection must be asc or desc")
	}

	return q, nil
}

// intParam reads a non-negative integer. limit <= 0 means unbounded.
func intParam(v url.Values, name string, limit int) (int, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a non-negative integer")
	}
	if limit > 0 && n > limit {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be at most "+strconv.Itoa(limit))
	}
	return n, nil
}
