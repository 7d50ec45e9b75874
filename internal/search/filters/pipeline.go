package filters

import (
	"context"
	"fmt"
	"slices"
	"time"

	"usersearch/internal/identity/groups"
	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
	"usersearch/pkg/requestcontext"
)

// GroupOracle answers batched membership questions positionally.
type GroupOracle interface {
	IsMembers(ctx context.Context, uids []id.UID, group string) ([]bool, error)
}

// RecordSource hydrates partial records positionally, nil for missing ids.
type RecordSource interface {
	PartialRecords(ctx context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error)
}

// Options selects the filters and ordering applied to a candidate list.
type Options struct {
	Filters       []Filter
	GroupName     string
	SortBy        models.Field
	SortDirection Direction
}

// Pipeline applies group, membership and field filters, then sorts.
type Pipeline struct {
	groups  GroupOracle
	records RecordSource
}

func NewPipeline(groups GroupOracle, records RecordSource) *Pipeline {
	return &Pipeline{groups: groups, records: records}
}

// Apply returns the ids that pass every filter, in sort order when SortBy is
// set and in input order otherwise. Records are only hydrated when a filter
// or the sort needs their fields.
func (p *Pipeline) Apply(ctx context.Context, uids []id.UID, opts Options) ([]id.UID, error) {
	uids = slices.DeleteFunc(slices.Clone(uids), func(uid id.UID) bool { return !uid.Valid() })

	if opts.GroupName != "" {
		var err error
		if uids, err = p.keepMembers(ctx, uids, opts.GroupName, true); err != nil {
			return nil, err
		}
	}

	fields := requiredFields(opts)
	membership := membershipFilter(opts.Filters)
	if len(fields) == 0 && membership == "" {
		return uids, nil
	}

	if membership != "" {
		var err error
		if uids, err = p.keepMembers(ctx, uids, groups.BannedGroup, membership == Banned); err != nil {
			return nil, err
		}
	}
	if len(fields) == 0 || len(uids) == 0 {
		return uids, nil
	}

	records, err := p.records.PartialRecords(ctx, uids, fields)
	if err != nil {
		return nil, fmt.Errorf("hydrate filter fields: %w", err)
	}

	now := requestcontext.Now(ctx)
	kept := make([]*models.Partial, 0, len(records))
	for _, rec := range records {
		if rec != nil && matchAll(rec, opts.Filters, now) {
			kept = append(kept, rec)
		}
	}

	if opts.SortBy != "" {
		Sort(kept, opts.SortBy, opts.SortDirection)
	}

	out := make([]id.UID, len(kept))
	for i, rec := range kept {
		out[i] = rec.UID
	}
	return out, nil
}

func (p *Pipeline) keepMembers(ctx context.Context, uids []id.UID, group string, want bool) ([]id.UID, error) {
	if len(uids) == 0 {
		return uids, nil
	}
	isMember, err := p.groups.IsMembers(ctx, uids, group)
	if err != nil {
		return nil, fmt.Errorf("check %s membership: %w", group, err)
	}
	out := uids[:0:0]
	for i, uid := range uids {
		if i < len(isMember) && isMember[i] == want {
			out = append(out, uid)
		}
	}
	return out, nil
}

func requiredFields(opts Options) []models.Field {
	var fields []models.Field
	if opts.SortBy != "" {
		fields = append(fields, opts.SortBy)
	}
	for _, f := range opts.Filters {
		for _, field := range f.RequiredFields() {
			if !slices.Contains(fields, field) {
				fields = append(fields, field)
			}
		}
	}
	return fields
}

// membershipFilter returns Banned or NotBanned when either is requested.
// Banned wins if both are present.
func membershipFilter(filters []Filter) Filter {
	if slices.Contains(filters, Banned) {
		return Banned
	}
	if slices.Contains(filters, NotBanned) {
		return NotBanned
	}
	return ""
}

func matchAll(rec *models.Partial, filters []Filter, now time.Time) bool {
	for _, f := range filters {
		if !f.Match(rec, now) {
			return false
		}
	}
	return true
}
