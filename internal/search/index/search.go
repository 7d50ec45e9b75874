package index

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	id "usersearch/pkg/domain"
	platformstrings "usersearch/pkg/platform/strings"
)

// PrefixSearcher finds owners whose indexed value starts with the query.
type PrefixSearcher struct {
	index          Index
	defaultHardCap int
	logger         *slog.Logger
}

// PrefixOption configures a PrefixSearcher.
type PrefixOption func(*PrefixSearcher)

// WithDefaultHardCap sets the cap used when a search passes hardCap <= 0.
func WithDefaultHardCap(n int) PrefixOption {
	return func(p *PrefixSearcher) {
		if n > 0 {
			p.defaultHardCap = n
		}
	}
}

func WithLogger(logger *slog.Logger) PrefixOption {
	return func(p *PrefixSearcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPrefixSearcher(index Index, opts ...PrefixOption) *PrefixSearcher {
	p := &PrefixSearcher{
		index:          index,
		defaultHardCap: 500,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search returns at most hardCap owner ids whose value for field starts with
// text. A local name field covers username, fullname and nickname together.
func (p *PrefixSearcher) Search(ctx context.Context, text, field string, hardCap int) ([]id.UID, error) {
	text = strings.ToLower(text)
	r, ok := PrefixRange(text)
	if !ok {
		return nil, nil
	}
	if hardCap <= 0 {
		hardCap = p.defaultHardCap
	}

	fields := candidateFields(field)
	perField := make([][]id.UID, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fields {
		g.Go(func() error {
			uids, err := p.scan(gctx, f, r, hardCap)
			if err != nil {
				return err
			}
			perField[i] = uids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []id.UID
	for _, uids := range perField {
		merged = append(merged, uids...)
	}
	merged = platformstrings.Dedupe(merged)
	if len(merged) > hardCap {
		merged = merged[:hardCap]
	}
	return merged, nil
}

func (p *PrefixSearcher) scan(ctx context.Context, field string, r LexRange, hardCap int) ([]id.UID, error) {
	key := SortedKey(field)
	exists, err := p.index.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		p.logger.DebugContext(ctx, "index missing", "key", key)
		return nil, nil
	}

	members, err := p.index.RangeByLex(ctx, key, r, 0, int64(hardCap))
	if err != nil {
		return nil, err
	}
	uids := make([]id.UID, 0, len(members))
	for _, m := range members {
		uids = append(uids, ParseEntry(m).ID)
	}
	return uids, nil
}

func candidateFields(field string) []string {
	for _, f := range LocalNameFields {
		if f == field {
			return LocalNameFields
		}
	}
	return []string{field}
}
