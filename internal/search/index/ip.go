package index

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	id "usersearch/pkg/domain"
)

// IPSearcher finds owners that have been seen on an address.
type IPSearcher struct {
	index Index
}

func NewIPSearcher(index Index) *IPSearcher {
	return &IPSearcher{index: index}
}

type scoredOwner struct {
	uid   id.UID
	score float64
}

// Search matches every history key whose address starts with ip and returns
// owners most recently seen first. An owner seen on several matching
// addresses keeps its latest sighting.
func (s *IPSearcher) Search(ctx context.Context, ip string) ([]id.UID, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil, nil
	}

	keys, err := s.index.ScanKeys(ctx, "ip:"+EscapeGlob(ip)+"*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	perKey := make([][]ScoredMember, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			members, err := s.index.RevRangeWithScores(gctx, key, 0, -1)
			if err != nil {
				return err
			}
			perKey[i] = members
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var owners []scoredOwner
	for _, members := range perKey {
		for _, m := range members {
			owners = append(owners, scoredOwner{uid: id.UID(m.Member), score: m.Score})
		}
	}
	sort.SliceStable(owners, func(i, j int) bool { return owners[i].score > owners[j].score })

	seen := make(map[id.UID]struct{}, len(owners))
	out := make([]id.UID, 0, len(owners))
	for _, o := range owners {
		if _, dup := seen[o.uid]; dup {
			continue
		}
		seen[o.uid] = struct{}{}
		out = append(out, o.uid)
	}
	return out, nil
}
