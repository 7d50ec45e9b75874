package index

import (
	"context"
	"sort"
	"sync"
)

// InMemory is a sorted-set store held in process memory. It follows Redis
// ordering rules: lexicographic ranges compare raw bytes, and score ranges
// break ties by member in the same direction.
type InMemory struct {
	mu   sync.RWMutex
	sets map[string]map[string]float64
}

func NewInMemory() *InMemory {
	return &InMemory{sets: make(map[string]map[string]float64)}
}

func (x *InMemory) Add(_ context.Context, key string, score float64, member string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	set, ok := x.sets[key]
	if !ok {
		set = make(map[string]float64)
		x.sets[key] = set
	}
	set[member] = score
	return nil
}

// Remove deletes a member; empty sets disappear like they do in Redis.
func (x *InMemory) Remove(_ context.Context, key, member string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.sets[key], member)
	if len(x.sets[key]) == 0 {
		delete(x.sets, key)
	}
}

func (x *InMemory) Exists(_ context.Context, key string) (bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.sets[key]) > 0, nil
}

func (x *InMemory) RangeByLex(_ context.Context, key string, r LexRange, offset, count int64) ([]string, error) {
	members := x.members(key)
	sort.Strings(members)

	// Redis applies no LIMIT for offset 0, count 0 and treats a negative
	// count as "all".
	limited := count > 0 || (count == 0 && offset != 0)

	var out []string
	var skipped int64
	for _, m := range members {
		if m < r.Min {
			continue
		}
		if !r.Unbounded && m >= r.Max {
			break
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limited && int64(len(out)) >= count {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (x *InMemory) RevRangeWithScores(_ context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	x.mu.RLock()
	scored := make([]ScoredMember, 0, len(x.sets[key]))
	for m, s := range x.sets[key] {
		scored = append(scored, ScoredMember{Member: m, Score: s})
	}
	x.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Member > scored[j].Member
	})

	n := int64(len(scored))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return nil, nil
	}
	return scored[start : stop+1], nil
}

func (x *InMemory) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var keys []string
	for key, set := range x.sets {
		if len(set) > 0 && globMatch(pattern, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (x *InMemory) members(key string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(x.sets[key]))
	for m := range x.sets[key] {
		out = append(out, m)
	}
	return out
}
