package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
)

type blockEntry struct {
	uid id.UID
	at  int64
}

// InMemory is a thread-safe identity store.
type InMemory struct {
	mu         sync.RWMutex
	identities map[id.UID]*models.Identity
	slugs      map[string]id.UID
	handles    map[string]id.UID
	blocks     map[id.UID][]blockEntry
}

func NewInMemory() *InMemory {
	return &InMemory{
		identities: make(map[id.UID]*models.Identity),
		slugs:      make(map[string]id.UID),
		handles:    make(map[string]id.UID),
		blocks:     make(map[id.UID][]blockEntry),
	}
}

// Put inserts or replaces an identity and its slug.
func (s *InMemory) Put(_ context.Context, identity *models.Identity) error {
	if identity == nil || !identity.UID.Valid() {
		return nil
	}
	copied := *identity
	copied.IsBlocked = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.UID] = &copied
	if identity.Userslug != "" && identity.UID.IsLocal() {
		s.slugs[strings.ToLower(identity.Userslug)] = identity.UID
	}
	return nil
}

// PutHandle maps a remote handle (user@host) to an actor id.
func (s *InMemory) PutHandle(_ context.Context, handle string, uid id.UID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[strings.ToLower(handle)] = uid
	return nil
}

// Block records that uid blocks target at the given time (ms).
func (s *InMemory) Block(_ context.Context, uid, target id.UID, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.blocks[uid]
	for i := range entries {
		if entries[i].uid == target {
			entries[i].at = at
			return nil
		}
	}
	s.blocks[uid] = append(entries, blockEntry{uid: target, at: at})
	return nil
}

func (s *InMemory) FullRecords(_ context.Context, uids []id.UID) ([]*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Identity, len(uids))
	for i, uid := range uids {
		if stored, ok := s.identities[uid]; ok {
			copied := *stored
			out[i] = &copied
		}
	}
	return out, nil
}

func (s *InMemory) PartialRecords(_ context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Partial, len(uids))
	for i, uid := range uids {
		if stored, ok := s.identities[uid]; ok {
			out[i] = models.Project(stored, fields)
		}
	}
	return out, nil
}

// BlockedUIDs returns the ids uid has blocked, most recent first.
func (s *InMemory) BlockedUIDs(_ context.Context, uid id.UID) ([]id.UID, error) {
	s.mu.RLock()
	entries := append([]blockEntry(nil), s.blocks[uid]...)
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at > entries[j].at })
	out := make([]id.UID, len(entries))
	for i, e := range entries {
		out[i] = e.uid
	}
	return out, nil
}

func (s *InMemory) UIDBySlug(_ context.Context, slug string) (id.UID, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	s.mu.RLock()
	defer s.mu.RUnlock()

	lookup := s.slugs
	if isHandle(key) {
		lookup = s.handles
	}
	if uid, ok := lookup[key]; ok {
		return uid, nil
	}
	return "", ErrNotFound
}
