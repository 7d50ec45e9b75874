// Package audit records privileged lookups, such as reverse IP searches, so
// operators can answer who looked up whom.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "usersearch/pkg/domain"
)

// Action names an audited lookup.
type Action string

const (
	ActionIPSearch  Action = "ip_search"
	ActionUIDLookup Action = "uid_lookup"
)

// Event is one audited lookup. Subject is what was looked up (an address
// prefix or an identifier); Matches is how many identities it produced.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Action    Action
	Requester id.UID
	Subject   string
	Matches   int
	IP        string
	RequestID string
}

// Sink receives flushed batches.
type Sink interface {
	Append(ctx context.Context, events ...Event) error
}

// Store is a Sink that can be queried.
type Store interface {
	Sink
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Tee fans each batch out to every sink, stopping at the first failure.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Append(ctx context.Context, events ...Event) error {
	for _, s := range t {
		if err := s.Append(ctx, events...); err != nil {
			return err
		}
	}
	return nil
}
