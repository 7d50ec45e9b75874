package index

import (
	"net/url"
	"strings"

	id "usersearch/pkg/domain"
)

// Kind says whether an entry is owned by a local or a federated identity.
type Kind int

const (
	KindLocal Kind = iota
	KindFederated
)

var federationMarkers = []string{":https:", ":http:"}

// Entry is one decoded index member.
type Entry struct {
	Value string
	Kind  Kind
	ID    id.UID
}

// NewEntry builds the entry for owner with the given searchable value.
func NewEntry(value string, owner id.UID) Entry {
	kind := KindLocal
	if !owner.IsLocal() {
		kind = KindFederated
	}
	return Entry{Value: strings.ToLower(value), Kind: kind, ID: owner}
}

// Encode renders the entry as a sorted-set member.
func (e Entry) Encode() string {
	return e.Value + ":" + e.ID.String()
}

// ParseEntry decodes a sorted-set member. A trailing positive integer after
// the last colon names a local owner, even when the value itself contains a
// federation marker. Otherwise the owner is the URI after the earliest
// ":http:" or ":https:" marker. A member with no colon is a bare id.
func ParseEntry(raw string) Entry {
	i := strings.LastIndexByte(raw, ':')
	if i < 0 {
		return Entry{ID: id.UID(raw), Kind: KindLocal}
	}
	tail := id.UID(raw[i+1:])

	if value, uri, ok := federatedOwner(raw); ok && (!tail.IsLocal() || endsWithPort(uri, string(tail))) {
		return Entry{Value: value, Kind: KindFederated, ID: id.UID(uri)}
	}
	return Entry{Value: raw[:i], Kind: KindLocal, ID: tail}
}

// federatedOwner finds the earliest marker whose remainder is a valid URI.
func federatedOwner(raw string) (value, uri string, ok bool) {
	for from := 0; from < len(raw); {
		cut := -1
		for _, marker := range federationMarkers {
			if j := strings.Index(raw[from:], marker); j >= 0 && (cut < 0 || from+j < cut) {
				cut = from + j
			}
		}
		if cut < 0 {
			return "", "", false
		}
		if candidate := raw[cut+1:]; id.IsURI(candidate) {
			return raw[:cut], candidate, true
		}
		from = cut + 1
	}
	return "", "", false
}

// endsWithPort reports whether uri is a bare origin whose port is port, as in
// "https://remote.example:8443".
func endsWithPort(uri, port string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Port() == port && u.Path == "" && u.RawQuery == ""
}
