// Package federation resolves remote handles and actor URIs to identity ids.
package federation

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/sentinel"
)

var handlePattern = regexp.MustCompile(`^@?([\w\-.~]+)@([\w\-]+(?:\.[\w\-]+)*(?::\d+)?)$`)

// Handle is a webfinger-style account identifier.
type Handle struct {
	User string
	Host string
}

func (h Handle) String() string {
	return h.User + "@" + h.Host
}

// Resource is the webfinger acct: resource for the handle.
func (h Handle) Resource() string {
	return "acct:" + h.String()
}

// ParseHandle accepts "user@host" or "@user@host". URIs are never handles.
func ParseHandle(s string) (Handle, bool) {
	s = strings.TrimSpace(s)
	if s == "" || id.IsURI(s) {
		return Handle{}, false
	}
	m := handlePattern.FindStringSubmatch(s)
	if m == nil {
		return Handle{}, false
	}
	return Handle{User: m[1], Host: strings.ToLower(m[2])}, true
}

// RefKind says what a local reference points at.
type RefKind int

const (
	RefNone RefKind = iota
	RefUser
)

// LocalRef is the result of resolving an identifier against this instance.
type LocalRef struct {
	Kind RefKind
	ID   id.UID
}

// SlugLookup maps a user slug or remote handle to an identity id.
type SlugLookup interface {
	UIDBySlug(ctx context.Context, slug string) (id.UID, error)
}

// LocalResolver recognizes identifiers that name users of this instance.
type LocalResolver struct {
	base  *url.URL
	slugs SlugLookup
}

// NewLocalResolver parses baseURL, the public URL of this instance.
func NewLocalResolver(baseURL string, slugs SlugLookup) (*LocalResolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, errors.New("federation: base url must be absolute")
	}
	return &LocalResolver{base: u, slugs: slugs}, nil
}

// ResolveLocalID understands ".../uid/<n>" and ".../user/<slug>" URIs on
// this host, and handles whose host is this host. Anything else is RefNone.
// Store failures other than not-found are returned.
func (r *LocalResolver) ResolveLocalID(ctx context.Context, identifier string) (LocalRef, error) {
	identifier = strings.TrimSpace(identifier)

	if id.IsURI(identifier) {
		u, err := url.Parse(identifier)
		if err != nil || !strings.EqualFold(u.Host, r.base.Host) {
			return LocalRef{}, nil
		}
		rel := strings.TrimPrefix(u.EscapedPath(), strings.TrimSuffix(r.base.EscapedPath(), "/"))
		segments := strings.Split(strings.Trim(rel, "/"), "/")
		if len(segments) != 2 {
			return LocalRef{}, nil
		}
		value, err := url.PathUnescape(segments[1])
		if err != nil {
			return LocalRef{}, nil
		}
		switch segments[0] {
		case "uid":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
				return LocalRef{Kind: RefUser, ID: id.LocalUID(n)}, nil
			}
			return LocalRef{}, nil
		case "user":
			return r.bySlug(ctx, value)
		default:
			return LocalRef{}, nil
		}
	}

	if h, ok := ParseHandle(identifier); ok && strings.EqualFold(h.Host, r.base.Host) {
		return r.bySlug(ctx, h.User)
	}
	return LocalRef{}, nil
}

func (r *LocalResolver) bySlug(ctx context.Context, slug string) (LocalRef, error) {
	uid, err := r.slugs.UIDBySlug(ctx, slug)
	if errors.Is(err, sentinel.ErrNotFound) {
		return LocalRef{}, nil
	}
	if err != nil {
		return LocalRef{}, err
	}
	if !uid.IsLocal() {
		return LocalRef{}, nil
	}
	return LocalRef{Kind: RefUser, ID: uid}, nil
}
