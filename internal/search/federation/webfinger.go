package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/sentinel"
)

const (
	maxDocumentBytes = 1 << 20
	activityJSON     = "application/activity+json"
	jrdJSON          = "application/jrd+json"
)

var actorTypes = map[string]struct{}{
	"Person": {}, "Service": {}, "Application": {}, "Group": {}, "Organization": {},
}

// ActorWriter persists discovered actors so later searches can hydrate and
// look them up by handle.
type ActorWriter interface {
	Put(ctx context.Context, identity *models.Identity) error
	PutHandle(ctx context.Context, handle string, uid id.UID) error
}

// WebfingerClient discovers actors over HTTP: a webfinger lookup for
// handles, then a fetch of the actor document.
type WebfingerClient struct {
	httpClient *http.Client
	cache      ActorCache
	writer     ActorWriter
	userAgent  string
	logger     *slog.Logger
	now        func() time.Time
}

type ClientOption func(*WebfingerClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(w *WebfingerClient) {
		if c != nil {
			w.httpClient = c
		}
	}
}

// WithActorWriter stores every newly discovered actor.
func WithActorWriter(writer ActorWriter) ClientOption {
	return func(w *WebfingerClient) {
		w.writer = writer
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(w *WebfingerClient) {
		if ua != "" {
			w.userAgent = ua
		}
	}
}

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(w *WebfingerClient) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWebfingerClient(cache ActorCache, opts ...ClientOption) *WebfingerClient {
	w := &WebfingerClient{
		httpClient: PublicHTTPClient(10 * time.Second),
		cache:      cache,
		userAgent:  "usersearch",
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Discover reports Known when every identifier is cached. Otherwise it
// fetches the unknown ones and returns the actors it found; identifiers that
// do not exist remotely are skipped.
func (w *WebfingerClient) Discover(ctx context.Context, identifiers []string) (Discovery, error) {
	known := true
	var actors []Actor
	for _, identifier := range identifiers {
		if _, ok, err := w.cache.Lookup(ctx, identifier); err != nil {
			return Discovery{}, err
		} else if ok {
			continue
		}
		known = false

		actor, err := w.fetch(ctx, identifier)
		if errors.Is(err, sentinel.ErrNotFound) {
			w.logger.DebugContext(ctx, "actor not found", "identifier", identifier)
			continue
		}
		if err != nil {
			return Discovery{}, err
		}
		if err := w.remember(ctx, identifier, actor); err != nil {
			return Discovery{}, err
		}
		actors = append(actors, actor)
	}
	if known && len(identifiers) > 0 {
		return Discovery{Known: true}, nil
	}
	return Discovery{Actors: actors}, nil
}

func (w *WebfingerClient) fetch(ctx context.Context, identifier string) (Actor, error) {
	actorURL := identifier
	if h, ok := ParseHandle(identifier); ok {
		var err error
		actorURL, err = w.webfinger(ctx, h)
		if err != nil {
			return Actor{}, err
		}
	}

	var actor Actor
	if err := w.getJSON(ctx, actorURL, activityJSON, &actor); err != nil {
		return Actor{}, err
	}
	if !id.IsURI(actor.ID) {
		return Actor{}, fmt.Errorf("actor %s: missing id", actorURL)
	}
	if _, ok := actorTypes[actor.Type]; !ok {
		return Actor{}, sentinel.ErrNotFound
	}
	return actor, nil
}

type jrd struct {
	Subject string `json:"subject"`
	Links   []struct {
		Rel  string `json:"rel"`
		Type string `json:"type"`
		Href string `json:"href"`
	} `json:"links"`
}

func (w *WebfingerClient) webfinger(ctx context.Context, h Handle) (string, error) {
	endpoint := url.URL{
		Scheme:   "https",
		Host:     h.Host,
		Path:     "/.well-known/webfinger",
		RawQuery: url.Values{"resource": {h.Resource()}}.Encode(),
	}
	var doc jrd
	if err := w.getJSON(ctx, endpoint.String(), jrdJSON, &doc); err != nil {
		return "", err
	}
	for _, link := range doc.Links {
		if link.Rel == "self" && isActivityType(link.Type) && id.IsURI(link.Href) {
			return link.Href, nil
		}
	}
	return "", sentinel.ErrNotFound
}

func (w *WebfingerClient) getJSON(ctx context.Context, target, accept string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w: %w", target, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return sentinel.ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("fetch %s: status %d: %w", target, resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

func (w *WebfingerClient) remember(ctx context.Context, identifier string, actor Actor) error {
	if err := w.cache.Store(ctx, identifier, actor.ID); err != nil {
		return err
	}
	if w.writer == nil {
		return nil
	}

	handle := identifier
	if h, ok := ParseHandle(identifier); ok {
		handle = h.String()
	} else if u, err := url.Parse(actor.ID); err == nil && actor.PreferredUsername != "" {
		handle = actor.PreferredUsername + "@" + strings.ToLower(u.Host)
	}

	uid := id.UID(actor.ID)
	record := &models.Identity{
		UID:        uid,
		Username:   handle,
		Userslug:   handle,
		Fullname:   actor.Name,
		Status:     "online",
		LastOnline: w.now().UnixMilli(),
	}
	if err := w.writer.Put(ctx, record); err != nil {
		return err
	}
	if _, ok := ParseHandle(handle); ok {
		return w.writer.PutHandle(ctx, handle, uid)
	}
	return nil
}

func isActivityType(t string) bool {
	return t == activityJSON || strings.HasPrefix(t, `application/ld+json`)
}
