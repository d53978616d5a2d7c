package userdata

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/campusreg/student-registry/internal/client/cache"
	"github.com/campusreg/student-registry/internal/client/session"
	"github.com/campusreg/student-registry/internal/core/domain"
)

const usersEndpoint = "/admin/users"

// Client fronts a primary Source with a TTL cache and an optional fallback.
// Reads that fail with ErrNetworkUnavailable are retried against the
// fallback; writes never fall back, a write that did not reach the primary
// did not happen.
type Client struct {
	primary  Source
	fallback Source
	cache    *cache.Cache
	session  *session.Session
	log      zerolog.Logger
}

func NewClient(primary, fallback Source, c *cache.Cache, sess *session.Session, log zerolog.Logger) *Client {
	if c == nil {
		c = cache.New(cache.DefaultTTL)
	}
	return &Client{
		primary:  primary,
		fallback: fallback,
		cache:    c,
		session:  sess,
		log:      log,
	}
}

func listFingerprint(q ListQuery) string {
	return cache.Fingerprint(usersEndpoint, map[string]string{
		"search":    q.Search,
		"role":      q.Role,
		"sortBy":    q.SortBy,
		"sortOrder": q.SortOrder,
		"page":      strconv.Itoa(q.Page),
		"limit":     strconv.Itoa(q.Limit),
	})
}

// List serves from cache when possible. Only primary responses are cached;
// fallback data is stale by definition and must not mask a recovered API.
// Cached pages are stored and served as copies so callers can mutate a
// returned page without poisoning later hits.
func (c *Client) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if !c.session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	key := listFingerprint(q)
	if cached, ok := c.cache.Get(key); ok {
		if res, ok := cached.(*ListResult); ok {
			return cloneResult(res), nil
		}
	}

	res, err := c.primary.List(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrNetworkUnavailable) && c.fallback != nil {
			c.log.Warn().Err(err).Msg("user list unreachable, serving local data")
			return c.fallback.List(ctx, q)
		}
		return nil, err
	}

	c.cache.Put(key, cloneResult(res))
	return res, nil
}

func cloneResult(r *ListResult) *ListResult {
	cp := *r
	cp.Items = make([]*domain.User, len(r.Items))
	for i, u := range r.Items {
		cu := *u
		cp.Items[i] = &cu
	}
	return &cp
}

func (c *Client) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	if !c.session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	u, err := c.primary.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(usersEndpoint)
	return u, nil
}

func (c *Client) Update(ctx context.Context, id string, input UpdateInput) (*domain.User, error) {
	if !c.session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	u, err := c.primary.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(usersEndpoint)
	return u, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if !c.session.Authenticated() {
		return domain.ErrUnauthenticated
	}

	if err := c.primary.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Invalidate(usersEndpoint)
	return nil
}
