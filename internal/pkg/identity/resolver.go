package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Resolver maps user ids to profiles. Directories that support batching get
// one call; otherwise lookups fan out over at most workers goroutines.
// Unknown users resolve to a profile with an empty email.
type Resolver struct {
	dir     Directory
	workers int
}

func NewResolver(dir Directory, workers int) *Resolver {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Resolver{dir: dir, workers: workers}
}

// Session returns a resolver whose results are cached for the caller's lifetime,
// usually one request.
func (r *Resolver) Session() *CachedResolver {
	return &CachedResolver{resolver: r, cache: map[string]User{}}
}

// Resolve looks up every distinct id.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]User, error) {
	ids = distinct(ids)
	out := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if r == nil || r.dir == nil {
		for _, id := range ids {
			out[id] = User{ID: id}
		}
		return out, nil
	}

	if batch, ok := r.dir.(BatchDirectory); ok {
		found, err := batch.LookupUsers(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			user, ok := found[id]
			if !ok {
				user = User{ID: id}
			}
			out[id] = user
		}
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, id := range ids {
		g.Go(func() error {
			user, err := r.dir.LookupUser(gctx, id)
			if errors.Is(err, ErrUserNotFound) {
				log.Warnw("identity user not found", "user_id", id)
				user, err = &User{ID: id}, nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = *user
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CachedResolver remembers every profile it resolved. It is safe for concurrent use.
type CachedResolver struct {
	resolver *Resolver
	mu       sync.Mutex
	cache    map[string]User
}

// Resolve looks up the ids not seen before and serves the rest from the cache.
func (c *CachedResolver) Resolve(ctx context.Context, ids []string) (map[string]User, error) {
	ids = distinct(ids)
	out := make(map[string]User, len(ids))
	var missing []string

	c.mu.Lock()
	for _, id := range ids {
		if user, ok := c.cache[id]; ok {
			out[id] = user
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}
	found, err := c.resolver.Resolve(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for id, user := range found {
		c.cache[id] = user
		out[id] = user
	}
	c.mu.Unlock()
	return out, nil
}

// Lookup resolves a single id.
func (c *CachedResolver) Lookup(ctx context.Context, id string) (User, error) {
	found, err := c.Resolve(ctx, []string{id})
	if err != nil {
		return User{}, err
	}
	return found[id], nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
