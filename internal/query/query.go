package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Defaults used when Options leaves a field zero
const (
	DefaultStaleTime  = 30 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = 300 * time.Millisecond
)

// NoRetry disables retrying when passed as Options.Retries
const NoRetry = -1

// EventKind tells listeners what happened to a resource
type EventKind string

const (
	EventStored      EventKind = "stored"
	EventInvalidated EventKind = "invalidated"
)

// Event is delivered to Subscribe listeners
type Event struct {
	Kind     EventKind
	Resource string
	Key      string
}

// Options configures a Client
type Options struct {
	StaleTime  time.Duration
	Retries    int
	RetryDelay time.Duration
	Logger     zerolog.Logger
	// Namespace is prepended to every key the Client reads, writes or
	// deletes, so sessions sharing one Store never see each other's
	// entries. It is called per operation.
	Namespace func() string
}

// Client runs cached fetches and invalidating mutations over a Store
type Client struct {
	store      Store
	staleTime  time.Duration
	retries    int
	retryDelay time.Duration
	logger     zerolog.Logger
	group      singleflight.Group
	now        func() time.Time
	namespace  func() string

	mu        sync.RWMutex
	nextID    int
	listeners map[string]map[int]func(Event)
}

// New creates a Client. Zero fields take the defaults; see NoRetry.
func New(store Store, opts Options) *Client {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Namespace == nil {
		opts.Namespace = func() string { return "" }
	}
	return &Client{
		store:      store,
		staleTime:  opts.StaleTime,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
		now:        time.Now,
		namespace:  opts.Namespace,
		listeners:  make(map[string]map[int]func(Event)),
	}
}

// Fetch returns the cached value for key while it is younger than the stale
// time. Otherwise it calls fn, retrying transient failures, and caches the
// result. Concurrent fetches of the same key share one call.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	k := c.namespace() + key.String()

	if v, ok := cached[T](ctx, c, k); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(k, func() (interface{}, error) {
		v, err := withRetry(ctx, c, fn)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, k, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %s: shared result has type %T", k, res)
	}
	return v, nil
}

func cached[T any](ctx context.Context, c *Client, k string) (T, bool) {
	var v T
	e, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", k).Msg("Cache read failed, fetching")
		return v, false
	}
	if !ok || c.now().Sub(e.StoredAt) >= c.staleTime {
		return v, false
	}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		c.logger.Warn().Err(err).Str("key", k).Msg("Discarding undecodable cache entry")
		return v, false
	}
	c.logger.Debug().Str("key", k).Msg("Cache hit")
	return v, true
}

func (c *Client) save(ctx context.Context, key Key, k string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", k).Msg("Result not cacheable")
		return
	}
	if err := c.store.Set(ctx, k, Entry{Data: data, StoredAt: c.now()}); err != nil {
		c.logger.Warn().Err(err).Str("key", k).Msg("Cache write failed")
		return
	}
	c.notify(Event{Kind: EventStored, Resource: key.Resource, Key: k})
}

type statusCoder interface {
	StatusCode() int
}

// retryable is false for client errors: repeating a 4xx gives the same answer
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code < 400 || code >= 500
	}
	return true
}

func withRetry[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().Err(err).Int("attempt", attempt+1).Msg("Retrying fetch")
			select {
			case <-ctx.Done():
				return v, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		v, err = fn(ctx)
		if err == nil || !retryable(err) {
			return v, err
		}
	}
	return v, err
}

// Mutate runs fn once and, only when it succeeds, invalidates every listed
// resource. Mutations are never retried.
func Mutate[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error), invalidate ...string) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	for _, resource := range invalidate {
		c.Invalidate(ctx, resource)
	}
	return v, nil
}

// Invalidate drops every cached key of resource and its sub-resources in
// the current namespace
func (c *Client) Invalidate(ctx context.Context, resource string) {
	n, err := c.store.DeleteResource(ctx, c.namespace()+resource)
	if err != nil {
		c.logger.Warn().Err(err).Str("resource", resource).Msg("Cache invalidation failed")
	}
	c.logger.Debug().Str("resource", resource).Int("removed", n).Msg("Cache invalidated")
	c.notify(Event{Kind: EventInvalidated, Resource: resource})
}

// Clear drops every entry of the current namespace
func (c *Client) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.namespace())
}

// Subscribe calls fn for events on resource and its sub-resources, and for
// invalidations of any parent resource. The returned func removes the
// listener.
func (c *Client) Subscribe(resource string, fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	if c.listeners[resource] == nil {
		c.listeners[resource] = make(map[int]func(Event))
	}
	c.listeners[resource][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners[resource], id)
	}
}

func (c *Client) notify(e Event) {
	c.mu.RLock()
	var fns []func(Event)
	for resource, byID := range c.listeners {
		related := resource == e.Resource || matches(e.Resource, resource) ||
			(e.Kind == EventInvalidated && matches(resource, e.Resource))
		if !related {
			continue
		}
		for _, fn := range byID {
			fns = append(fns, fn)
		}
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
