// Package cache is the client-side query cache. Reads are keyed by a tuple
// of resource name and parameters; concurrent reads of one key share a
// single fetch, and entries stay fresh until explicitly invalidated.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const subscriberBuffer = 64

// Key identifies a cached read, e.g. Key{"posts", worldID}.
type Key []string

// String is the canonical identity of the key.
func (k Key) String() string { return strings.Join(k, "\x1f") }

// HasPrefix reports whether k starts with every element of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// State is a snapshot of one entry.
type State struct {
	Data      any
	Loading   bool
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// Fresh reports whether the entry can be served without a fetch.
func (s State) Fresh() bool {
	return !s.UpdatedAt.IsZero() && s.Err == nil && !s.Stale
}

type FetchFunc func(ctx context.Context) (any, error)

type Options struct {
	// Retry is the number of extra attempts after a failed fetch. Zero
	// means failures are never retried.
	Retry int
	// OnError is called once per failed fetch, after retries. Defaults to
	// logging at warn level.
	OnError func(key Key, err error)
	Logger  *zap.Logger
}

type Stats struct {
	Entries  int   `json:"entries"`
	InFlight int64 `json:"in_flight"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

type entry struct {
	key   Key
	state State
	// gen moves on every invalidation; a fetch that started under an older
	// gen must not mark the entry fresh.
	gen     uint64
	flights int
}

// stamp records what a fetch saw when it started.
type stamp struct {
	epoch uint64
	gen   uint64
}

// flight is the context shared by every caller waiting on one fetch. It is
// cancelled when the last of them leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

type subscriber struct {
	prefix Key
	ch     chan Key
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	subs    map[int]*subscriber
	nextSub int
	flights map[string]*flight
	// epoch moves on Clear so fetches begun before it are discarded.
	epoch uint64

	group   singleflight.Group
	retry   int
	onError func(Key, error)

	hits     atomic.Int64
	misses   atomic.Int64
	inFlight atomic.Int64
}

func New(opts Options) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		subs:    make(map[int]*subscriber),
		flights: make(map[string]*flight),
		retry:   opts.Retry,
		onError: opts.OnError,
	}
	if c.onError == nil {
		log := opts.Logger
		if log == nil {
			log = zap.NewNop()
		}
		c.onError = func(key Key, err error) {
			log.Warn("query failed", zap.Strings("key", key), zap.Error(err))
		}
	}
	return c
}

// Observe returns the current state of key. The zero State means nothing
// has been fetched yet.
func (c *Cache) Observe(key Key) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.state
	}
	return State{}
}

// Fetch returns the cached data for key when it is fresh. Otherwise it runs
// fn, sharing one call among every concurrent Fetch of the same key, and
// stores the outcome. The shared call keeps running while any caller still
// waits on it; each caller returns early when its own ctx is done.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	if s := c.Observe(key); s.Fresh() {
		c.hits.Add(1)
		return s.Data, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.misses.Add(1)

	id := key.String()
	f := c.join(ctx, id)
	defer c.leave(id, f)

	ch := c.group.DoChan(id, func() (any, error) {
		// Another flight may have filled the entry since the check above.
		if s := c.Observe(key); s.Fresh() {
			return s.Data, nil
		}
		c.inFlight.Add(1)
		defer c.inFlight.Add(-1)

		st := c.begin(key)
		data, err := c.run(f.ctx, fn)
		c.store(key, st, data, err)
		return data, err
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) join(ctx context.Context, id string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[id]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[id] = f
	}
	f.waiters++
	return f
}

func (c *Cache) leave(id string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[id] == f {
		delete(c.flights, id)
	}
}

// forget detaches key from any running fetch so the next Fetch starts its
// own. Callers hold c.mu.
func (c *Cache) forget(id string) {
	c.group.Forget(id)
	delete(c.flights, id)
}

func (c *Cache) run(ctx context.Context, fn FetchFunc) (any, error) {
	data, err := fn(ctx)
	for attempt := 0; err != nil && attempt < c.retry && ctx.Err() == nil; attempt++ {
		data, err = fn(ctx)
	}
	return data, err
}

func (c *Cache) begin(key Key) stamp {
	id := key.String()
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...)}
		c.entries[id] = e
	}
	e.flights++
	e.state.Loading = true
	st := stamp{epoch: c.epoch, gen: e.gen}
	c.mu.Unlock()
	c.notify(key)
	return st
}

func (c *Cache) store(key Key, st stamp, data any, err error) {
	// The caller went away; keep whatever was there before.
	cancelled := err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
	if err != nil && !cancelled {
		c.onError(key, err)
	}

	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || st.epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	e.flights--
	e.state.Loading = e.flights > 0
	if !cancelled && st.gen == e.gen {
		e.state.Err = err
		e.state.Stale = false
		e.state.UpdatedAt = time.Now()
		if err == nil {
			e.state.Data = data
		}
	}
	c.mu.Unlock()
	c.notify(key)
}

// Invalidate marks key stale so the next Fetch goes to the network.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if ok {
		e.state.Stale = true
		e.gen++
	}
	c.forget(key.String())
	c.mu.Unlock()
	if ok {
		c.notify(key)
	}
}

// InvalidatePrefix marks every key starting with prefix stale and returns
// how many entries were affected.
func (c *Cache) InvalidatePrefix(prefix Key) int {
	var hit []Key
	c.mu.Lock()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.state.Stale = true
			e.gen++
			c.forget(e.key.String())
			hit = append(hit, e.key)
		}
	}
	c.mu.Unlock()
	for _, k := range hit {
		c.notify(k)
	}
	return len(hit)
}

// Clear drops every entry, e.g. on sign-out.
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for id, e := range c.entries {
		keys = append(keys, e.key)
		c.forget(id)
	}
	c.entries = make(map[string]*entry)
	c.epoch++
	c.mu.Unlock()
	for _, k := range keys {
		c.notify(k)
	}
}

// Subscribe returns a channel receiving every key under prefix whose state
// changes, and a func that ends the subscription. Notifications are dropped
// when the subscriber falls behind by more than a buffer's worth.
func (c *Cache) Subscribe(prefix Key) (<-chan Key, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	sub := &subscriber{prefix: append(Key(nil), prefix...), ch: make(chan Key, subscriberBuffer)}
	c.subs[id] = sub
	c.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (c *Cache) notify(key Key) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sub := range c.subs {
		if !key.HasPrefix(sub.prefix) {
			continue
		}
		select {
		case sub.ch <- key:
		default:
		}
	}
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Entries:  n,
		InFlight: c.inFlight.Load(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

// Get is a typed Fetch.
func Get[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// Data returns the last successfully fetched value of key as T, if any.
func Data[T any](c *Cache, key Key) (T, bool) {
	out, ok := c.Observe(key).Data.(T)
	return out, ok
}
